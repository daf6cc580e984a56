package payroll

import (
	"context"

	"github.com/paybill/paybill/internal/types"
)

// Repository defines the interface for payroll run persistence
type Repository interface {
	// Create creates a new payroll run
	Create(ctx context.Context, run *PayrollRun) error

	// Get retrieves a payroll run by ID
	Get(ctx context.Context, id string) (*PayrollRun, error)

	// Update updates an existing payroll run
	Update(ctx context.Context, run *PayrollRun) error

	// List retrieves payroll runs based on filter criteria
	List(ctx context.Context, filter *types.PayrollRunFilter) ([]*PayrollRun, error)

	// Count returns the total count of payroll runs based on filter criteria
	Count(ctx context.Context, filter *types.PayrollRunFilter) (int, error)

	// CountByClientAndPeriod returns the number of completed runs for a
	// client within a billing period
	CountByClientAndPeriod(ctx context.Context, clientID, billingPeriodID string) (int, error)
}
