package agreement

import (
	"context"

	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// ServiceDefinition is a catalog entry for a billable payroll service
// with its base rate. Client agreements override the base rate.
type ServiceDefinition struct {
	ID       string          `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	UnitType types.UnitType  `db:"unit_type" json:"unit_type"`
	BaseRate decimal.Decimal `db:"base_rate" json:"base_rate"`
	types.BaseModel
}

func (s *ServiceDefinition) Validate() error {
	if s.Name == "" {
		return ierr.NewError("service name is required").
			WithHint("Service name is required").
			Mark(ierr.ErrValidation)
	}
	if s.BaseRate.IsNegative() {
		return ierr.NewError("base_rate must be non negative").
			WithHint("Base rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	return s.UnitType.Validate()
}

// CatalogRepository defines the interface for service catalog persistence
type CatalogRepository interface {
	// Create creates a new service definition
	Create(ctx context.Context, def *ServiceDefinition) error

	// Get retrieves a service definition by ID
	Get(ctx context.Context, id string) (*ServiceDefinition, error)

	// List retrieves all published service definitions
	List(ctx context.Context) ([]*ServiceDefinition, error)

	// Update updates an existing service definition
	Update(ctx context.Context, def *ServiceDefinition) error

	// Delete soft deletes a service definition
	Delete(ctx context.Context, id string) error
}
