package billingitem

import (
	"context"

	"github.com/paybill/paybill/internal/types"
)

// Repository defines the interface for billing item persistence
type Repository interface {
	// Create creates a new billing item
	Create(ctx context.Context, item *BillingItem) error

	// CreateBulk creates a batch of billing items
	CreateBulk(ctx context.Context, items []*BillingItem) error

	// Get retrieves a billing item by ID
	Get(ctx context.Context, id string) (*BillingItem, error)

	// Update updates an existing billing item
	Update(ctx context.Context, item *BillingItem) error

	// List retrieves billing items based on filter criteria
	List(ctx context.Context, filter *types.BillingItemFilter) ([]*BillingItem, error)

	// Count returns the total count of billing items based on filter criteria
	Count(ctx context.Context, filter *types.BillingItemFilter) (int, error)

	// AttachToInvoice marks the given items as billed under the invoice.
	// Items already attached to another invoice are left untouched and
	// reported as an invalid operation.
	AttachToInvoice(ctx context.Context, itemIDs []string, invoiceID string) error

	// DetachFromInvoice releases all items billed under the invoice back
	// to the unbilled pool
	DetachFromInvoice(ctx context.Context, invoiceID string) error
}
