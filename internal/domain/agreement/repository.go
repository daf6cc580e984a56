package agreement

import (
	"context"
)

// Repository defines the interface for service agreement persistence
type Repository interface {
	// Create creates a new service agreement
	Create(ctx context.Context, agreement *ServiceAgreement) error

	// Get retrieves a service agreement by ID
	Get(ctx context.Context, id string) (*ServiceAgreement, error)

	// GetByClientAndService retrieves the agreement for a client/service
	// pair, or a not found error when no custom rate exists
	GetByClientAndService(ctx context.Context, clientID, serviceID string) (*ServiceAgreement, error)

	// ListByClient retrieves all agreements for a client
	ListByClient(ctx context.Context, clientID string) ([]*ServiceAgreement, error)

	// Update updates an existing service agreement
	Update(ctx context.Context, agreement *ServiceAgreement) error

	// Delete soft deletes a service agreement
	Delete(ctx context.Context, id string) error
}
