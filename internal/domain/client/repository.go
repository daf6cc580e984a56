package client

import (
	"context"

	"github.com/paybill/paybill/internal/types"
)

// Repository defines the interface for client persistence operations
type Repository interface {
	// Create creates a new client
	Create(ctx context.Context, client *Client) error

	// Get retrieves a client by ID
	Get(ctx context.Context, id string) (*Client, error)

	// Update updates an existing client
	Update(ctx context.Context, client *Client) error

	// Delete soft deletes a client
	Delete(ctx context.Context, id string) error

	// List retrieves clients based on filter criteria
	List(ctx context.Context, filter *types.ClientFilter) ([]*Client, error)

	// Count returns the total count of clients based on filter criteria
	Count(ctx context.Context, filter *types.ClientFilter) (int, error)
}
