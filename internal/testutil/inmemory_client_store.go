package testutil

import (
	"context"
	"strings"

	"github.com/paybill/paybill/internal/domain/client"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	*InMemoryStore[*client.Client]
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{
		InMemoryStore: NewInMemoryStore[*client.Client](),
	}
}

func (s *InMemoryClientStore) Create(ctx context.Context, cl *client.Client) error {
	if err := s.InMemoryStore.Create(ctx, cl.ID, cl); err != nil {
		return ierr.WithError(err).
			WithHint("Client already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	cl, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || cl.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("client with ID %s was not found", id).
			WithHintf("Client with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return cl, nil
}

func (s *InMemoryClientStore) Update(ctx context.Context, cl *client.Client) error {
	if err := s.InMemoryStore.Update(ctx, cl.ID, cl); err != nil {
		return ierr.WithError(err).
			WithHintf("Client with ID %s was not found", cl.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryClientStore) Delete(ctx context.Context, id string) error {
	cl, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	cl.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, cl)
}

func clientFilterFn(ctx context.Context, cl *client.Client, filter interface{}) bool {
	f, ok := filter.(*types.ClientFilter)
	if !ok {
		return true
	}
	if cl.TenantID != types.GetTenantID(ctx) {
		return false
	}
	if cl.Status != f.GetStatus() {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(cl.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

func (s *InMemoryClientStore) List(ctx context.Context, filter *types.ClientFilter) ([]*client.Client, error) {
	return s.InMemoryStore.List(ctx, filter, clientFilterFn, func(i, j *client.Client) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
}

func (s *InMemoryClientStore) Count(ctx context.Context, filter *types.ClientFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, clientFilterFn)
}
