package testutil

import (
	"context"

	"github.com/paybill/paybill/internal/domain/agreement"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
)

// InMemoryAgreementStore implements agreement.Repository
type InMemoryAgreementStore struct {
	*InMemoryStore[*agreement.ServiceAgreement]
}

func NewInMemoryAgreementStore() *InMemoryAgreementStore {
	return &InMemoryAgreementStore{
		InMemoryStore: NewInMemoryStore[*agreement.ServiceAgreement](),
	}
}

func (s *InMemoryAgreementStore) Create(ctx context.Context, agr *agreement.ServiceAgreement) error {
	if err := s.InMemoryStore.Create(ctx, agr.ID, agr); err != nil {
		return ierr.WithError(err).
			WithHint("Service agreement already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryAgreementStore) Get(ctx context.Context, id string) (*agreement.ServiceAgreement, error) {
	agr, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || agr.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("service agreement with ID %s was not found", id).
			WithHintf("Service agreement with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return agr, nil
}

func (s *InMemoryAgreementStore) GetByClientAndService(ctx context.Context, clientID, serviceID string) (*agreement.ServiceAgreement, error) {
	agreements, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, agr *agreement.ServiceAgreement, _ interface{}) bool {
		return agr.ClientID == clientID && agr.ServiceID == serviceID && agr.Status == types.StatusPublished
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(agreements) == 0 {
		return nil, ierr.NewError("no agreement for client and service").
			WithHint("No agreement exists for this client and service").
			Mark(ierr.ErrNotFound)
	}
	return agreements[0], nil
}

func (s *InMemoryAgreementStore) ListByClient(ctx context.Context, clientID string) ([]*agreement.ServiceAgreement, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, agr *agreement.ServiceAgreement, _ interface{}) bool {
		return agr.ClientID == clientID && agr.Status == types.StatusPublished
	}, func(i, j *agreement.ServiceAgreement) bool {
		return i.ServiceName < j.ServiceName
	})
}

func (s *InMemoryAgreementStore) Update(ctx context.Context, agr *agreement.ServiceAgreement) error {
	if err := s.InMemoryStore.Update(ctx, agr.ID, agr); err != nil {
		return ierr.WithError(err).
			WithHintf("Service agreement with ID %s was not found", agr.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryAgreementStore) Delete(ctx context.Context, id string) error {
	agr, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	agr.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, agr)
}

// InMemoryCatalogStore implements agreement.CatalogRepository
type InMemoryCatalogStore struct {
	*InMemoryStore[*agreement.ServiceDefinition]
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		InMemoryStore: NewInMemoryStore[*agreement.ServiceDefinition](),
	}
}

func (s *InMemoryCatalogStore) Create(ctx context.Context, def *agreement.ServiceDefinition) error {
	if err := s.InMemoryStore.Create(ctx, def.ID, def); err != nil {
		return ierr.WithError(err).
			WithHint("Service definition already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCatalogStore) Get(ctx context.Context, id string) (*agreement.ServiceDefinition, error) {
	def, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || def.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("service with ID %s was not found", id).
			WithHintf("Service with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return def, nil
}

func (s *InMemoryCatalogStore) List(ctx context.Context) ([]*agreement.ServiceDefinition, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, def *agreement.ServiceDefinition, _ interface{}) bool {
		return def.Status == types.StatusPublished
	}, func(i, j *agreement.ServiceDefinition) bool {
		return i.Name < j.Name
	})
}

func (s *InMemoryCatalogStore) Update(ctx context.Context, def *agreement.ServiceDefinition) error {
	if err := s.InMemoryStore.Update(ctx, def.ID, def); err != nil {
		return ierr.WithError(err).
			WithHintf("Service with ID %s was not found", def.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryCatalogStore) Delete(ctx context.Context, id string) error {
	def, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	def.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, def)
}
