package testutil

import (
	"context"

	"github.com/paybill/paybill/internal/domain/billingitem"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
)

// InMemoryBillingItemStore implements billingitem.Repository
type InMemoryBillingItemStore struct {
	*InMemoryStore[*billingitem.BillingItem]
}

func NewInMemoryBillingItemStore() *InMemoryBillingItemStore {
	return &InMemoryBillingItemStore{
		InMemoryStore: NewInMemoryStore[*billingitem.BillingItem](),
	}
}

func (s *InMemoryBillingItemStore) Create(ctx context.Context, item *billingitem.BillingItem) error {
	if err := s.InMemoryStore.Create(ctx, item.ID, item); err != nil {
		return ierr.WithError(err).
			WithHint("Billing item already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryBillingItemStore) CreateBulk(ctx context.Context, items []*billingitem.BillingItem) error {
	for _, item := range items {
		if err := s.Create(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryBillingItemStore) Get(ctx context.Context, id string) (*billingitem.BillingItem, error) {
	item, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || item.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("billing item with ID %s was not found", id).
			WithHintf("Billing item with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryBillingItemStore) Update(ctx context.Context, item *billingitem.BillingItem) error {
	if err := s.InMemoryStore.Update(ctx, item.ID, item); err != nil {
		return ierr.WithError(err).
			WithHintf("Billing item with ID %s was not found", item.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func billingItemFilterFn(ctx context.Context, item *billingitem.BillingItem, filter interface{}) bool {
	f, ok := filter.(*types.BillingItemFilter)
	if !ok {
		return true
	}
	if item.Status != f.GetStatus() {
		return false
	}
	if f.ClientID != "" && item.ClientID != f.ClientID {
		return false
	}
	if f.BillingPeriodID != "" && item.BillingPeriodID != f.BillingPeriodID {
		return false
	}
	if f.ApprovedOnly && !item.Approved {
		return false
	}
	if f.UnbilledOnly && item.InvoiceID != nil {
		return false
	}
	return true
}

func (s *InMemoryBillingItemStore) List(ctx context.Context, filter *types.BillingItemFilter) ([]*billingitem.BillingItem, error) {
	return s.InMemoryStore.List(ctx, filter, billingItemFilterFn, func(i, j *billingitem.BillingItem) bool {
		return i.ServiceDate.Before(j.ServiceDate)
	})
}

func (s *InMemoryBillingItemStore) Count(ctx context.Context, filter *types.BillingItemFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, billingItemFilterFn)
}

func (s *InMemoryBillingItemStore) AttachToInvoice(ctx context.Context, itemIDs []string, invoiceID string) error {
	for _, id := range itemIDs {
		item, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if item.InvoiceID != nil || !item.Approved {
			return ierr.NewError("some billing items are already invoiced or unapproved").
				WithHint("One or more items could not be attached to the invoice").
				Mark(ierr.ErrInvalidOperation)
		}
	}
	for _, id := range itemIDs {
		item, _ := s.Get(ctx, id)
		item.InvoiceID = lo.ToPtr(invoiceID)
		if err := s.InMemoryStore.Update(ctx, id, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryBillingItemStore) DetachFromInvoice(ctx context.Context, invoiceID string) error {
	items, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, item *billingitem.BillingItem, _ interface{}) bool {
		return item.InvoiceID != nil && *item.InvoiceID == invoiceID
	}, nil)
	if err != nil {
		return err
	}
	for _, item := range items {
		item.InvoiceID = nil
		if err := s.InMemoryStore.Update(ctx, item.ID, item); err != nil {
			return err
		}
	}
	return nil
}
