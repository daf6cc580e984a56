package testutil

import (
	"context"

	"github.com/paybill/paybill/internal/domain/payroll"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
)

// InMemoryPayrollStore implements payroll.Repository
type InMemoryPayrollStore struct {
	*InMemoryStore[*payroll.PayrollRun]
}

func NewInMemoryPayrollStore() *InMemoryPayrollStore {
	return &InMemoryPayrollStore{
		InMemoryStore: NewInMemoryStore[*payroll.PayrollRun](),
	}
}

func (s *InMemoryPayrollStore) Create(ctx context.Context, run *payroll.PayrollRun) error {
	if err := s.InMemoryStore.Create(ctx, run.ID, run); err != nil {
		return ierr.WithError(err).
			WithHint("Payroll run already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryPayrollStore) Get(ctx context.Context, id string) (*payroll.PayrollRun, error) {
	run, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || run.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("payroll run with ID %s was not found", id).
			WithHintf("Payroll run with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return run, nil
}

func (s *InMemoryPayrollStore) Update(ctx context.Context, run *payroll.PayrollRun) error {
	if err := s.InMemoryStore.Update(ctx, run.ID, run); err != nil {
		return ierr.WithError(err).
			WithHintf("Payroll run with ID %s was not found", run.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func payrollFilterFn(ctx context.Context, run *payroll.PayrollRun, filter interface{}) bool {
	f, ok := filter.(*types.PayrollRunFilter)
	if !ok {
		return true
	}
	if run.TenantID != types.GetTenantID(ctx) {
		return false
	}
	if run.Status != f.GetStatus() {
		return false
	}
	if f.ClientID != "" && run.ClientID != f.ClientID {
		return false
	}
	if f.BillingPeriodID != "" && run.BillingPeriodID != f.BillingPeriodID {
		return false
	}
	return true
}

func (s *InMemoryPayrollStore) List(ctx context.Context, filter *types.PayrollRunFilter) ([]*payroll.PayrollRun, error) {
	return s.InMemoryStore.List(ctx, filter, payrollFilterFn, func(i, j *payroll.PayrollRun) bool {
		return i.PayDate.After(j.PayDate)
	})
}

func (s *InMemoryPayrollStore) Count(ctx context.Context, filter *types.PayrollRunFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, payrollFilterFn)
}

func (s *InMemoryPayrollStore) CountByClientAndPeriod(ctx context.Context, clientID, billingPeriodID string) (int, error) {
	return s.InMemoryStore.Count(ctx, nil, func(_ context.Context, run *payroll.PayrollRun, _ interface{}) bool {
		return run.ClientID == clientID &&
			run.BillingPeriodID == billingPeriodID &&
			run.RunStatus == types.PayrollRunStatusCompleted &&
			run.Status == types.StatusPublished
	})
}
