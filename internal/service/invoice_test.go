package service

import (
	"testing"
	"time"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/billingitem"
	"github.com/paybill/paybill/internal/domain/client"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/testutil"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
	client  *client.Client
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		EventPublisher:  s.GetPublisher(),
		ClientRepo:      s.GetStores().ClientRepo,
		AgreementRepo:   s.GetStores().AgreementRepo,
		CatalogRepo:     s.GetStores().CatalogRepo,
		BillingItemRepo: s.GetStores().BillingItemRepo,
		InvoiceRepo:     s.GetStores().InvoiceRepo,
		PayrollRepo:     s.GetStores().PayrollRepo,
	})

	s.client = &client.Client{
		ID:           "client-1",
		Name:         "Acme Payroll Pty Ltd",
		ABN:          "51 824 753 556",
		Currency:     "AUD",
		PayFrequency: types.PayFrequencyMonthly,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), s.client))
}

func (s *InvoiceServiceSuite) createDraftInvoice() *dto.InvoiceResponse {
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID: s.client.ID,
		LineItems: []dto.CreateInvoiceLineItemRequest{
			{
				DisplayName: "Payroll Processing",
				UnitType:    types.UnitTypeTime,
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(50),
			},
		},
	})
	s.NoError(err)
	return resp
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	resp := s.createDraftInvoice()

	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.Equal(types.BillingReasonManual, resp.BillingReason)
	s.Equal("AUD", resp.Currency)
	s.NotEmpty(resp.InvoiceNumber)
	s.True(resp.Subtotal.Equal(decimal.NewFromInt(100)))
	s.True(resp.GSTAmount.Equal(decimal.NewFromInt(10)))
	s.True(resp.Total.Equal(decimal.NewFromInt(110)))
	s.Len(resp.LineItems, 1)
	s.Equal("$100.00", resp.FormattedSubtotal)

	// due date defaults to two weeks out
	s.NotNil(resp.DueDate)
	expected := time.Now().UTC().AddDate(0, 0, 14)
	s.WithinDuration(expected, *resp.DueDate, time.Minute)

	s.Len(s.GetPublisher().Events(publisher.TopicInvoiceCreated), 1)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRequiresLineItems() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID: s.client.ID,
	})
	s.Error(err)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceUnknownClientFails() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID: "client-missing",
		LineItems: []dto.CreateInvoiceLineItemRequest{
			{DisplayName: "Fee", UnitType: types.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestInvoiceNumbersAreSequential() {
	first := s.createDraftInvoice()
	second := s.createDraftInvoice()
	s.NotEqual(first.InvoiceNumber, second.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestFinalizeInvoice() {
	created := s.createDraftInvoice()

	finalized, err := s.service.FinalizeInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusFinalized, finalized.InvoiceStatus)
	s.NotNil(finalized.IssuedAt)
	s.Len(s.GetPublisher().Events(publisher.TopicInvoiceFinalized), 1)

	// finalizing twice is rejected
	_, err = s.service.FinalizeInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestVoidInvoiceReleasesBillingItems() {
	ctx := s.GetContext()
	created := s.createDraftInvoice()

	item := &billingitem.BillingItem{
		ID:              "item-1",
		ClientID:        s.client.ID,
		BillingPeriodID: "2026-08",
		ServiceID:       "svc-time",
		ServiceName:     "Payroll Processing",
		UnitType:        types.UnitTypeTime,
		Quantity:        decimal.NewFromInt(1),
		UnitPrice:       decimal.NewFromInt(100),
		Amount:          decimal.NewFromInt(100),
		Approved:        true,
		ServiceDate:     s.GetNow(),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BillingItemRepo.Create(ctx, item))
	s.NoError(s.GetStores().BillingItemRepo.AttachToInvoice(ctx, []string{item.ID}, created.ID))

	voided, err := s.service.VoidInvoice(ctx, created.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusVoided, voided.InvoiceStatus)
	s.NotNil(voided.VoidedAt)
	s.Len(s.GetPublisher().Events(publisher.TopicInvoiceVoided), 1)

	// the billing item is back in the unbilled pool
	stored, err := s.GetStores().BillingItemRepo.Get(ctx, item.ID)
	s.NoError(err)
	s.Nil(stored.InvoiceID)
	s.True(stored.IsUnbilled())

	// voiding is terminal
	_, err = s.service.VoidInvoice(ctx, created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesByStatus() {
	first := s.createDraftInvoice()
	s.createDraftInvoice()

	_, err := s.service.FinalizeInvoice(s.GetContext(), first.ID)
	s.NoError(err)

	finalized, err := s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{
		QueryFilter:   types.DefaultQueryFilter,
		InvoiceStatus: []types.InvoiceStatus{types.InvoiceStatusFinalized},
	})
	s.NoError(err)
	s.Equal(1, finalized.Pagination.Total)
	s.Len(finalized.Items, 1)
	s.Equal(first.ID, finalized.Items[0].ID)
}

func (s *InvoiceServiceSuite) TestStaleUpdateIsRejected() {
	ctx := s.GetContext()
	created := s.createDraftInvoice()

	current, err := s.GetStores().InvoiceRepo.Get(ctx, created.ID)
	s.NoError(err)

	// a concurrent editor holds a copy at the original version
	stale := *current
	s.NoError(s.GetStores().InvoiceRepo.Update(ctx, current))

	err = s.GetStores().InvoiceRepo.Update(ctx, &stale)
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))
}

func (s *InvoiceServiceSuite) TestGetInvoicePDF() {
	created := s.createDraftInvoice()

	data, err := s.service.GetInvoicePDF(s.GetContext(), created.ID)
	s.NoError(err)
	s.NotEmpty(data)
	s.Equal("%PDF", string(data[:4]))
}
