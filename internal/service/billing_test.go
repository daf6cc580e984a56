package service

import (
	"testing"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/agreement"
	"github.com/paybill/paybill/internal/domain/billingitem"
	"github.com/paybill/paybill/internal/domain/client"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/testutil"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService

	client   *client.Client
	timeSvc  *agreement.ServiceDefinition
	fixedSvc *agreement.ServiceDefinition
	countSvc *agreement.ServiceDefinition
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(s.params())
	s.setupFixtures()
}

func (s *BillingServiceSuite) params() ServiceParams {
	return ServiceParams{
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
	}
}

func (s *BillingServiceSuite) setupFixtures() {
	ctx := s.GetContext()

	s.client = &client.Client{
		ID:           "client-1",
		Name:         "Acme Payroll Pty Ltd",
		Currency:     "AUD",
		PayFrequency: types.PayFrequencyMonthly,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ClientRepo.Create(ctx, s.client))

	s.timeSvc = &agreement.ServiceDefinition{
		ID:        "svc-time",
		Name:      "Payroll Processing",
		UnitType:  types.UnitTypeTime,
		BaseRate:  decimal.NewFromInt(100),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.fixedSvc = &agreement.ServiceDefinition{
		ID:        "svc-fixed",
		Name:      "Monthly Admin Fee",
		UnitType:  types.UnitTypeFixed,
		BaseRate:  decimal.NewFromInt(200),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.countSvc = &agreement.ServiceDefinition{
		ID:        "svc-payslip",
		Name:      "Payslip Distribution",
		UnitType:  types.UnitTypePerPayslip,
		BaseRate:  decimal.NewFromInt(5),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	for _, def := range []*agreement.ServiceDefinition{s.timeSvc, s.fixedSvc, s.countSvc} {
		s.NoError(s.GetStores().CatalogRepo.Create(ctx, def))
	}
}

func (s *BillingServiceSuite) TestComputePreviewAggregatesByUnitType() {
	// one hour and three hours of time work plus a confirmed fixed fee
	req := dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		TimeEntries: []dto.TimeEntryRequest{
			{ServiceID: s.timeSvc.ID, TimeString: "1:00"},
			{ServiceID: s.timeSvc.ID, TimeUnits: lo.ToPtr(decimal.NewFromInt(30))},
		},
		Confirmations: []dto.ServiceConfirmationRequest{
			{ServiceID: s.fixedSvc.ID, Confirmed: true},
		},
	}

	resp, err := s.service.ComputePreview(s.GetContext(), req)
	s.NoError(err)
	s.Len(resp.LineItems, 3)
	s.Equal("AUD", resp.Currency)

	summary := resp.Summary
	s.Equal(3, summary.ItemCount)
	s.True(summary.Subtotal.Equal(decimal.NewFromInt(600)), "subtotal = %s", summary.Subtotal)
	s.True(summary.GST.Equal(decimal.NewFromInt(60)), "gst = %s", summary.GST)
	s.True(summary.Total.Equal(decimal.NewFromInt(660)), "total = %s", summary.Total)

	timeGroup := summary.Breakdown[types.UnitTypeTime]
	s.Equal(2, timeGroup.Count)
	s.True(timeGroup.Total.Equal(decimal.NewFromInt(400)))

	fixedGroup := summary.Breakdown[types.UnitTypeFixed]
	s.Equal(1, fixedGroup.Count)
	s.True(fixedGroup.Total.Equal(decimal.NewFromInt(200)))
}

func (s *BillingServiceSuite) TestComputePreviewOrderInvariant() {
	entries := []dto.TimeEntryRequest{
		{ServiceID: s.timeSvc.ID, TimeString: "2:30"},
		{ServiceID: s.timeSvc.ID, TimeString: "0:30"},
		{ServiceID: s.timeSvc.ID, TimeString: "1h 12m"},
	}
	reversed := []dto.TimeEntryRequest{entries[2], entries[1], entries[0]}

	first, err := s.service.ComputePreview(s.GetContext(), dto.BillingPreviewRequest{
		ClientID:    s.client.ID,
		TimeEntries: entries,
	})
	s.NoError(err)

	second, err := s.service.ComputePreview(s.GetContext(), dto.BillingPreviewRequest{
		ClientID:    s.client.ID,
		TimeEntries: reversed,
	})
	s.NoError(err)

	s.True(first.Summary.Subtotal.Equal(second.Summary.Subtotal))
	s.True(first.Summary.Total.Equal(second.Summary.Total))
	s.Equal(first.Summary.Breakdown, second.Summary.Breakdown)
}

func (s *BillingServiceSuite) TestRateResolutionPriority() {
	ctx := s.GetContext()

	// agreement rate overrides the base rate
	agr := &agreement.ServiceAgreement{
		ID:          "agr-1",
		ClientID:    s.client.ID,
		ServiceID:   s.timeSvc.ID,
		ServiceName: s.timeSvc.Name,
		UnitType:    types.UnitTypeTime,
		Rate:        decimal.NewFromInt(150),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().AgreementRepo.Create(ctx, agr))

	resp, err := s.service.ComputePreview(ctx, dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		TimeEntries: []dto.TimeEntryRequest{
			{ServiceID: s.timeSvc.ID, TimeString: "1:00"},
		},
	})
	s.NoError(err)
	s.True(resp.LineItems[0].UnitPrice.Equal(decimal.NewFromInt(150)))
	s.True(resp.LineItems[0].Amount.Equal(decimal.NewFromInt(150)))

	// a per-line custom rate overrides the agreement
	resp, err = s.service.ComputePreview(ctx, dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		TimeEntries: []dto.TimeEntryRequest{
			{ServiceID: s.timeSvc.ID, TimeString: "1:00", CustomRate: lo.ToPtr(decimal.NewFromInt(80))},
		},
	})
	s.NoError(err)
	s.True(resp.LineItems[0].UnitPrice.Equal(decimal.NewFromInt(80)))

	// without agreement or custom rate the base rate applies
	resp, err = s.service.ComputePreview(ctx, dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		QuantityEntries: []dto.QuantityEntryRequest{
			{ServiceID: s.countSvc.ID, Quantity: decimal.NewFromInt(12)},
		},
	})
	s.NoError(err)
	s.True(resp.LineItems[0].UnitPrice.Equal(decimal.NewFromInt(5)))
	s.True(resp.LineItems[0].Amount.Equal(decimal.NewFromInt(60)))
}

func (s *BillingServiceSuite) TestResolveEffectiveRateDefaultsToZero() {
	rate := ResolveEffectiveRate(nil, nil, nil)
	s.True(rate.IsZero())
}

func (s *BillingServiceSuite) TestUnconfirmedFixedServiceExcluded() {
	resp, err := s.service.ComputePreview(s.GetContext(), dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		TimeEntries: []dto.TimeEntryRequest{
			{ServiceID: s.timeSvc.ID, TimeString: "1:00"},
		},
		Confirmations: []dto.ServiceConfirmationRequest{
			{ServiceID: s.fixedSvc.ID, Confirmed: false},
		},
	})
	s.NoError(err)
	s.Len(resp.LineItems, 1)
	s.Equal(s.timeSvc.ID, resp.LineItems[0].ServiceID)
}

func (s *BillingServiceSuite) TestUnparseableTimeStringYieldsZeroLine() {
	resp, err := s.service.ComputePreview(s.GetContext(), dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		TimeEntries: []dto.TimeEntryRequest{
			{ServiceID: s.timeSvc.ID, TimeString: "garbage"},
		},
	})
	s.NoError(err)
	s.Len(resp.LineItems, 1)
	s.True(resp.LineItems[0].Amount.IsZero())
	s.True(resp.Summary.Total.IsZero())
}

func (s *BillingServiceSuite) TestPreviewUnknownServiceFails() {
	_, err := s.service.ComputePreview(s.GetContext(), dto.BillingPreviewRequest{
		ClientID: s.client.ID,
		TimeEntries: []dto.TimeEntryRequest{
			{ServiceID: "svc-missing", TimeString: "1:00"},
		},
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestPreviewRequiresEntries() {
	_, err := s.service.ComputePreview(s.GetContext(), dto.BillingPreviewRequest{
		ClientID: s.client.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestCreateBillingItemsPersistsUnapproved() {
	ctx := s.GetContext()
	req := dto.CreateBillingItemsRequest{
		BillingPreviewRequest: dto.BillingPreviewRequest{
			ClientID:        s.client.ID,
			BillingPeriodID: "2026-08",
			TimeEntries: []dto.TimeEntryRequest{
				{ServiceID: s.timeSvc.ID, TimeString: "1:30", Description: "August processing"},
			},
		},
	}

	created, err := s.service.CreateBillingItems(ctx, req)
	s.NoError(err)
	s.Len(created, 1)

	item, err := s.GetStores().BillingItemRepo.Get(ctx, created[0].ID)
	s.NoError(err)
	s.False(item.Approved)
	s.Nil(item.InvoiceID)
	s.Equal("2026-08", item.BillingPeriodID)
	s.True(item.Quantity.Equal(decimal.NewFromFloat(1.5)))
	s.Equal("15 units (1hr 30min)", item.DisplayQuantity)
	s.True(item.Amount.Equal(decimal.NewFromInt(150)))
}

func (s *BillingServiceSuite) TestApproveBillingItem() {
	ctx := s.GetContext()
	created, err := s.service.CreateBillingItems(ctx, dto.CreateBillingItemsRequest{
		BillingPreviewRequest: dto.BillingPreviewRequest{
			ClientID:        s.client.ID,
			BillingPeriodID: "2026-08",
			TimeEntries: []dto.TimeEntryRequest{
				{ServiceID: s.timeSvc.ID, TimeString: "1:00"},
			},
		},
	})
	s.NoError(err)

	approved, err := s.service.ApproveBillingItem(ctx, created[0].ID)
	s.NoError(err)
	s.True(approved.Approved)

	events := s.GetPublisher().Events(publisher.TopicBillingItemApproved)
	s.Len(events, 1)
	s.Equal(created[0].ID, events[0].Payload["billing_item_id"])

	// approving again is idempotent and publishes nothing new
	again, err := s.service.ApproveBillingItem(ctx, created[0].ID)
	s.NoError(err)
	s.True(again.Approved)
	s.Len(s.GetPublisher().Events(publisher.TopicBillingItemApproved), 1)
}

func (s *BillingServiceSuite) TestApproveInvoicedItemFails() {
	ctx := s.GetContext()
	item := &billingitem.BillingItem{
		ID:              "item-invoiced",
		ClientID:        s.client.ID,
		BillingPeriodID: "2026-07",
		ServiceID:       s.timeSvc.ID,
		ServiceName:     s.timeSvc.Name,
		UnitType:        types.UnitTypeTime,
		Quantity:        decimal.NewFromInt(1),
		UnitPrice:       decimal.NewFromInt(100),
		Amount:          decimal.NewFromInt(100),
		Approved:        true,
		InvoiceID:       lo.ToPtr("inv-1"),
		ServiceDate:     s.GetNow(),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BillingItemRepo.Create(ctx, item))

	_, err := s.service.ApproveBillingItem(ctx, item.ID)
	s.Error(err)
}
