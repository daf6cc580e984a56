package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/config"
	"github.com/paybill/paybill/internal/domain/billingitem"
	"github.com/paybill/paybill/internal/domain/client"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/testutil"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestAgeInDays(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		oldest time.Time
		want   int
	}{
		{"same instant", now, 0},
		{"future date", now.Add(24 * time.Hour), 0},
		{"four hours rounds up to one day", now.Add(-4 * time.Hour), 1},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"one day and an hour", now.Add(-25 * time.Hour), 2},
		{"thirty days", now.AddDate(0, 0, -30), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeInDays(tt.oldest, now))
		})
	}
}

func TestClassifyGroup(t *testing.T) {
	cfg := config.BillingConfig{
		OverdueAfterDays: 30,
		ReadyAfterDays:   7,
		ReadyMinItems:    3,
	}

	tests := []struct {
		name      string
		ageInDays int
		itemCount int
		want      types.ConsolidationStatus
	}{
		{"fresh small group", 1, 1, types.ConsolidationStatusPending},
		{"old enough but too few items", 10, 2, types.ConsolidationStatusPending},
		{"enough items but too young", 6, 5, types.ConsolidationStatusPending},
		{"ready at both thresholds", 7, 3, types.ConsolidationStatusReadyToBill},
		{"ready well past thresholds", 20, 10, types.ConsolidationStatusReadyToBill},
		{"thirty days is not yet overdue", 30, 2, types.ConsolidationStatusPending},
		{"thirty days with items is ready", 30, 3, types.ConsolidationStatusReadyToBill},
		{"thirty one days is overdue", 31, 1, types.ConsolidationStatusOverdue},
		{"overdue wins over ready", 45, 10, types.ConsolidationStatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyGroup(tt.ageInDays, tt.itemCount, cfg))
		})
	}
}

type ConsolidationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ConsolidationService

	itemSeq int
}

func TestConsolidationService(t *testing.T) {
	suite.Run(t, new(ConsolidationServiceSuite))
}

func (s *ConsolidationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.itemSeq = 0
	s.service = NewConsolidationService(ServiceParams{
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
}

func (s *ConsolidationServiceSuite) createClient(id, name string) *client.Client {
	cl := &client.Client{
		ID:           id,
		Name:         name,
		Currency:     "AUD",
		PayFrequency: types.PayFrequencyMonthly,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), cl))
	return cl
}

// createUnbilledItem creates an approved, uninvoiced billing item whose
// service date lies ageDays and a half back, so the computed ceil age is
// ageDays plus one regardless of test runtime.
func (s *ConsolidationServiceSuite) createUnbilledItem(clientID, periodID string, amount int64, ageDays int) *billingitem.BillingItem {
	s.itemSeq++
	item := &billingitem.BillingItem{
		ID:              fmt.Sprintf("item-%d", s.itemSeq),
		ClientID:        clientID,
		BillingPeriodID: periodID,
		ServiceID:       "svc-time",
		ServiceName:     "Payroll Processing",
		UnitType:        types.UnitTypeTime,
		Quantity:        decimal.NewFromInt(1),
		UnitPrice:       decimal.NewFromInt(amount),
		Amount:          decimal.NewFromInt(amount),
		Approved:        true,
		ServiceDate:     time.Now().UTC().Add(-time.Duration(ageDays)*24*time.Hour - 12*time.Hour),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().BillingItemRepo.Create(s.GetContext(), item))
	return item
}

func (s *ConsolidationServiceSuite) TestGetUnbilledGroupsAndClassifies() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createClient("client-b", "Bunya Holdings")

	// client-a, one period, three week-old items: ready to bill
	s.createUnbilledItem("client-a", "2026-08", 100, 7)
	s.createUnbilledItem("client-a", "2026-08", 200, 7)
	s.createUnbilledItem("client-a", "2026-08", 300, 7)

	// client-b, fresh single item: pending
	s.createUnbilledItem("client-b", "2026-08", 50, 0)

	resp, err := s.service.GetUnbilled(s.GetContext())
	s.NoError(err)
	s.Len(resp.Groups, 2)

	// groups come back oldest first
	groupA := resp.Groups[0]
	s.Equal("client-a", groupA.ClientID)
	s.Equal("Acme Pty Ltd", groupA.ClientName)
	s.Equal(3, groupA.ItemCount)
	s.True(groupA.TotalAmount.Equal(decimal.NewFromInt(600)))
	s.Equal(8, groupA.AgeInDays)
	s.Equal(types.ConsolidationStatusReadyToBill, groupA.Status)

	groupB := resp.Groups[1]
	s.Equal("client-b", groupB.ClientID)
	s.Equal(types.ConsolidationStatusPending, groupB.Status)
}

func (s *ConsolidationServiceSuite) TestGetUnbilledSkipsUnapprovedAndInvoiced() {
	s.createClient("client-a", "Acme Pty Ltd")

	item := s.createUnbilledItem("client-a", "2026-08", 100, 1)
	item.Approved = false
	s.NoError(s.GetStores().BillingItemRepo.Update(s.GetContext(), item))

	resp, err := s.service.GetUnbilled(s.GetContext())
	s.NoError(err)
	s.Empty(resp.Groups)
}

func (s *ConsolidationServiceSuite) TestSelectionMatchesEitherAxis() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createClient("client-b", "Bunya Holdings")

	s.createUnbilledItem("client-a", "2026-07", 100, 10)
	s.createUnbilledItem("client-b", "2026-07", 200, 10)
	s.createUnbilledItem("client-b", "2026-08", 400, 3)

	// client axis picks up client-a's group, period axis picks up the
	// 2026-08 group; client-b's 2026-07 group matches neither
	totals, err := s.service.GetSelectionTotals(s.GetContext(), dto.ConsolidationSelectionRequest{
		ClientIDs:        []string{"client-a"},
		BillingPeriodIDs: []string{"2026-08"},
	})
	s.NoError(err)
	s.True(totals.TotalAmount.Equal(decimal.NewFromInt(500)), "total = %s", totals.TotalAmount)
	s.Equal(2, totals.TotalItems)
	s.Equal(2, totals.ClientCount)
}

func (s *ConsolidationServiceSuite) TestSelectionTotalsAcrossClients() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createClient("client-b", "Bunya Holdings")

	s.createUnbilledItem("client-a", "2026-08", 100, 5)
	s.createUnbilledItem("client-a", "2026-08", 50, 5)
	s.createUnbilledItem("client-b", "2026-08", 50, 5)

	totals, err := s.service.GetSelectionTotals(s.GetContext(), dto.ConsolidationSelectionRequest{
		ClientIDs: []string{"client-a", "client-b"},
	})
	s.NoError(err)
	s.True(totals.TotalAmount.Equal(decimal.NewFromInt(200)))
	s.Equal(3, totals.TotalItems)
	s.Equal(2, totals.ClientCount)
}

func (s *ConsolidationServiceSuite) TestSelectionMatchingBothAxesCountsOnce() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createUnbilledItem("client-a", "2026-08", 100, 5)

	totals, err := s.service.GetSelectionTotals(s.GetContext(), dto.ConsolidationSelectionRequest{
		ClientIDs:        []string{"client-a"},
		BillingPeriodIDs: []string{"2026-08"},
	})
	s.NoError(err)
	s.True(totals.TotalAmount.Equal(decimal.NewFromInt(100)))
	s.Equal(1, totals.TotalItems)
	s.Equal(1, totals.ClientCount)
}

func (s *ConsolidationServiceSuite) TestConsolidateRaisesOneInvoicePerClient() {
	ctx := s.GetContext()
	s.createClient("client-a", "Acme Pty Ltd")
	s.createClient("client-b", "Bunya Holdings")

	itemA1 := s.createUnbilledItem("client-a", "2026-08", 100, 10)
	itemA2 := s.createUnbilledItem("client-a", "2026-08", 200, 10)
	itemB := s.createUnbilledItem("client-b", "2026-08", 400, 10)

	resp, err := s.service.Consolidate(ctx, dto.ConsolidateRequest{
		ConsolidationSelectionRequest: dto.ConsolidationSelectionRequest{
			ClientIDs: []string{"client-a", "client-b"},
		},
	})
	s.NoError(err)
	s.Empty(resp.Message)
	s.Len(resp.Invoices, 2)

	// invoices come back in client order
	invA := resp.Invoices[0]
	s.Equal("client-a", invA.ClientID)
	s.Equal(types.InvoiceStatusDraft, invA.InvoiceStatus)
	s.Equal(types.BillingReasonConsolidation, invA.BillingReason)
	s.Equal("2026-08", invA.BillingPeriodID)
	s.True(invA.Subtotal.Equal(decimal.NewFromInt(300)))
	s.True(invA.GSTAmount.Equal(decimal.NewFromInt(30)))
	s.True(invA.Total.Equal(decimal.NewFromInt(330)))
	s.Len(invA.LineItems, 2)
	s.NotEmpty(invA.InvoiceNumber)
	s.NotNil(invA.DueDate)

	invB := resp.Invoices[1]
	s.Equal("client-b", invB.ClientID)
	s.True(invB.Total.Equal(decimal.NewFromInt(440)))

	// every consolidated item is now attached to its client's invoice
	for _, item := range []*billingitem.BillingItem{itemA1, itemA2} {
		stored, err := s.GetStores().BillingItemRepo.Get(ctx, item.ID)
		s.NoError(err)
		s.NotNil(stored.InvoiceID)
		s.Equal(invA.ID, *stored.InvoiceID)
	}
	storedB, err := s.GetStores().BillingItemRepo.Get(ctx, itemB.ID)
	s.NoError(err)
	s.Equal(invB.ID, *storedB.InvoiceID)

	// the unbilled pool is now empty
	unbilled, err := s.service.GetUnbilled(ctx)
	s.NoError(err)
	s.Empty(unbilled.Groups)

	s.Len(s.GetPublisher().Events(publisher.TopicInvoiceCreated), 2)
}

func (s *ConsolidationServiceSuite) TestConsolidateSpanningPeriodsLeavesPeriodUnset() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createUnbilledItem("client-a", "2026-07", 100, 40)
	s.createUnbilledItem("client-a", "2026-08", 200, 10)

	resp, err := s.service.Consolidate(s.GetContext(), dto.ConsolidateRequest{
		ConsolidationSelectionRequest: dto.ConsolidationSelectionRequest{
			ClientIDs: []string{"client-a"},
		},
	})
	s.NoError(err)
	s.Len(resp.Invoices, 1)
	s.Empty(resp.Invoices[0].BillingPeriodID)
	s.True(resp.Invoices[0].Subtotal.Equal(decimal.NewFromInt(300)))
}

func (s *ConsolidationServiceSuite) TestConsolidateEmptySelectionIsNoOp() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createUnbilledItem("client-a", "2026-08", 100, 10)

	resp, err := s.service.Consolidate(s.GetContext(), dto.ConsolidateRequest{})
	s.NoError(err)
	s.Empty(resp.Invoices)
	s.Equal("No clients or billing periods selected; nothing to consolidate", resp.Message)

	// nothing was attached
	unbilled, err := s.service.GetUnbilled(s.GetContext())
	s.NoError(err)
	s.Len(unbilled.Groups, 1)
}

func (s *ConsolidationServiceSuite) TestConsolidateUnmatchedSelectionIsNoOp() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createUnbilledItem("client-a", "2026-08", 100, 10)

	resp, err := s.service.Consolidate(s.GetContext(), dto.ConsolidateRequest{
		ConsolidationSelectionRequest: dto.ConsolidationSelectionRequest{
			ClientIDs: []string{"client-z"},
		},
	})
	s.NoError(err)
	s.Empty(resp.Invoices)
	s.Equal("Selection matched no unbilled items; nothing to consolidate", resp.Message)
}

func (s *ConsolidationServiceSuite) TestAutoGenerateSweepsAgedGroupsOnly() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createClient("client-b", "Bunya Holdings")

	aged := s.createUnbilledItem("client-a", "2026-06", 500, 35)
	fresh := s.createUnbilledItem("client-b", "2026-08", 100, 5)

	resp, err := s.service.AutoGenerate(s.GetContext())
	s.NoError(err)
	s.Len(resp.Invoices, 1)
	s.Equal(1, resp.EligibleClients)
	s.Equal("client-a", resp.Invoices[0].ClientID)
	s.Equal(types.BillingReasonAutoGeneration, resp.Invoices[0].BillingReason)

	stored, err := s.GetStores().BillingItemRepo.Get(s.GetContext(), aged.ID)
	s.NoError(err)
	s.NotNil(stored.InvoiceID)

	storedFresh, err := s.GetStores().BillingItemRepo.Get(s.GetContext(), fresh.ID)
	s.NoError(err)
	s.Nil(storedFresh.InvoiceID)
}

func (s *ConsolidationServiceSuite) TestAutoGenerateWithNothingAgedIsNoOp() {
	s.createClient("client-a", "Acme Pty Ltd")
	s.createUnbilledItem("client-a", "2026-08", 100, 5)

	resp, err := s.service.AutoGenerate(s.GetContext())
	s.NoError(err)
	s.Empty(resp.Invoices)
	s.Equal("No clients currently meet the auto-generation age threshold", resp.Message)
}
