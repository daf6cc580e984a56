package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/config"
	"github.com/paybill/paybill/internal/domain/billingitem"
	"github.com/paybill/paybill/internal/domain/invoice"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const defaultDueInDays = 14

// AgeInDays computes the age of the oldest unbilled item in whole days,
// rounding any partial day up. A four hour old item is one day old.
func AgeInDays(oldest, now time.Time) int {
	elapsed := now.Sub(oldest)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

// ClassifyGroup determines the consolidation status of an unbilled group.
// Age strictly beyond the overdue threshold wins over everything else;
// otherwise a group old enough with enough items is ready to bill.
func ClassifyGroup(ageInDays, itemCount int, cfg config.BillingConfig) types.ConsolidationStatus {
	if ageInDays > cfg.OverdueAfterDays {
		return types.ConsolidationStatusOverdue
	}
	if ageInDays >= cfg.ReadyAfterDays && itemCount >= cfg.ReadyMinItems {
		return types.ConsolidationStatusReadyToBill
	}
	return types.ConsolidationStatusPending
}

// ConsolidationService groups unbilled billing items and turns selections
// of those groups into invoices
type ConsolidationService interface {
	// GetUnbilled returns every approved, uninvoiced group of billing
	// items keyed by client and billing period, classified for billing
	GetUnbilled(ctx context.Context) (*dto.GetUnbilledResponse, error)

	// GetSelectionTotals computes running totals for the groups matched
	// by the selection
	GetSelectionTotals(ctx context.Context, req dto.ConsolidationSelectionRequest) (*dto.SelectionTotalsResponse, error)

	// Consolidate raises one draft invoice per client covering the
	// selected groups. An empty match is a no-op with a message.
	Consolidate(ctx context.Context, req dto.ConsolidateRequest) (*dto.ConsolidateResponse, error)

	// AutoGenerate sweeps groups whose age has reached the overdue
	// threshold and raises invoices for them without operator selection
	AutoGenerate(ctx context.Context) (*dto.AutoGenerateResponse, error)
}

type consolidationService struct {
	ServiceParams
}

func NewConsolidationService(params ServiceParams) ConsolidationService {
	return &consolidationService{
		ServiceParams: params,
	}
}

// unbilledGroup pairs a classified group with its source items
type unbilledGroup struct {
	dto.UnbilledGroupResponse
	items []*billingitem.BillingItem
}

func (s *consolidationService) GetUnbilled(ctx context.Context) (*dto.GetUnbilledResponse, error) {
	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(groups, func(g *unbilledGroup, _ int) *dto.UnbilledGroupResponse {
		return &g.UnbilledGroupResponse
	})
	return &dto.GetUnbilledResponse{Groups: responses}, nil
}

func (s *consolidationService) GetSelectionTotals(ctx context.Context, req dto.ConsolidationSelectionRequest) (*dto.SelectionTotalsResponse, error) {
	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, err
	}

	selected := selectGroups(groups, req)
	totals := &dto.SelectionTotalsResponse{TotalAmount: decimal.Zero}
	clients := make(map[string]struct{})
	for _, g := range selected {
		totals.TotalAmount = totals.TotalAmount.Add(g.TotalAmount)
		totals.TotalItems += g.ItemCount
		clients[g.ClientID] = struct{}{}
	}
	totals.ClientCount = len(clients)
	return totals, nil
}

func (s *consolidationService) Consolidate(ctx context.Context, req dto.ConsolidateRequest) (*dto.ConsolidateResponse, error) {
	if req.IsEmpty() {
		return &dto.ConsolidateResponse{
			Invoices: []*dto.InvoiceResponse{},
			Message:  "No clients or billing periods selected; nothing to consolidate",
		}, nil
	}

	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, err
	}

	selected := selectGroups(groups, req.ConsolidationSelectionRequest)
	if len(selected) == 0 {
		return &dto.ConsolidateResponse{
			Invoices: []*dto.InvoiceResponse{},
			Message:  "Selection matched no unbilled items; nothing to consolidate",
		}, nil
	}

	invoices, err := s.raiseInvoices(ctx, selected, types.BillingReasonConsolidation, req.DueInDays)
	if err != nil {
		return nil, err
	}

	return &dto.ConsolidateResponse{Invoices: invoices}, nil
}

func (s *consolidationService) AutoGenerate(ctx context.Context) (*dto.AutoGenerateResponse, error) {
	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, err
	}

	eligible := lo.Filter(groups, func(g *unbilledGroup, _ int) bool {
		return g.AgeInDays >= s.Config.Billing.OverdueAfterDays
	})

	clients := lo.Uniq(lo.Map(eligible, func(g *unbilledGroup, _ int) string {
		return g.ClientID
	}))

	if len(eligible) == 0 {
		return &dto.AutoGenerateResponse{
			Invoices: []*dto.InvoiceResponse{},
			Message:  "No clients currently meet the auto-generation age threshold",
		}, nil
	}

	invoices, err := s.raiseInvoices(ctx, eligible, types.BillingReasonAutoGeneration, 0)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("auto-generation sweep complete",
		"eligible_clients", len(clients),
		"invoices_raised", len(invoices))

	return &dto.AutoGenerateResponse{
		Invoices:        invoices,
		EligibleClients: len(clients),
	}, nil
}

// loadGroups loads every approved uninvoiced item and folds them into
// classified client/period groups ordered oldest first
func (s *consolidationService) loadGroups(ctx context.Context) ([]*unbilledGroup, error) {
	filter := &types.BillingItemFilter{
		QueryFilter:  types.NoLimitQueryFilter,
		ApprovedOnly: true,
		UnbilledOnly: true,
	}
	items, err := s.BillingItemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	byKey := make(map[string]*unbilledGroup)
	clientNames := make(map[string]string)

	for _, item := range items {
		key := item.ClientID + "/" + item.BillingPeriodID
		group, ok := byKey[key]
		if !ok {
			name, ok := clientNames[item.ClientID]
			if !ok {
				cl, err := s.ClientRepo.Get(ctx, item.ClientID)
				if err != nil {
					return nil, err
				}
				name = cl.Name
				clientNames[item.ClientID] = name
			}

			group = &unbilledGroup{
				UnbilledGroupResponse: dto.UnbilledGroupResponse{
					ClientID:        item.ClientID,
					ClientName:      name,
					BillingPeriodID: item.BillingPeriodID,
					TotalAmount:     decimal.Zero,
					OldestItemDate:  item.ServiceDate,
				},
			}
			byKey[key] = group
		}

		group.TotalAmount = group.TotalAmount.Add(item.Amount)
		group.ItemCount++
		if item.ServiceDate.Before(group.OldestItemDate) {
			group.OldestItemDate = item.ServiceDate
		}
		group.items = append(group.items, item)
	}

	groups := lo.Values(byKey)
	for _, group := range groups {
		count, err := s.PayrollRepo.CountByClientAndPeriod(ctx, group.ClientID, group.BillingPeriodID)
		if err != nil {
			return nil, err
		}
		group.PayrollCount = count
		group.AgeInDays = AgeInDays(group.OldestItemDate, now)
		group.Status = ClassifyGroup(group.AgeInDays, group.ItemCount, s.Config.Billing)
	}

	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].OldestItemDate.Equal(groups[j].OldestItemDate) {
			return groups[i].OldestItemDate.Before(groups[j].OldestItemDate)
		}
		return groups[i].ClientID < groups[j].ClientID
	})
	return groups, nil
}

// selectGroups matches groups against the two selection axes. Matching
// either axis selects the group; matching both never double counts
// because each group appears in the input once.
func selectGroups(groups []*unbilledGroup, selection dto.ConsolidationSelectionRequest) []*unbilledGroup {
	return lo.Filter(groups, func(g *unbilledGroup, _ int) bool {
		return lo.Contains(selection.ClientIDs, g.ClientID) ||
			lo.Contains(selection.BillingPeriodIDs, g.BillingPeriodID)
	})
}

// raiseInvoices creates one draft invoice per client covering all of that
// client's selected items. Each invoice and its item attachments commit
// in a single transaction.
func (s *consolidationService) raiseInvoices(ctx context.Context, groups []*unbilledGroup, reason types.InvoiceBillingReason, dueInDays int) ([]*dto.InvoiceResponse, error) {
	if dueInDays <= 0 {
		dueInDays = defaultDueInDays
	}

	byClient := make(map[string][]*unbilledGroup)
	clientOrder := make([]string, 0)
	for _, group := range groups {
		if _, ok := byClient[group.ClientID]; !ok {
			clientOrder = append(clientOrder, group.ClientID)
		}
		byClient[group.ClientID] = append(byClient[group.ClientID], group)
	}
	sort.Strings(clientOrder)

	now := time.Now().UTC()
	invoices := make([]*dto.InvoiceResponse, 0, len(clientOrder))

	for _, clientID := range clientOrder {
		inv, err := s.raiseClientInvoice(ctx, clientID, byClient[clientID], reason, now, dueInDays)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *consolidationService) raiseClientInvoice(ctx context.Context, clientID string, groups []*unbilledGroup, reason types.InvoiceBillingReason, now time.Time, dueInDays int) (*dto.InvoiceResponse, error) {
	cl, err := s.ClientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	currency := cl.Currency
	if currency == "" {
		currency = s.Config.Billing.DefaultCurrency
	}

	items := make([]*billingitem.BillingItem, 0)
	periods := make([]string, 0)
	for _, group := range groups {
		items = append(items, group.items...)
		periods = append(periods, group.BillingPeriodID)
	}
	if len(items) == 0 {
		return nil, ierr.NewError("no items to consolidate").
			WithHint("Selected groups contain no billable items").
			Mark(ierr.ErrInvalidOperation)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	precision := types.GetCurrencyPrecision(currency)
	gst := types.CalculateGST(subtotal, s.Config.Billing.GSTRate)
	gstAmount := gst.GST.Round(precision)

	number, err := s.InvoiceRepo.NextInvoiceNumber(ctx, fmt.Sprintf("%d", now.Year()))
	if err != nil {
		return nil, err
	}

	dueDate := now.AddDate(0, 0, dueInDays)
	periodID := ""
	if len(lo.Uniq(periods)) == 1 {
		periodID = periods[0]
	}

	inv := &invoice.Invoice{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:   number,
		ClientID:        clientID,
		BillingPeriodID: periodID,
		Currency:        currency,
		Subtotal:        subtotal,
		GSTAmount:       gstAmount,
		Total:           subtotal.Add(gstAmount),
		InvoiceStatus:   types.InvoiceStatusDraft,
		BillingReason:   reason,
		Description:     fmt.Sprintf("Consolidated billing for %s", cl.Name),
		DueDate:         &dueDate,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}

	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		inv.LineItems = append(inv.LineItems, &invoice.InvoiceLineItem{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:     inv.ID,
			ClientID:      clientID,
			BillingItemID: lo.ToPtr(item.ID),
			ServiceID:     item.ServiceID,
			DisplayName:   item.ServiceName,
			UnitType:      item.UnitType,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Amount:        item.Amount,
			Currency:      currency,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		})
		itemIDs = append(itemIDs, item.ID)
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context, _ *sqlx.Tx) error {
		if err := s.InvoiceRepo.Create(txCtx, inv); err != nil {
			return err
		}
		return s.BillingItemRepo.AttachToInvoice(txCtx, itemIDs, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.EventPublisher.Publish(ctx, publisher.TopicInvoiceCreated, map[string]any{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"client_id":      clientID,
		"total":          inv.Total.String(),
		"billing_reason": reason.String(),
	}); err != nil {
		s.Logger.Errorw("failed to publish invoice created event", "error", err, "invoice_id", inv.ID)
	}

	response := dto.NewInvoiceResponse(inv)
	response.WithFormattedAmounts(s.Config.Billing.DefaultLocale)
	return response, nil
}
