package service

import (
	"context"
	"time"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/agreement"
	"github.com/paybill/paybill/internal/domain/billingitem"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ComputeLineAmount computes a line amount as quantity times rate.
// Deterministic and side effect free; rounding is the caller's concern.
func ComputeLineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// ResolveEffectiveRate picks the rate for a line: a per-line custom rate
// wins over the client agreement rate, which wins over the service base
// rate; with none of those the rate is zero.
func ResolveEffectiveRate(customRate, agreementRate, baseRate *decimal.Decimal) decimal.Decimal {
	for _, rate := range []*decimal.Decimal{customRate, agreementRate, baseRate} {
		if rate != nil {
			return *rate
		}
	}
	return decimal.Zero
}

// AggregateByUnitType groups computed lines by unit type. The sums are
// commutative so input order never changes the result.
func AggregateByUnitType(items []dto.BillingLineItemResponse) map[types.UnitType]types.UnitTypeTotal {
	breakdown := make(map[types.UnitType]types.UnitTypeTotal)
	for _, item := range items {
		group := breakdown[item.UnitType]
		group.Count++
		group.Total = group.Total.Add(item.Amount)
		breakdown[item.UnitType] = group
	}
	return breakdown
}

// Summarize computes the preview summary for a set of lines at the given
// GST rate. Total equals subtotal plus GST by construction.
func Summarize(items []dto.BillingLineItemResponse, gstRate decimal.Decimal) types.BillingSummary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}

	gst := types.CalculateGST(subtotal, gstRate)
	return types.BillingSummary{
		ItemCount: len(items),
		Subtotal:  gst.Subtotal,
		GST:       gst.GST,
		Total:     gst.Total,
		Breakdown: AggregateByUnitType(items),
	}
}

// BillingService computes billing previews and manages billing items
type BillingService interface {
	// ComputePreview computes line amounts and a summary for draft
	// entries without persisting anything
	ComputePreview(ctx context.Context, req dto.BillingPreviewRequest) (*dto.BillingPreviewResponse, error)

	// CreateBillingItems computes and persists the draft entries as
	// unapproved billing items
	CreateBillingItems(ctx context.Context, req dto.CreateBillingItemsRequest) ([]*dto.BillingItemResponse, error)

	// GetBillingItem retrieves a billing item by ID
	GetBillingItem(ctx context.Context, id string) (*dto.BillingItemResponse, error)

	// ListBillingItems retrieves billing items matching the filter
	ListBillingItems(ctx context.Context, filter *types.BillingItemFilter) (*dto.ListBillingItemsResponse, error)

	// ApproveBillingItem flags an item approved, making it eligible for
	// consolidation
	ApproveBillingItem(ctx context.Context, id string) (*dto.BillingItemResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

// resolvedLine is an internal computed line before DTO or domain mapping
type resolvedLine struct {
	def             *agreement.ServiceDefinition
	quantity        decimal.Decimal
	displayQuantity string
	unitPrice       decimal.Decimal
	amount          decimal.Decimal
	description     string
	notes           string
}

func (s *billingService) ComputePreview(ctx context.Context, req dto.BillingPreviewRequest) (*dto.BillingPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency, locale, err := s.resolveDisplay(ctx, req.ClientID, req.Currency)
	if err != nil {
		return nil, err
	}

	lines, err := s.computeLines(ctx, req, currency)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BillingLineItemResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, dto.BillingLineItemResponse{
			ServiceID:       line.def.ID,
			ServiceName:     line.def.Name,
			UnitType:        line.def.UnitType,
			Quantity:        line.quantity,
			DisplayQuantity: line.displayQuantity,
			UnitPrice:       line.unitPrice,
			Amount:          line.amount,
			FormattedAmount: types.FormatAmount(line.amount, currency, locale, false),
			Description:     line.description,
			Notes:           line.notes,
		})
	}

	summary := Summarize(items, s.Config.Billing.GSTRate)
	return &dto.BillingPreviewResponse{
		Currency:  currency,
		LineItems: items,
		Summary: dto.BillingSummaryResponse{
			BillingSummary:    summary,
			FormattedSubtotal: types.FormatAmount(summary.Subtotal, currency, locale, true),
			FormattedGST:      types.FormatAmount(summary.GST, currency, locale, true),
			FormattedTotal:    types.FormatAmount(summary.Total, currency, locale, true),
		},
	}, nil
}

func (s *billingService) CreateBillingItems(ctx context.Context, req dto.CreateBillingItemsRequest) ([]*dto.BillingItemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency, locale, err := s.resolveDisplay(ctx, req.ClientID, req.Currency)
	if err != nil {
		return nil, err
	}

	lines, err := s.computeLines(ctx, req.BillingPreviewRequest, currency)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ierr.NewError("no billable lines").
			WithHint("All entries resolved to zero billable lines").
			Mark(ierr.ErrInvalidOperation)
	}

	serviceDate := time.Now().UTC()
	if req.ServiceDate != nil {
		serviceDate = req.ServiceDate.UTC()
	}

	items := make([]*billingitem.BillingItem, 0, len(lines))
	for _, line := range lines {
		item := &billingitem.BillingItem{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_ITEM),
			ClientID:        req.ClientID,
			BillingPeriodID: req.BillingPeriodID,
			ServiceID:       line.def.ID,
			ServiceName:     line.def.Name,
			UnitType:        line.def.UnitType,
			Quantity:        line.quantity,
			DisplayQuantity: line.displayQuantity,
			UnitPrice:       line.unitPrice,
			Amount:          line.amount,
			Description:     line.description,
			Notes:           line.notes,
			ServiceDate:     serviceDate,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := s.BillingItemRepo.CreateBulk(ctx, items); err != nil {
		return nil, err
	}

	responses := make([]*dto.BillingItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, &dto.BillingItemResponse{
			BillingItem:     item,
			FormattedAmount: types.FormatAmount(item.Amount, currency, locale, false),
		})
	}
	return responses, nil
}

func (s *billingService) GetBillingItem(ctx context.Context, id string) (*dto.BillingItemResponse, error) {
	item, err := s.BillingItemRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BillingItemResponse{BillingItem: item}, nil
}

func (s *billingService) ListBillingItems(ctx context.Context, filter *types.BillingItemFilter) (*dto.ListBillingItemsResponse, error) {
	if filter == nil {
		filter = &types.BillingItemFilter{QueryFilter: types.DefaultQueryFilter}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.BillingItemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.BillingItemRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(items, func(item *billingitem.BillingItem, _ int) *dto.BillingItemResponse {
		return &dto.BillingItemResponse{BillingItem: item}
	})

	response := types.NewListResponse(responses, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

func (s *billingService) ApproveBillingItem(ctx context.Context, id string) (*dto.BillingItemResponse, error) {
	item, err := s.BillingItemRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.InvoiceID != nil {
		return nil, ierr.NewError("billing item already invoiced").
			WithHint("Invoiced items cannot be re-approved").
			Mark(ierr.ErrInvalidOperation)
	}

	if !item.Approved {
		item.Approved = true
		item.UpdatedAt = time.Now().UTC()
		item.UpdatedBy = types.GetUserID(ctx)
		if err := s.BillingItemRepo.Update(ctx, item); err != nil {
			return nil, err
		}

		if err := s.EventPublisher.Publish(ctx, publisher.TopicBillingItemApproved, map[string]any{
			"billing_item_id": item.ID,
			"client_id":       item.ClientID,
			"amount":          item.Amount.String(),
		}); err != nil {
			s.Logger.Errorw("failed to publish approval event", "error", err, "billing_item_id", item.ID)
		}
	}

	return &dto.BillingItemResponse{BillingItem: item}, nil
}

// computeLines resolves rates and computes amounts for every draft entry.
// Unconfirmed fixed-fee services contribute no line at all.
func (s *billingService) computeLines(ctx context.Context, req dto.BillingPreviewRequest, currency string) ([]resolvedLine, error) {
	currencyPrecision := types.GetCurrencyPrecision(currency)
	lines := make([]resolvedLine, 0, len(req.TimeEntries)+len(req.QuantityEntries)+len(req.Confirmations))

	for _, entry := range req.TimeEntries {
		def, rate, err := s.resolveRate(ctx, req.ClientID, entry.ServiceID, entry.CustomRate)
		if err != nil {
			return nil, err
		}

		units := entry.Units()
		hours := types.UnitsToHours(units)
		lines = append(lines, resolvedLine{
			def:             def,
			quantity:        hours,
			displayQuantity: types.FormatUnits(units),
			unitPrice:       rate,
			amount:          ComputeLineAmount(hours, rate).Round(currencyPrecision),
			description:     entry.Description,
			notes:           entry.Notes,
		})
	}

	for _, entry := range req.QuantityEntries {
		def, rate, err := s.resolveRate(ctx, req.ClientID, entry.ServiceID, entry.CustomRate)
		if err != nil {
			return nil, err
		}

		quantity := entry.Quantity
		if quantity.IsNegative() {
			quantity = decimal.Zero
		}
		lines = append(lines, resolvedLine{
			def:       def,
			quantity:  quantity,
			unitPrice: rate,
			amount:    ComputeLineAmount(quantity, rate).Round(currencyPrecision),
			notes:     entry.Notes,
		})
	}

	for _, entry := range req.Confirmations {
		if !entry.Confirmed {
			continue
		}

		def, rate, err := s.resolveRate(ctx, req.ClientID, entry.ServiceID, entry.CustomRate)
		if err != nil {
			return nil, err
		}

		lines = append(lines, resolvedLine{
			def:       def,
			quantity:  decimal.NewFromInt(1),
			unitPrice: rate,
			amount:    rate.Round(currencyPrecision),
			notes:     entry.Notes,
		})
	}

	return lines, nil
}

// resolveRate loads the catalog definition and resolves the effective
// rate for a client/service pair
func (s *billingService) resolveRate(ctx context.Context, clientID, serviceID string, customRate *decimal.Decimal) (*agreement.ServiceDefinition, decimal.Decimal, error) {
	def, err := s.CatalogRepo.Get(ctx, serviceID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	var agreementRate *decimal.Decimal
	agr, err := s.AgreementRepo.GetByClientAndService(ctx, clientID, serviceID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, decimal.Zero, err
		}
	} else {
		agreementRate = &agr.Rate
	}

	rate := ResolveEffectiveRate(customRate, agreementRate, &def.BaseRate)
	return def, rate, nil
}

// resolveDisplay resolves the display currency and locale for a client
func (s *billingService) resolveDisplay(ctx context.Context, clientID, override string) (string, string, error) {
	currency := s.Config.Billing.DefaultCurrency
	locale := s.Config.Billing.DefaultLocale

	cl, err := s.ClientRepo.Get(ctx, clientID)
	if err != nil {
		return "", "", err
	}
	if cl.Currency != "" {
		currency = cl.Currency
	}
	if override != "" {
		currency = override
	}
	return currency, locale, nil
}
