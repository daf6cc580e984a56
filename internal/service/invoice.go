package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/invoice"
	"github.com/paybill/paybill/internal/pdf"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceService manages the invoice lifecycle
type InvoiceService interface {
	// CreateInvoice raises a manual draft invoice from explicit line items
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)

	// GetInvoice retrieves an invoice with its line items
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// ListInvoices retrieves invoices matching the filter
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

	// FinalizeInvoice issues a draft invoice
	FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// VoidInvoice cancels an invoice and releases its billing items back
	// to the unbilled pool
	VoidInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// GetInvoicePDF renders the invoice as a PDF document
	GetInvoicePDF(ctx context.Context, id string) ([]byte, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cl, err := s.ClientRepo.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = cl.Currency
	}
	if currency == "" {
		currency = s.Config.Billing.DefaultCurrency
	}
	precision := types.GetCurrencyPrecision(currency)

	reason := req.BillingReason
	if reason == "" {
		reason = types.BillingReasonManual
	}

	now := time.Now().UTC()
	number, err := s.InvoiceRepo.NextInvoiceNumber(ctx, fmt.Sprintf("%d", now.Year()))
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:   number,
		ClientID:        req.ClientID,
		BillingPeriodID: req.BillingPeriodID,
		Currency:        currency,
		InvoiceStatus:   types.InvoiceStatusDraft,
		BillingReason:   reason,
		Description:     req.Description,
		DueDate:         req.DueDate,
		Metadata:        req.Metadata,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if inv.DueDate == nil {
		due := now.AddDate(0, 0, defaultDueInDays)
		inv.DueDate = &due
	}

	subtotal := decimal.Zero
	for _, line := range req.LineItems {
		amount := ComputeLineAmount(line.Quantity, line.UnitPrice).Round(precision)
		subtotal = subtotal.Add(amount)
		inv.LineItems = append(inv.LineItems, &invoice.InvoiceLineItem{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:     inv.ID,
			ClientID:      req.ClientID,
			BillingItemID: line.BillingItemID,
			ServiceID:     line.ServiceID,
			DisplayName:   line.DisplayName,
			UnitType:      line.UnitType,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			Amount:        amount,
			Currency:      currency,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		})
	}

	gst := types.CalculateGST(subtotal, s.Config.Billing.GSTRate)
	inv.Subtotal = subtotal
	inv.GSTAmount = gst.GST.Round(precision)
	inv.Total = subtotal.Add(inv.GSTAmount)

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.publishInvoiceEvent(ctx, publisher.TopicInvoiceCreated, inv)
	return dto.NewInvoiceResponse(inv).WithFormattedAmounts(s.Config.Billing.DefaultLocale), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv).WithFormattedAmounts(s.Config.Billing.DefaultLocale), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = &types.InvoiceFilter{QueryFilter: types.DefaultQueryFilter}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv).WithFormattedAmounts(s.Config.Billing.DefaultLocale)
	})

	response := types.NewListResponse(responses, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

func (s *invoiceService) FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := inv.Finalize(time.Now().UTC()); err != nil {
		return nil, err
	}

	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.publishInvoiceEvent(ctx, publisher.TopicInvoiceFinalized, inv)
	return dto.NewInvoiceResponse(inv).WithFormattedAmounts(s.Config.Billing.DefaultLocale), nil
}

func (s *invoiceService) VoidInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := inv.Void(time.Now().UTC()); err != nil {
		return nil, err
	}

	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	err = s.DB.WithTx(ctx, func(txCtx context.Context, _ *sqlx.Tx) error {
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}
		return s.BillingItemRepo.DetachFromInvoice(txCtx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publishInvoiceEvent(ctx, publisher.TopicInvoiceVoided, inv)
	return dto.NewInvoiceResponse(inv).WithFormattedAmounts(s.Config.Billing.DefaultLocale), nil
}

func (s *invoiceService) GetInvoicePDF(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cl, err := s.ClientRepo.Get(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}

	return pdf.RenderInvoice(inv, cl, pdf.RenderOptions{
		Locale:  s.Config.Billing.DefaultLocale,
		GSTRate: s.Config.Billing.GSTRate,
	})
}

func (s *invoiceService) publishInvoiceEvent(ctx context.Context, topic string, inv *invoice.Invoice) {
	err := s.EventPublisher.Publish(ctx, topic, map[string]any{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"client_id":      inv.ClientID,
		"invoice_status": inv.InvoiceStatus.String(),
		"total":          inv.Total.String(),
	})
	if err != nil {
		s.Logger.Errorw("failed to publish invoice event", "error", err, "topic", topic, "invoice_id", inv.ID)
	}
}
