package dto

import (
	"time"

	"github.com/paybill/paybill/internal/domain/invoice"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/paybill/paybill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateInvoiceLineItemRequest is one line of a manually raised invoice
type CreateInvoiceLineItemRequest struct {
	ServiceID   string           `json:"service_id,omitempty"`
	DisplayName string           `json:"display_name" validate:"required"`
	UnitType    types.UnitType   `json:"unit_type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	// billing_item_id links the line to a source billing item when the
	// invoice is raised by consolidation
	BillingItemID *string `json:"billing_item_id,omitempty"`
}

func (r CreateInvoiceLineItemRequest) Validate() error {
	if r.Quantity.IsNegative() {
		return ierr.NewError("quantity must be non negative").
			WithHint("Quantity must be non negative").
			Mark(ierr.ErrValidation)
	}
	if r.UnitPrice.IsNegative() {
		return ierr.NewError("unit_price must be non negative").
			WithHint("Unit price must be non negative").
			Mark(ierr.ErrValidation)
	}
	return r.UnitType.Validate()
}

// CreateInvoiceRequest raises an invoice directly from line items
type CreateInvoiceRequest struct {
	ClientID        string                         `json:"client_id" validate:"required"`
	BillingPeriodID string                         `json:"billing_period_id,omitempty"`
	Currency        string                         `json:"currency,omitempty"`
	Description     string                         `json:"description,omitempty"`
	DueDate         *time.Time                     `json:"due_date,omitempty"`
	BillingReason   types.InvoiceBillingReason     `json:"billing_reason,omitempty"`
	LineItems       []CreateInvoiceLineItemRequest `json:"line_items" validate:"required,min=1"`
	Metadata        types.Metadata                 `json:"metadata,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.BillingReason != "" {
		if err := r.BillingReason.Validate(); err != nil {
			return err
		}
	}

	for _, item := range r.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// InvoiceResponse is the API shape of an invoice
type InvoiceResponse struct {
	*invoice.Invoice
	FormattedSubtotal string `json:"formatted_subtotal,omitempty"`
	FormattedGST      string `json:"formatted_gst,omitempty"`
	FormattedTotal    string `json:"formatted_total,omitempty"`
}

// NewInvoiceResponse creates an invoice response from the domain model
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// WithFormattedAmounts attaches locale formatted display amounts
func (r *InvoiceResponse) WithFormattedAmounts(locale string) *InvoiceResponse {
	r.FormattedSubtotal = types.FormatAmount(r.Subtotal, r.Currency, locale, false)
	r.FormattedGST = types.FormatAmount(r.GSTAmount, r.Currency, locale, false)
	r.FormattedTotal = types.FormatAmount(r.Total, r.Currency, locale, false)
	return r
}

// ListInvoicesResponse is a paginated invoice list
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
