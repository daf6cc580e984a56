package invoice

import (
	"time"

	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model. Amounts are GST-exclusive
// in Subtotal, with the tax split stored explicitly so finalized invoices
// are not re-derived when the configured rate changes.
type Invoice struct {
	ID              string                     `db:"id" json:"id"`
	InvoiceNumber   string                     `db:"invoice_number" json:"invoice_number"`
	ClientID        string                     `db:"client_id" json:"client_id"`
	BillingPeriodID string                     `db:"billing_period_id" json:"billing_period_id,omitempty"`
	Currency        string                     `db:"currency" json:"currency"`
	Subtotal        decimal.Decimal            `db:"subtotal" json:"subtotal"`
	GSTAmount       decimal.Decimal            `db:"gst_amount" json:"gst_amount"`
	Total           decimal.Decimal            `db:"total" json:"total"`
	InvoiceStatus   types.InvoiceStatus        `db:"invoice_status" json:"invoice_status"`
	BillingReason   types.InvoiceBillingReason `db:"billing_reason" json:"billing_reason"`
	Description     string                     `db:"description" json:"description,omitempty"`
	IssuedAt        *time.Time                 `db:"issued_at" json:"issued_at,omitempty"`
	DueDate         *time.Time                 `db:"due_date" json:"due_date,omitempty"`
	VoidedAt        *time.Time                 `db:"voided_at" json:"voided_at,omitempty"`
	Metadata        types.Metadata             `db:"metadata" json:"metadata,omitempty"`
	LineItems       []*InvoiceLineItem         `db:"-" json:"line_items,omitempty"`
	Version         int                        `db:"version" json:"version"`
	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHint("Invoice must reference a client").
			Mark(ierr.ErrValidation)
	}

	if i.Subtotal.IsNegative() {
		return ierr.NewError("subtotal must be non negative").
			WithHint("Subtotal must be non negative").
			Mark(ierr.ErrValidation)
	}

	if i.GSTAmount.IsNegative() {
		return ierr.NewError("gst_amount must be non negative").
			WithHint("GST amount must be non negative").
			Mark(ierr.ErrValidation)
	}

	if !i.Total.Equal(i.Subtotal.Add(i.GSTAmount)) {
		return ierr.NewError("total must equal subtotal + gst_amount").
			WithHint("Invoice totals are inconsistent").
			WithReportableDetails(map[string]any{
				"subtotal":   i.Subtotal.String(),
				"gst_amount": i.GSTAmount.String(),
				"total":      i.Total.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	for _, item := range i.LineItems {
		if item.Currency != i.Currency {
			return ierr.NewError("line item currency mismatch").
				WithHint("Line item currency must match invoice currency").
				WithReportableDetails(map[string]any{
					"invoice_currency": i.Currency,
					"line_currency":    item.Currency,
				}).
				Mark(ierr.ErrValidation)
		}
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Finalize transitions a draft invoice to finalized
func (i *Invoice) Finalize(now time.Time) error {
	if i.InvoiceStatus != types.InvoiceStatusDraft {
		return ierr.NewError("only draft invoices can be finalized").
			WithHint("Invoice is not in draft status").
			WithReportableDetails(map[string]any{
				"invoice_status": i.InvoiceStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	i.InvoiceStatus = types.InvoiceStatusFinalized
	i.IssuedAt = &now
	return nil
}

// Void transitions a draft or finalized invoice to voided and is terminal
func (i *Invoice) Void(now time.Time) error {
	if i.InvoiceStatus == types.InvoiceStatusVoided {
		return ierr.NewError("invoice already voided").
			WithHint("Invoice has already been voided").
			Mark(ierr.ErrInvalidOperation)
	}
	i.InvoiceStatus = types.InvoiceStatusVoided
	i.VoidedAt = &now
	return nil
}
