package invoice

import (
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceLineItem represents a single line item in an invoice. Line items
// raised by consolidation carry the source billing item ID so a voided
// invoice can release its items back to the unbilled pool.
type InvoiceLineItem struct {
	ID            string          `db:"id" json:"id"`
	InvoiceID     string          `db:"invoice_id" json:"invoice_id"`
	ClientID      string          `db:"client_id" json:"client_id"`
	BillingItemID *string         `db:"billing_item_id" json:"billing_item_id,omitempty"`
	ServiceID     string          `db:"service_id" json:"service_id"`
	DisplayName   string          `db:"display_name" json:"display_name"`
	UnitType      types.UnitType  `db:"unit_type" json:"unit_type"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Currency      string          `db:"currency" json:"currency"`
	types.BaseModel
}

// Validate validates the invoice line item
func (i *InvoiceLineItem) Validate() error {
	if i.Amount.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Amount must be non negative").
			Mark(ierr.ErrValidation)
	}

	if i.Quantity.IsNegative() {
		return ierr.NewError("invoice line item validation failed").
			WithHint("Quantity must be non negative").
			Mark(ierr.ErrValidation)
	}

	if err := i.UnitType.Validate(); err != nil {
		return err
	}

	return nil
}
