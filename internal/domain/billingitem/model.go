package billingitem

import (
	"time"

	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// BillingItem is a single billable charge for a client within a billing
// period. Items start unapproved and uninvoiced; consolidation attaches
// approved items to an invoice.
type BillingItem struct {
	ID              string          `db:"id" json:"id"`
	ClientID        string          `db:"client_id" json:"client_id"`
	BillingPeriodID string          `db:"billing_period_id" json:"billing_period_id"`
	ServiceID       string          `db:"service_id" json:"service_id"`
	ServiceName     string          `db:"service_name" json:"service_name"`
	UnitType        types.UnitType  `db:"unit_type" json:"unit_type"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	DisplayQuantity string          `db:"display_quantity" json:"display_quantity,omitempty"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Description     string          `db:"description" json:"description,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	Approved        bool            `db:"approved" json:"approved"`
	InvoiceID       *string         `db:"invoice_id" json:"invoice_id,omitempty"`
	ServiceDate     time.Time       `db:"service_date" json:"service_date"`
	types.BaseModel
}

// IsUnbilled reports whether the item is approved but not yet invoiced
func (b *BillingItem) IsUnbilled() bool {
	return b.Approved && b.InvoiceID == nil
}

func (b *BillingItem) Validate() error {
	if b.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHint("Billing item must reference a client").
			Mark(ierr.ErrValidation)
	}

	if err := b.UnitType.Validate(); err != nil {
		return err
	}

	if b.Quantity.IsNegative() {
		return ierr.NewError("quantity must be non negative").
			WithHint("Quantity must be non negative").
			WithReportableDetails(map[string]any{
				"quantity": b.Quantity.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if b.UnitPrice.IsNegative() {
		return ierr.NewError("unit_price must be non negative").
			WithHint("Unit price must be non negative").
			WithReportableDetails(map[string]any{
				"unit_price": b.UnitPrice.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	// amount is always the product of quantity and unit price; the
	// tolerance covers currency rounding of the stored amount
	tolerance := decimal.New(1, -2)
	if b.Amount.Sub(b.Quantity.Mul(b.UnitPrice)).Abs().GreaterThan(tolerance) {
		return ierr.NewError("amount must equal quantity * unit_price").
			WithHint("Amount does not match quantity and unit price").
			WithReportableDetails(map[string]any{
				"amount":     b.Amount.String(),
				"quantity":   b.Quantity.String(),
				"unit_price": b.UnitPrice.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
