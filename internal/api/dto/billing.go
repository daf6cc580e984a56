package dto

import (
	"time"

	"github.com/paybill/paybill/internal/domain/billingitem"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/paybill/paybill/internal/validator"
	"github.com/shopspring/decimal"
)

// TimeEntryRequest is a draft time-based charge. Time can be supplied as
// parsed units or as a raw string ("1:30", "90min", "1h 30m", "1.5");
// when both are present the parsed units win.
type TimeEntryRequest struct {
	// service_id identifies the catalog service being billed
	ServiceID string `json:"service_id" validate:"required"`

	// time_units is the charge in 6-minute units
	TimeUnits *decimal.Decimal `json:"time_units,omitempty"`

	// time_string is a flexible raw time input parsed server side
	TimeString string `json:"time_string,omitempty"`

	// custom_rate overrides the agreement and base rates for this line
	CustomRate *decimal.Decimal `json:"custom_rate,omitempty"`

	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Units resolves the entry's billing units. Unparseable time strings
// degrade to zero units, matching the lenient input contract.
func (r TimeEntryRequest) Units() decimal.Decimal {
	if r.TimeUnits != nil {
		if r.TimeUnits.IsNegative() {
			return decimal.Zero
		}
		return *r.TimeUnits
	}
	return types.ParseTimeUnits(r.TimeString)
}

// QuantityEntryRequest is a draft count-based charge (employees, payslips
// or a custom quantity)
type QuantityEntryRequest struct {
	ServiceID  string           `json:"service_id" validate:"required"`
	Quantity   decimal.Decimal  `json:"quantity"`
	CustomRate *decimal.Decimal `json:"custom_rate,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

// ServiceConfirmationRequest includes or excludes a fixed-fee service as
// a whole
type ServiceConfirmationRequest struct {
	ServiceID  string           `json:"service_id" validate:"required"`
	Confirmed  bool             `json:"confirmed"`
	CustomRate *decimal.Decimal `json:"custom_rate,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

// BillingPreviewRequest computes line amounts and a summary for a set of
// draft entries without persisting anything
type BillingPreviewRequest struct {
	ClientID        string `json:"client_id" validate:"required"`
	BillingPeriodID string `json:"billing_period_id,omitempty"`

	// currency overrides the client's invoicing currency for display
	Currency string `json:"currency,omitempty"`

	TimeEntries     []TimeEntryRequest           `json:"time_entries,omitempty"`
	QuantityEntries []QuantityEntryRequest       `json:"quantity_entries,omitempty"`
	Confirmations   []ServiceConfirmationRequest `json:"confirmations,omitempty"`
}

func (r *BillingPreviewRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if len(r.TimeEntries) == 0 && len(r.QuantityEntries) == 0 && len(r.Confirmations) == 0 {
		return ierr.NewError("no entries provided").
			WithHint("Provide at least one time entry, quantity entry or confirmation").
			Mark(ierr.ErrValidation)
	}

	for _, entry := range r.TimeEntries {
		if entry.CustomRate != nil && entry.CustomRate.IsNegative() {
			return ierr.NewError("custom_rate must be non negative").
				WithHint("Custom rate must be non negative").
				Mark(ierr.ErrValidation)
		}
	}
	for _, entry := range r.QuantityEntries {
		if entry.Quantity.IsNegative() {
			return ierr.NewError("quantity must be non negative").
				WithHint("Quantity must be non negative").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// CreateBillingItemsRequest persists the computed lines as billing items
// in the given period. Items are created unapproved.
type CreateBillingItemsRequest struct {
	BillingPreviewRequest
	ServiceDate *time.Time `json:"service_date,omitempty"`
}

// BillingLineItemResponse is a computed preview line
type BillingLineItemResponse struct {
	ServiceID       string          `json:"service_id"`
	ServiceName     string          `json:"service_name"`
	UnitType        types.UnitType  `json:"unit_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	DisplayQuantity string          `json:"display_quantity,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Amount          decimal.Decimal `json:"amount"`
	FormattedAmount string          `json:"formatted_amount,omitempty"`
	Description     string          `json:"description,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// BillingSummaryResponse augments the computed summary with display strings
type BillingSummaryResponse struct {
	types.BillingSummary
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedGST      string `json:"formatted_gst"`
	FormattedTotal    string `json:"formatted_total"`
}

// BillingPreviewResponse is the full computed preview
type BillingPreviewResponse struct {
	Currency  string                    `json:"currency"`
	LineItems []BillingLineItemResponse `json:"line_items"`
	Summary   BillingSummaryResponse    `json:"summary"`
}

// BillingItemResponse wraps a persisted billing item
type BillingItemResponse struct {
	*billingitem.BillingItem
	FormattedAmount string `json:"formatted_amount,omitempty"`
}

// ListBillingItemsResponse is a paginated billing item list
type ListBillingItemsResponse = types.ListResponse[*BillingItemResponse]
