package dto

import (
	"time"

	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// UnbilledGroupResponse is one client/period group of approved,
// uninvoiced billing items with its eligibility classification
type UnbilledGroupResponse struct {
	ClientID          string                    `json:"client_id"`
	ClientName        string                    `json:"client_name"`
	BillingPeriodID   string                    `json:"billing_period_id"`
	BillingPeriodName string                    `json:"billing_period_name,omitempty"`
	TotalAmount       decimal.Decimal           `json:"total_amount"`
	ItemCount         int                       `json:"item_count"`
	OldestItemDate    time.Time                 `json:"oldest_item_date"`
	AgeInDays         int                       `json:"age_in_days"`
	PayrollCount      int                       `json:"payroll_count"`
	Status            types.ConsolidationStatus `json:"status"`
}

// GetUnbilledResponse lists the classified unbilled groups
type GetUnbilledResponse struct {
	Groups []*UnbilledGroupResponse `json:"groups"`
}

// ConsolidationSelectionRequest selects unbilled groups along two
// independent axes. A group matching either axis is selected; a group
// matching both is still counted once.
type ConsolidationSelectionRequest struct {
	ClientIDs        []string `json:"client_ids,omitempty"`
	BillingPeriodIDs []string `json:"billing_period_ids,omitempty"`
}

func (r *ConsolidationSelectionRequest) Validate() error {
	if len(r.ClientIDs) == 0 && len(r.BillingPeriodIDs) == 0 {
		return ierr.NewError("empty selection").
			WithHint("Select at least one client or billing period").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsEmpty reports whether nothing is selected
func (r *ConsolidationSelectionRequest) IsEmpty() bool {
	return len(r.ClientIDs) == 0 && len(r.BillingPeriodIDs) == 0
}

// SelectionTotalsResponse summarizes the current selection
type SelectionTotalsResponse struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalItems  int             `json:"total_items"`
	ClientCount int             `json:"client_count"`
}

// ConsolidateRequest turns the selected groups into one invoice per client
type ConsolidateRequest struct {
	ConsolidationSelectionRequest
	// due_in_days sets the invoice due date relative to creation
	DueInDays int `json:"due_in_days,omitempty"`
}

// ConsolidateResponse reports the invoices raised by a consolidation run.
// A run with nothing to do is a no-op, not an error.
type ConsolidateResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	// message carries the informational no-op notice when empty
	Message string `json:"message,omitempty"`
}

// AutoGenerateResponse reports the scheduled sweep of aged unbilled groups
type AutoGenerateResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	// eligible_clients is the number of clients that met the age threshold
	EligibleClients int    `json:"eligible_clients"`
	Message         string `json:"message,omitempty"`
}
