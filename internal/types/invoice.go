package types

import (
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates the invoice is editable and unsent
	InvoiceStatusDraft InvoiceStatus = "draft"
	// InvoiceStatusFinalized indicates the invoice has been issued
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	// InvoiceStatusVoided indicates the invoice has been cancelled
	InvoiceStatusVoided InvoiceStatus = "voided"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusFinalized,
		InvoiceStatusVoided,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceBillingReason indicates why an invoice was created
type InvoiceBillingReason string

const (
	// BillingReasonManual is a one-off manually raised invoice
	BillingReasonManual InvoiceBillingReason = "manual"
	// BillingReasonConsolidation groups unbilled items selected by an operator
	BillingReasonConsolidation InvoiceBillingReason = "consolidation"
	// BillingReasonAutoGeneration is the scheduled sweep of aged unbilled items
	BillingReasonAutoGeneration InvoiceBillingReason = "auto_generation"
)

func (r InvoiceBillingReason) String() string {
	return string(r)
}

func (r InvoiceBillingReason) Validate() error {
	allowed := []InvoiceBillingReason{
		BillingReasonManual,
		BillingReasonConsolidation,
		BillingReasonAutoGeneration,
	}
	if !lo.Contains(allowed, r) {
		return ierr.NewError("invalid billing reason").
			WithHint("Please provide a valid billing reason").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter is the list filter for invoices
type InvoiceFilter struct {
	QueryFilter
	ClientID        string          `json:"client_id,omitempty" form:"client_id"`
	BillingPeriodID string          `json:"billing_period_id,omitempty" form:"billing_period_id"`
	InvoiceStatus   []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
}

func (f InvoiceFilter) Validate() error {
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	for _, status := range f.InvoiceStatus {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	return nil
}
