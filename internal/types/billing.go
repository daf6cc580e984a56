package types

import (
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// UnitType describes how a billable service line is quantified
type UnitType string

const (
	// UnitTypeTime bills in 6-minute time units at an hourly rate
	UnitTypeTime UnitType = "time"
	// UnitTypeFixed bills a flat fee included or excluded as a whole
	UnitTypeFixed UnitType = "fixed"
	// UnitTypePerEmployee bills per employee processed in the period
	UnitTypePerEmployee UnitType = "per_employee"
	// UnitTypePerPayslip bills per payslip issued in the period
	UnitTypePerPayslip UnitType = "per_payslip"
	// UnitTypeCustom bills an arbitrary quantity at an arbitrary rate
	UnitTypeCustom UnitType = "custom"
)

func (t UnitType) String() string {
	return string(t)
}

func (t UnitType) Validate() error {
	allowed := []UnitType{
		UnitTypeTime,
		UnitTypeFixed,
		UnitTypePerEmployee,
		UnitTypePerPayslip,
		UnitTypeCustom,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid unit type").
			WithHint("Please provide a valid unit type").
			WithReportableDetails(map[string]any{
				"allowed":  allowed,
				"provided": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GSTBreakdown is the tax split computed from a subtotal
type GSTBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	GST      decimal.Decimal `json:"gst"`
	Total    decimal.Decimal `json:"total"`
}

// CalculateGST splits a subtotal into GST and GST-inclusive total for the
// given tax rate. The rate is configuration, not a constant: Australian
// deployments pass 0.10 from BillingConfig.
func CalculateGST(subtotal decimal.Decimal, rate decimal.Decimal) GSTBreakdown {
	gst := subtotal.Mul(rate)
	return GSTBreakdown{
		Subtotal: subtotal,
		GST:      gst,
		Total:    subtotal.Add(gst),
	}
}

// UnitTypeTotal is the per-group slice of an aggregated billing preview
type UnitTypeTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// BillingSummary is a computed preview summary. It is never persisted;
// the invariants Total = Subtotal + GST and Subtotal = sum of breakdown
// totals hold by construction.
type BillingSummary struct {
	ItemCount int                        `json:"item_count"`
	Subtotal  decimal.Decimal            `json:"subtotal"`
	GST       decimal.Decimal            `json:"gst"`
	Total     decimal.Decimal            `json:"total"`
	Breakdown map[UnitType]UnitTypeTotal `json:"breakdown"`
}

// ConsolidationStatus classifies an unbilled group by age and size
type ConsolidationStatus string

const (
	ConsolidationStatusOverdue     ConsolidationStatus = "overdue"
	ConsolidationStatusReadyToBill ConsolidationStatus = "ready_to_bill"
	ConsolidationStatusPending     ConsolidationStatus = "pending"
)

func (s ConsolidationStatus) String() string {
	return string(s)
}
