package types

import (
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/samber/lo"
)

// PayFrequency is how often a client's payroll is run
type PayFrequency string

const (
	PayFrequencyWeekly      PayFrequency = "weekly"
	PayFrequencyFortnightly PayFrequency = "fortnightly"
	PayFrequencyMonthly     PayFrequency = "monthly"
)

func (f PayFrequency) String() string {
	return string(f)
}

func (f PayFrequency) Validate() error {
	allowed := []PayFrequency{
		PayFrequencyWeekly,
		PayFrequencyFortnightly,
		PayFrequencyMonthly,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid pay frequency").
			WithHint("Please provide a valid pay frequency").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PayrollRunStatus tracks a payroll run through its lifecycle
type PayrollRunStatus string

const (
	PayrollRunStatusScheduled PayrollRunStatus = "scheduled"
	PayrollRunStatusCompleted PayrollRunStatus = "completed"
	PayrollRunStatusSkipped   PayrollRunStatus = "skipped"
)

func (s PayrollRunStatus) String() string {
	return string(s)
}

func (s PayrollRunStatus) Validate() error {
	allowed := []PayrollRunStatus{
		PayrollRunStatusScheduled,
		PayrollRunStatusCompleted,
		PayrollRunStatusSkipped,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payroll run status").
			WithHint("Please provide a valid payroll run status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PayrollRunFilter is the list filter for payroll runs
type PayrollRunFilter struct {
	QueryFilter
	ClientID        string `json:"client_id,omitempty" form:"client_id"`
	BillingPeriodID string `json:"billing_period_id,omitempty" form:"billing_period_id"`
}

func (f PayrollRunFilter) Validate() error {
	return f.QueryFilter.Validate()
}
