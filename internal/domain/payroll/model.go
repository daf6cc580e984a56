package payroll

import (
	"time"

	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
)

// PayrollRun records a single payroll execution for a client. Employee
// and payslip counts feed per_employee and per_payslip billing lines.
type PayrollRun struct {
	ID              string                 `db:"id" json:"id"`
	ClientID        string                 `db:"client_id" json:"client_id"`
	BillingPeriodID string                 `db:"billing_period_id" json:"billing_period_id"`
	PayDate         time.Time              `db:"pay_date" json:"pay_date"`
	EmployeeCount   int                    `db:"employee_count" json:"employee_count"`
	PayslipCount    int                    `db:"payslip_count" json:"payslip_count"`
	RunStatus       types.PayrollRunStatus `db:"run_status" json:"run_status"`
	types.BaseModel
}

func (r *PayrollRun) Validate() error {
	if r.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHint("Payroll run must reference a client").
			Mark(ierr.ErrValidation)
	}
	if r.PayDate.IsZero() {
		return ierr.NewError("pay_date is required").
			WithHint("Payroll run must have a pay date").
			Mark(ierr.ErrValidation)
	}
	if r.EmployeeCount < 0 || r.PayslipCount < 0 {
		return ierr.NewError("counts must be non negative").
			WithHint("Employee and payslip counts must be non negative").
			Mark(ierr.ErrValidation)
	}
	return r.RunStatus.Validate()
}

// NextPayDates derives the upcoming pay dates from the last pay date and
// the client's pay frequency. Monthly schedules anchor on the day of
// month of the last run, clamped to the shorter months.
func NextPayDates(from time.Time, frequency types.PayFrequency, count int) []time.Time {
	if count <= 0 {
		return nil
	}

	dates := make([]time.Time, 0, count)
	current := from
	for i := 0; i < count; i++ {
		switch frequency {
		case types.PayFrequencyWeekly:
			current = current.AddDate(0, 0, 7)
		case types.PayFrequencyFortnightly:
			current = current.AddDate(0, 0, 14)
		case types.PayFrequencyMonthly:
			current = addMonthClamped(current, from.Day())
		default:
			return dates
		}
		dates = append(dates, current)
	}
	return dates
}

// addMonthClamped advances one month keeping the anchor day where the
// target month allows it (Jan 31 -> Feb 28 -> Mar 31).
func addMonthClamped(t time.Time, anchorDay int) time.Time {
	year, month := t.Year(), t.Month()+1
	if month > time.December {
		month = time.January
		year++
	}

	day := anchorDay
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
