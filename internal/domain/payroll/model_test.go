package payroll

import (
	"testing"
	"time"

	"github.com/paybill/paybill/internal/types"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextPayDatesWeekly(t *testing.T) {
	got := NextPayDates(date(2026, 8, 7), types.PayFrequencyWeekly, 3)
	want := []time.Time{
		date(2026, 8, 14),
		date(2026, 8, 21),
		date(2026, 8, 28),
	}
	assert.Equal(t, want, got)
}

func TestNextPayDatesFortnightly(t *testing.T) {
	got := NextPayDates(date(2026, 8, 7), types.PayFrequencyFortnightly, 2)
	want := []time.Time{
		date(2026, 8, 21),
		date(2026, 9, 4),
	}
	assert.Equal(t, want, got)
}

func TestNextPayDatesMonthlyClampsShortMonths(t *testing.T) {
	// a month-end anchor clamps to February and recovers in March
	got := NextPayDates(date(2026, 1, 31), types.PayFrequencyMonthly, 3)
	want := []time.Time{
		date(2026, 2, 28),
		date(2026, 3, 31),
		date(2026, 4, 30),
	}
	assert.Equal(t, want, got)
}

func TestNextPayDatesMonthlyLeapYear(t *testing.T) {
	got := NextPayDates(date(2028, 1, 31), types.PayFrequencyMonthly, 1)
	assert.Equal(t, []time.Time{date(2028, 2, 29)}, got)
}

func TestNextPayDatesMonthlyCrossesYear(t *testing.T) {
	got := NextPayDates(date(2026, 11, 15), types.PayFrequencyMonthly, 3)
	want := []time.Time{
		date(2026, 12, 15),
		date(2027, 1, 15),
		date(2027, 2, 15),
	}
	assert.Equal(t, want, got)
}

func TestNextPayDatesZeroCount(t *testing.T) {
	assert.Nil(t, NextPayDates(date(2026, 8, 7), types.PayFrequencyWeekly, 0))
}

func TestPayrollRunValidate(t *testing.T) {
	run := &PayrollRun{
		ClientID:      "client-1",
		PayDate:       date(2026, 8, 7),
		EmployeeCount: 10,
		PayslipCount:  10,
		RunStatus:     types.PayrollRunStatusCompleted,
	}
	assert.NoError(t, run.Validate())

	run.EmployeeCount = -1
	assert.Error(t, run.Validate())

	run.EmployeeCount = 10
	run.ClientID = ""
	assert.Error(t, run.Validate())
}
