package types

import (
	"fmt"
	"regexp"
	"strings"

	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/shopspring/decimal"
)

// Billing time is measured in 6-minute units: 10 units make an hour.
// Rates are quoted hourly, so amounts are computed from hours.
var (
	UnitsPerHour   = decimal.NewFromInt(10)
	MinutesPerUnit = decimal.NewFromInt(6)
	minutesPerHour = decimal.NewFromInt(60)
)

// UnitsToHours converts 6-minute billing units to hours
func UnitsToHours(units decimal.Decimal) decimal.Decimal {
	return units.Div(UnitsPerHour)
}

// HoursToUnits converts hours to 6-minute billing units
func HoursToUnits(hours decimal.Decimal) decimal.Decimal {
	return hours.Mul(UnitsPerHour)
}

// UnitsToMinutes converts 6-minute billing units to minutes
func UnitsToMinutes(units decimal.Decimal) decimal.Decimal {
	return units.Mul(MinutesPerUnit)
}

// MinutesToUnits converts minutes to 6-minute billing units
func MinutesToUnits(minutes decimal.Decimal) decimal.Decimal {
	return minutes.Div(MinutesPerUnit)
}

var (
	clockRegex     = regexp.MustCompile(`^(\d+):([0-5]\d)$`)
	minutesRegex   = regexp.MustCompile(`^(\d+)\s*min(s|utes)?$`)
	compositeRegex = regexp.MustCompile(`^(\d+)\s*h(?:ours?)?(?:\s+(\d+)\s*m(?:ins?|inutes)?)?$`)
)

// ParseTimeUnits parses a flexible time string into billing units.
// Accepted formats: decimal hours ("1.5"), clock time ("1:30"),
// minutes ("90min"), and composite ("1h 30m"). Unrecognized input
// yields zero units rather than an error; interactive surfaces that
// want to reject bad input should use ParseTimeUnitsStrict.
func ParseTimeUnits(input string) decimal.Decimal {
	units, err := ParseTimeUnitsStrict(input)
	if err != nil {
		return decimal.Zero
	}
	return units
}

// ParseTimeUnitsStrict parses a flexible time string into billing units
// and returns a validation error for unrecognized input.
func ParseTimeUnitsStrict(input string) (decimal.Decimal, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return decimal.Zero, ierr.NewError("empty time string").
			WithHint("Please provide a time value").
			Mark(ierr.ErrValidation)
	}

	if m := clockRegex.FindStringSubmatch(trimmed); m != nil {
		hours, _ := decimal.NewFromString(m[1])
		mins, _ := decimal.NewFromString(m[2])
		totalMinutes := hours.Mul(minutesPerHour).Add(mins)
		return MinutesToUnits(totalMinutes), nil
	}

	if m := minutesRegex.FindStringSubmatch(trimmed); m != nil {
		mins, _ := decimal.NewFromString(m[1])
		return MinutesToUnits(mins), nil
	}

	if m := compositeRegex.FindStringSubmatch(trimmed); m != nil {
		hours, _ := decimal.NewFromString(m[1])
		units := HoursToUnits(hours)
		if m[2] != "" {
			mins, _ := decimal.NewFromString(m[2])
			units = units.Add(MinutesToUnits(mins))
		}
		return units, nil
	}

	if hours, err := decimal.NewFromString(trimmed); err == nil {
		if hours.IsNegative() {
			return decimal.Zero, ierr.NewError("negative time value").
				WithHint("Time values must be non-negative").
				WithReportableDetails(map[string]any{
					"input": input,
				}).
				Mark(ierr.ErrValidation)
		}
		return HoursToUnits(hours), nil
	}

	return decimal.Zero, ierr.NewError("unrecognized time format").
		WithHint("Use decimal hours (1.5), clock time (1:30), minutes (90min) or composite (1h 30m)").
		WithReportableDetails(map[string]any{
			"input": input,
		}).
		Mark(ierr.ErrValidation)
}

// FormatUnits renders billing units for display, e.g. "15 units (1hr 30min)"
func FormatUnits(units decimal.Decimal) string {
	if units.IsZero() {
		return "0 units"
	}

	totalMinutes := UnitsToMinutes(units)
	hours := totalMinutes.Div(minutesPerHour).Floor()
	minutes := totalMinutes.Sub(hours.Mul(minutesPerHour))

	if units.Equal(decimal.NewFromInt(1)) {
		return "1 unit (6min)"
	}

	if hours.IsZero() {
		return fmt.Sprintf("%s units (%smin)", units.String(), minutes.String())
	}
	if minutes.IsZero() {
		return fmt.Sprintf("%s units (%shr)", units.String(), hours.String())
	}
	return fmt.Sprintf("%s units (%shr %smin)", units.String(), hours.String(), minutes.String())
}
