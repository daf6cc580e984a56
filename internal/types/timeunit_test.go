package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUnitsHoursConversion(t *testing.T) {
	tests := []struct {
		name  string
		units decimal.Decimal
		hours decimal.Decimal
	}{
		{
			name:  "one unit is six minutes",
			units: decimal.NewFromInt(1),
			hours: decimal.NewFromFloat(0.1),
		},
		{
			name:  "ten units make an hour",
			units: decimal.NewFromInt(10),
			hours: decimal.NewFromInt(1),
		},
		{
			name:  "fifteen units is an hour and a half",
			units: decimal.NewFromInt(15),
			hours: decimal.NewFromFloat(1.5),
		},
		{
			name:  "zero",
			units: decimal.Zero,
			hours: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, UnitsToHours(tt.units).Equal(tt.hours),
				"UnitsToHours(%s) = %s, want %s", tt.units, UnitsToHours(tt.units), tt.hours)
			assert.True(t, HoursToUnits(tt.hours).Equal(tt.units),
				"HoursToUnits(%s) = %s, want %s", tt.hours, HoursToUnits(tt.hours), tt.units)
		})
	}
}

func TestUnitsMinutesRoundTrip(t *testing.T) {
	for _, units := range []int64{0, 1, 7, 10, 15, 123} {
		d := decimal.NewFromInt(units)
		back := MinutesToUnits(UnitsToMinutes(d))
		assert.True(t, back.Equal(d), "round trip of %d units gave %s", units, back)
	}
}

func TestParseTimeUnitsStrict(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    decimal.Decimal
		wantErr bool
	}{
		{
			name:  "decimal hours",
			input: "1.5",
			want:  decimal.NewFromInt(15),
		},
		{
			name:  "whole hours",
			input: "2",
			want:  decimal.NewFromInt(20),
		},
		{
			name:  "clock time",
			input: "1:30",
			want:  decimal.NewFromInt(15),
		},
		{
			name:  "clock time with zero minutes",
			input: "2:00",
			want:  decimal.NewFromInt(20),
		},
		{
			name:  "minutes suffix",
			input: "90min",
			want:  decimal.NewFromInt(15),
		},
		{
			name:  "minutes suffix with space",
			input: "30 mins",
			want:  decimal.NewFromInt(5),
		},
		{
			name:  "composite hours and minutes",
			input: "1h 30m",
			want:  decimal.NewFromInt(15),
		},
		{
			name:  "composite hours only",
			input: "3h",
			want:  decimal.NewFromInt(30),
		},
		{
			name:  "uppercase and padding",
			input: "  1H 30M  ",
			want:  decimal.NewFromInt(15),
		},
		{
			name:    "garbage",
			input:   "garbage",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "negative hours",
			input:   "-1.5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeUnitsStrict(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(tt.want),
				"ParseTimeUnitsStrict(%q) = %s, want %s", tt.input, got, tt.want)
		})
	}
}

func TestParseTimeUnitsLenient(t *testing.T) {
	// the lenient variant maps unparseable input to zero units
	assert.True(t, ParseTimeUnits("garbage").IsZero())
	assert.True(t, ParseTimeUnits("").IsZero())
	assert.True(t, ParseTimeUnits("-2").IsZero())
	assert.True(t, ParseTimeUnits("1:30").Equal(decimal.NewFromInt(15)))
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		units decimal.Decimal
		want  string
	}{
		{decimal.Zero, "0 units"},
		{decimal.NewFromInt(1), "1 unit (6min)"},
		{decimal.NewFromInt(5), "5 units (30min)"},
		{decimal.NewFromInt(10), "10 units (1hr)"},
		{decimal.NewFromInt(15), "15 units (1hr 30min)"},
		{decimal.NewFromInt(25), "25 units (2hr 30min)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUnits(tt.units))
	}
}
