package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetCurrencySymbol(t *testing.T) {
	assert.Equal(t, "$", GetCurrencySymbol("AUD"))
	assert.Equal(t, "$", GetCurrencySymbol("aud"))
	assert.Equal(t, "NZ$", GetCurrencySymbol("NZD"))
	// unknown codes fall back to the code itself
	assert.Equal(t, "XYZ", GetCurrencySymbol("XYZ"))
}

func TestGetCurrencyPrecision(t *testing.T) {
	assert.Equal(t, int32(2), GetCurrencyPrecision("AUD"))
	assert.Equal(t, int32(0), GetCurrencyPrecision("JPY"))
	assert.Equal(t, int32(2), GetCurrencyPrecision("unknown"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		currency    string
		locale      string
		wholeDollar bool
		want        string
	}{
		{
			name:     "grouped australian dollars",
			amount:   decimal.NewFromFloat(1234.5),
			currency: "AUD",
			locale:   "en-AU",
			want:     "$1,234.50",
		},
		{
			name:     "small amount",
			amount:   decimal.NewFromFloat(42.4),
			currency: "AUD",
			locale:   "en-AU",
			want:     "$42.40",
		},
		{
			name:        "whole dollar display drops cents",
			amount:      decimal.NewFromFloat(1234.56),
			currency:    "AUD",
			locale:      "en-AU",
			wholeDollar: true,
			want:        "$1,235",
		},
		{
			name:     "invalid locale falls back to english",
			amount:   decimal.NewFromInt(1000),
			currency: "AUD",
			locale:   "not-a-locale",
			want:     "$1,000.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.currency, tt.locale, tt.wholeDollar))
		})
	}
}
