package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateGST(t *testing.T) {
	tenPercent := decimal.NewFromFloat(0.10)

	tests := []struct {
		name     string
		subtotal decimal.Decimal
		rate     decimal.Decimal
		wantGST  decimal.Decimal
		wantTot  decimal.Decimal
	}{
		{
			name:     "ten percent of one hundred",
			subtotal: decimal.NewFromInt(100),
			rate:     tenPercent,
			wantGST:  decimal.NewFromInt(10),
			wantTot:  decimal.NewFromInt(110),
		},
		{
			name:     "fractional subtotal",
			subtotal: decimal.NewFromFloat(123.45),
			rate:     tenPercent,
			wantGST:  decimal.NewFromFloat(12.345),
			wantTot:  decimal.NewFromFloat(135.795),
		},
		{
			name:     "zero subtotal",
			subtotal: decimal.Zero,
			rate:     tenPercent,
			wantGST:  decimal.Zero,
			wantTot:  decimal.Zero,
		},
		{
			name:     "zero rate",
			subtotal: decimal.NewFromInt(50),
			rate:     decimal.Zero,
			wantGST:  decimal.Zero,
			wantTot:  decimal.NewFromInt(50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGST(tt.subtotal, tt.rate)
			assert.True(t, got.Subtotal.Equal(tt.subtotal))
			assert.True(t, got.GST.Equal(tt.wantGST), "GST = %s, want %s", got.GST, tt.wantGST)
			assert.True(t, got.Total.Equal(tt.wantTot), "Total = %s, want %s", got.Total, tt.wantTot)
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.GST)))
		})
	}
}

func TestUnitTypeValidate(t *testing.T) {
	valid := []UnitType{UnitTypeTime, UnitTypeFixed, UnitTypePerEmployee, UnitTypePerPayslip, UnitTypeCustom}
	for _, ut := range valid {
		assert.NoError(t, ut.Validate(), "unit type %s should be valid", ut)
	}

	assert.Error(t, UnitType("hourly").Validate())
	assert.Error(t, UnitType("").Validate())
}
