package types

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"aud": "$",
	"nzd": "NZ$",
	"usd": "US$",
	"gbp": "£",
	"eur": "€",
	"sgd": "S$",
	"hkd": "HK$",
	"jpy": "¥",
	"inr": "₹",
}

// currency precision in decimal places; anything not listed uses 2
var currencyPrecision = map[string]int32{
	"jpy": 0,
	"krw": 0,
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToLower(code)]; ok {
		return symbol
	}
	return code
}

// GetCurrencyPrecision returns the number of decimal places amounts in
// the given currency are rounded to
func GetCurrencyPrecision(code string) int32 {
	if precision, ok := currencyPrecision[strings.ToLower(code)]; ok {
		return precision
	}
	return 2
}

// FormatAmount renders a monetary amount with locale-aware grouping and
// the currency symbol, e.g. FormatAmount(d, "AUD", "en-AU", false) ->
// "$1,234.50". Whole-dollar display drops the cents for summary cards.
func FormatAmount(amount decimal.Decimal, currency string, locale string, wholeDollar bool) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)

	scale := GetCurrencyPrecision(currency)
	if wholeDollar {
		scale = 0
	}
	rounded := amount.Round(scale)

	formatted := p.Sprint(number.Decimal(
		rounded.InexactFloat64(),
		number.Scale(int(scale)),
	))
	return GetCurrencySymbol(currency) + formatted
}
