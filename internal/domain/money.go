package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// FormatPrice renders an integer minor-unit amount for display, e.g.
// 6500/"usd" -> "$65.00". Arithmetic elsewhere stays on the integer amount;
// decimal is used here only to avoid float formatting artifacts.
func FormatPrice(amount int64, currency string) string {
	major := decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).StringFixed(2)

	code := strings.ToLower(currency)
	if sym, ok := currencySymbols[code]; ok {
		return sym + major
	}
	return major + " " + strings.ToUpper(currency)
}
