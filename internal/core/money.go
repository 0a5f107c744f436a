// Package core holds the dashboard payload model and its money helpers.
//
// Amounts arrive as JSON numbers and are kept as decimals until they reach a
// chart, where they become float64 values.
package core

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "₹"

// FormatAmount renders an amount with two decimals after the currency
// symbol. The sign stays with the number.
//
// Examples:
//
//	FormatAmount(decimal.RequireFromString("120"), "₹")    -> "₹120.00"
//	FormatAmount(decimal.RequireFromString("-3.456"), "₹") -> "₹-3.46"
func FormatAmount(d decimal.Decimal, symbol string) string {
	return symbol + d.StringFixed(2)
}

// Float converts an amount for chart rendering.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Floats converts a slice of amounts for chart rendering.
func Floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.InexactFloat64()
	}
	return out
}

// Sum adds up a slice of amounts.
func Sum(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
