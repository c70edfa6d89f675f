// Package money holds the cent rounding and tolerance rules for amounts.
package money

import "github.com/shopspring/decimal"

// DefaultTolerance is one cent.
var DefaultTolerance = decimal.New(1, -2)

// RoundToCents rounds half away from zero to two decimal places.
func RoundToCents(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// WithinTolerance reports whether |a - b| <= eps.
func WithinTolerance(a, b, eps decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(eps)
}

// Format renders x with exactly two decimals, e.g. "80.00".
func Format(x decimal.Decimal) string {
	return x.StringFixed(2)
}

// Sum adds amounts without rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
