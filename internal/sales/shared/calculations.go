// Package shared holds the line item and totals rules common to sales,
// quotations and purchases. Amounts are decimals rounded to cents.
package shared

import (
	"github.com/shopspring/decimal"
)

// LineTotal is quantity times unit price, rounded to cents.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// Totals are the computed amounts of a document.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Compute sums the lines and applies a flat discount. The total never goes
// below zero.
func Compute(lines []Line, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Subtotal: subtotal, Discount: discount.Round(2), Total: total.Round(2)}
}

// Balance is what remains to be paid, never negative.
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	b := total.Sub(paid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b.Round(2)
}
