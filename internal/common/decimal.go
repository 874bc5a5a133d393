// Package common holds the value objects shared by the book and engine
// packages: decimal arithmetic, orders and trades.
package common

import "github.com/shopspring/decimal"

// Decimal is the fixed-scale signed decimal used for every price and
// quantity on the matching path. It compares by numeric value and
// supports exact subtraction; no binary floats are permitted here.
type Decimal = decimal.Decimal

// Zero is the additive identity, exported so callers never need to spell
// decimal.NewFromInt(0).
var Zero = decimal.Zero

// ParseDecimal parses a decimal string on the wire boundary. Financial
// values never cross the boundary as JSON numbers.
func ParseDecimal(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// MinDecimal returns the smaller of two decimals.
func MinDecimal(a, b Decimal) Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
