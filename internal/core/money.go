// Package core provides money parsing and handling utilities.
//
// Amounts are stored as signed cents to keep arithmetic exact; decimal
// strings coming off the wire are parsed with shopspring/decimal and
// rounded half-up on the third decimal place.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in cents. Negative cents are charges,
// positive cents are credits or refunds.
type Money struct {
	Cents int64
}

var centsFactor = decimal.NewFromInt(100)

// ParseAmount converts a decimal string such as "-4.50" or "12,34"
// to Money. Both dot and comma decimal separators are accepted.
// Returns an error for unparseable input; zero is a valid amount here,
// LineItem.Validate rejects it at the domain boundary instead.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeSeparator(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal converts a decimal amount to cents with half-up
// rounding on the third decimal place.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(centsFactor).Round(0).IntPart()}
}

// Decimal returns the amount as a decimal value in whole currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(centsFactor)
}

// Dollars returns the amount as a float64 for display purposes.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// IsZero reports whether the amount is exactly zero cents.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String formats the amount as a plain decimal string, e.g. "-4.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func normalizeSeparator(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ',' {
			r = '.'
		}
		if r == ' ' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
