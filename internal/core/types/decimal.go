// Package types provides common type aliases and utilities.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits stored for amounts (NUMERIC(18,2)).
const MoneyScale int32 = 2

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Sum adds amounts; an empty call returns zero.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// HasValidScale reports whether m fits the stored precision.
func HasValidScale(m Money) bool {
	return m.Equal(m.Round(MoneyScale))
}
