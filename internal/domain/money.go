package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MinorUnitsExponent is the decimal exponent of one minor unit (1 penny = 10^-2).
const MinorUnitsExponent = -2

// Money is an amount of GBP expressed in minor units (pence).
type Money int64

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), MinorUnitsExponent)
}

// String formats the amount in major units with two decimal places, e.g. "50.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(-MinorUnitsExponent)
}

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// Add returns m+other, failing with ErrAmountTooLarge on overflow.
func (m Money) Add(other Money) (Money, error) {
	if other > 0 && m > math.MaxInt64-other {
		return 0, ErrAmountTooLarge
	}
	if other < 0 && m < math.MinInt64-other {
		return 0, ErrAmountTooLarge
	}
	return m + other, nil
}

// MoneyFromDecimal converts a major-unit decimal into minor units.
// Amounts with more precision than one minor unit are rejected.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Shift(-MinorUnitsExponent)
	if !scaled.IsInteger() {
		return 0, ErrInvalidAmount
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, ErrAmountTooLarge
	}
	return Money(scaled.IntPart()), nil
}
