// Package rounding centralises the fixed-point rounding rules used for every
// stored score, percentage and monetary value.
package rounding

import "github.com/shopspring/decimal"

var (
	// Zero is a convenience decimal zero.
	Zero = decimal.Zero
	// Ten is the upper bound of every normalised dimension.
	Ten = decimal.NewFromInt(10)
	// Hundred is the upper bound of the final score.
	Hundred = decimal.NewFromInt(100)
)

// Round2 rounds to two fractional digits, half away from zero (0.005 -> 0.01).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round3 rounds to three fractional digits. Only penalty coefficients and
// review adjustment factors use it.
func Round3(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// Float2 converts the result of a float computation into a two digit decimal.
func Float2(f float64) decimal.Decimal {
	return Round2(decimal.NewFromFloat(f))
}

// Clamp bounds d into [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// MustParse parses a literal decimal, panicking on malformed input. Intended for
// package level constants.
func MustParse(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
