package core

import (
	"github.com/shopspring/decimal"
)

// Decimal precision bounds for monetary rounding
const (
	MinDecimalPlaces = 0
	MaxDecimalPlaces = 7
)

// ClampDecimalPlaces constrains a precision setting to the supported range
func ClampDecimalPlaces(places int) int {
	if places < MinDecimalPlaces {
		return MinDecimalPlaces
	}
	if places > MaxDecimalPlaces {
		return MaxDecimalPlaces
	}
	return places
}

// RoundNBR5891 rounds a monetary value to the given number of decimal places
// using the half-to-even rule of NBR 5891. The computation goes through exact
// decimal arithmetic: rounding the binary float directly drifts at fractional
// currency precision and breaks the half-to-even guarantee.
func RoundNBR5891(value float64, places int) float64 {
	places = ClampDecimalPlaces(places)
	return decimal.NewFromFloat(value).RoundBank(int32(places)).InexactFloat64()
}

// Round rounds a monetary value to the given number of decimal places using
// plain half-away-from-zero rounding. Kept for installations that opt out of
// NBR 5891 rounding.
func Round(value float64, places int) float64 {
	places = ClampDecimalPlaces(places)
	return decimal.NewFromFloat(value).Round(int32(places)).InexactFloat64()
}
