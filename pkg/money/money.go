// Package money converts between display amounts and integer minor units.
//
// Amounts are held as minor units (paise, cents) everywhere inside the
// services; floats only appear at the JSON boundary. The conversion assumes
// a currency with two decimal digits.
package money

import "github.com/shopspring/decimal"

const minorDigits = 2

// ToMinor converts a display amount to minor units, truncating any digits
// beyond the second decimal place.
func ToMinor(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(minorDigits).Truncate(0).IntPart()
}

func FromMinor(minor int64) float64 {
	return decimal.New(minor, -minorDigits).InexactFloat64()
}

// Multiply returns unit * qty in minor units.
func Multiply(unit int64, qty int) int64 {
	return decimal.NewFromInt(unit).Mul(decimal.NewFromInt(int64(qty))).IntPart()
}
