package domain

import "math"

// TotalTolerance is the maximum allowed gap between a client-claimed order
// total and the server-computed one, in currency units.
const TotalTolerance = 0.01

// Cents converts a currency amount to integer cents. Totals are accumulated
// in cents so that repeated float addition cannot drift below the minor unit.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to a currency amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
