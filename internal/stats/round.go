package stats

import "github.com/shopspring/decimal"

const (
	// QuantityPlaces applies to money and stock quantities.
	QuantityPlaces = 2
	// RatePlaces applies to demand rates, risks and other ratios.
	RatePlaces = 4

	MinProbability = 0.0001
	MaxProbability = 0.9999
)

// Round rounds half away from zero to the given number of decimal places.
// Non-finite input rounds to 0.
func Round(v float64, places int32) float64 {
	v = Finite(v)
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// RoundQuantity rounds a quantity or monetary figure to 2 decimals.
func RoundQuantity(v float64) float64 {
	return Round(v, QuantityPlaces)
}

// RoundRate rounds a demand rate or ratio to 4 decimals.
func RoundRate(v float64) float64 {
	return Round(v, RatePlaces)
}
