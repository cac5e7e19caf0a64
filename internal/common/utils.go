package common

import (
	"fmt"
	"math"
)

// HourLabel returns the zero-padded two digit label used by the upstream feed ("00".."23").
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d", hour)
}

// RoundTo rounds v to the given number of decimal places, halves away from zero.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
