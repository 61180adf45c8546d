package utils

import "math"

// Round rounds to the given number of decimals, sending ties to the even
// digit (12.5 -> 12, 0.125 -> 0.12).
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
