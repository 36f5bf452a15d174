package utils

import "math"

// Round rounds x to the given number of decimal places
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Ratio returns n/d, or 0 when d is 0
func Ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}
