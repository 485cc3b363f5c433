package util

import "math"

// RoundUp rounds the input number up, with places representing the number of decimal places.
func RoundUp(input float64, places int) float64 {
	var round float64
	pow := math.Pow(10, float64(places))
	digit := pow * input
	round = math.Ceil(digit)
	newVal := round / pow
	return newVal
}

// Average returns the average of the vals, rounded to two decimal places.
func Average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	total := 0.0
	for _, v := range vals {
		total += v
	}
	avg := total / float64(len(vals))
	return RoundUp(avg, 2)
}

// Mean returns the unrounded average of the vals, or zero for an empty
// slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}

	return false
}
