// Package maths provides small numeric helpers.
package maths

import (
	"math"
	"time"
)

// RoundFloat64ToInt rounds v to the nearest integer. NaN and Inf map to 0.
func RoundFloat64ToInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return int(math.Round(v))
}

// RoundSeconds converts d to seconds rounded to 3 decimal places.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
