package utils

import (
	"math"
	"strconv"
)

// NormalizeL2 returns a copy of x scaled to unit L2 norm. A zero vector is returned as a
// zero copy.
func NormalizeL2(x []float32) []float32 {
	out := make([]float32, len(x))
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range x {
		out[i] = float32(float64(v) * inv)
	}
	return out
}

// Round rounds x to the given number of decimal places using the exact binary value of x,
// so exact halves round to even.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
