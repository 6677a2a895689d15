package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo[T constraints.Float](v T, decimals int) T {
	p := math.Pow(10, float64(decimals))
	return T(math.Round(float64(v)*p) / p)
}

// Round rounds v half away from zero to the nearest integer.
func Round[T constraints.Float](v T) T {
	return T(math.Round(float64(v)))
}

// IsNaN reports whether v is a NaN of any float width.
func IsNaN[T constraints.Float](v T) bool {
	return v != v
}
