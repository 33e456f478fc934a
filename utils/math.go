package utils

import (
	"math"

	"github.com/golang/geo/r3"
)

// Float64AlmostEqual compares two float64s and returns whether the difference between them is
// within the given tolerance.
func Float64AlmostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// VectorIsFinite reports whether every coordinate of v is finite.
func VectorIsFinite(v r3.Vector) bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// AllFinite reports whether every value in data is finite.
func AllFinite(data []float64) bool {
	for _, v := range data {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if all elements are within
// the given tolerance.
func R3VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	return Float64AlmostEqual(a.X, b.X, tol) && Float64AlmostEqual(a.Y, b.Y, tol) && Float64AlmostEqual(a.Z, b.Z, tol)
}
