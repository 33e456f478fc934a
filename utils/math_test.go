package utils

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestFinite(t *testing.T) {
	test.That(t, IsFinite(1.5), test.ShouldBeTrue)
	test.That(t, IsFinite(math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
	test.That(t, VectorIsFinite(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldBeTrue)
	test.That(t, VectorIsFinite(r3.Vector{X: 1, Y: math.NaN(), Z: 3}), test.ShouldBeFalse)
	test.That(t, AllFinite([]float64{0, 1, -2}), test.ShouldBeTrue)
	test.That(t, AllFinite([]float64{0, math.Inf(1)}), test.ShouldBeFalse)
}

func TestAlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1, 1.0000001, 1e-6), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.1, 1e-6), test.ShouldBeFalse)
	a := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, R3VectorAlmostEqual(a, a.Add(r3.Vector{X: 1e-9}), 1e-6), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(a, a.Add(r3.Vector{Z: 1e-3}), 1e-6), test.ShouldBeFalse)
}
