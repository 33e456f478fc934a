package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

var pixelPoints = []r2.Point{
	{X: 120, Y: 40}, {X: 300, Y: 75}, {X: 410, Y: 390}, {X: 55, Y: 260},
	{X: 230, Y: 210}, {X: 610, Y: 20}, {X: 480, Y: 455}, {X: 15, Y: 470},
}

func TestNewNormalizingTransform(t *testing.T) {
	sim, err := NewNormalizingTransform(pixelPoints)
	test.That(t, err, test.ShouldBeNil)

	normalized := sim.ApplyAll(pixelPoints)
	centroid := r2.Point{}
	meanDist := 0.
	for _, pt := range normalized {
		centroid = centroid.Add(pt)
		meanDist += pt.Norm()
	}
	centroid = centroid.Mul(1 / float64(len(normalized)))
	meanDist /= float64(len(normalized))
	test.That(t, centroid.X, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, centroid.Y, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, meanDist, test.ShouldAlmostEqual, math.Sqrt2, 1e-12)

	m := sim.Matrix()
	test.That(t, m.At(0, 0), test.ShouldEqual, sim.Scale)
	test.That(t, m.At(1, 1), test.ShouldEqual, sim.Scale)
	test.That(t, m.At(0, 2), test.ShouldAlmostEqual, -sim.Scale*sim.Tx)
	test.That(t, m.At(1, 2), test.ShouldAlmostEqual, -sim.Scale*sim.Ty)
	test.That(t, m.At(2, 2), test.ShouldEqual, 1.)

	for i, pt := range pixelPoints {
		single := sim.Apply(pt)
		test.That(t, single.X, test.ShouldAlmostEqual, normalized[i].X)
		test.That(t, single.Y, test.ShouldAlmostEqual, normalized[i].Y)
	}
}

func TestNormalizationRoundTrip(t *testing.T) {
	sim, err := NewNormalizingTransform(pixelPoints)
	test.That(t, err, test.ShouldBeNil)

	for _, pt := range append(pixelPoints, r2.Point{X: -3, Y: 1e4}) {
		back := sim.Unapply(sim.Apply(pt))
		test.That(t, back.X, test.ShouldAlmostEqual, pt.X, 1e-9*math.Max(1, math.Abs(pt.X)))
		test.That(t, back.Y, test.ShouldAlmostEqual, pt.Y, 1e-9*math.Max(1, math.Abs(pt.Y)))
	}

	var prod mat.Dense
	prod.Mul(sim.Invert(), sim.Matrix())
	test.That(t, mat.EqualApprox(&prod, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-12), test.ShouldBeTrue)
}

func TestDegenerateNormalization(t *testing.T) {
	_, err := NewNormalizingTransform(nil)
	test.That(t, errors.Is(err, ErrDegenerateNormalization), test.ShouldBeTrue)

	coincident := make([]r2.Point, 8)
	for i := range coincident {
		coincident[i] = r2.Point{X: 100, Y: 200}
	}
	_, err = NewNormalizingTransform(coincident)
	test.That(t, errors.Is(err, ErrDegenerateNormalization), test.ShouldBeTrue)

	// Symmetric about the origin: the coordinate sums vanish.
	symmetric := []r2.Point{{X: 1, Y: 1}, {X: -1, Y: -1}, {X: 2, Y: -2}, {X: -2, Y: 2}}
	_, err = NewNormalizingTransform(symmetric)
	test.That(t, errors.Is(err, ErrDegenerateNormalization), test.ShouldBeTrue)

	// All on the x axis.
	onAxis := []r2.Point{{X: 1}, {X: 5}, {X: 9}}
	_, err = NewNormalizingTransform(onAxis)
	test.That(t, errors.Is(err, ErrDegenerateNormalization), test.ShouldBeTrue)

	// Negative coordinates are fine.
	negative := []r2.Point{{X: -10, Y: -4}, {X: -30, Y: -8}, {X: -12, Y: -40}}
	_, err = NewNormalizingTransform(negative)
	test.That(t, err, test.ShouldBeNil)
}
