package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// homogeneousEpsilon is the smallest last coordinate accepted when projecting back to cartesian.
const homogeneousEpsilon = 1e-12

// ErrPointAtInfinity is returned when a homogeneous point has a zero last coordinate.
var ErrPointAtInfinity = errors.New("homogeneous point is at infinity")

// Homogeneous converts float64 image coordinates to homogeneous coordinates by appending a 1.
func Homogeneous(pt r2.Point) r3.Vector {
	return r3.Vector{X: pt.X, Y: pt.Y, Z: 1}
}

// Convert2DPointsToHomogeneousPoints converts float64 image coordinates to homogeneous float64 coordinates.
func Convert2DPointsToHomogeneousPoints(pts []r2.Point) []r3.Vector {
	ptsHomogeneous := make([]r3.Vector, len(pts))
	for i, pt := range pts {
		ptsHomogeneous[i] = Homogeneous(pt)
	}
	return ptsHomogeneous
}

// Cartesian divides a homogeneous 2D point by its last coordinate.
func Cartesian(pt r3.Vector) (r2.Point, error) {
	if math.Abs(pt.Z) < homogeneousEpsilon {
		return r2.Point{}, ErrPointAtInfinity
	}
	return r2.Point{X: pt.X / pt.Z, Y: pt.Y / pt.Z}, nil
}

// Homogeneous3 lifts a 3D point to a homogeneous 4-vector.
func Homogeneous3(pt r3.Vector) *mat.VecDense {
	return mat.NewVecDense(4, []float64{pt.X, pt.Y, pt.Z, 1})
}

// Cartesian4 divides a homogeneous 3D point (a 4-vector) by its last coordinate.
func Cartesian4(v mat.Vector) (r3.Vector, error) {
	if v.Len() != 4 {
		return r3.Vector{}, errors.Errorf("homogeneous 3D point must have 4 elements, got %d", v.Len())
	}
	w := v.AtVec(3)
	if math.Abs(w) < homogeneousEpsilon {
		return r3.Vector{}, ErrPointAtInfinity
	}
	return r3.Vector{X: v.AtVec(0) / w, Y: v.AtVec(1) / w, Z: v.AtVec(2) / w}, nil
}

// MulVec multiplies a 3x3 matrix by a 3-vector.
func MulVec(m mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}
