package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// normalizationEpsilon bounds the coordinate sums and mean spread below which a point set is
// considered degenerate.
const normalizationEpsilon = 1e-8

// ErrDegenerateNormalization is returned when a point set cannot be conditioned, which happens
// when every point coincides or the points sit on an image axis through the origin.
var ErrDegenerateNormalization = errors.New("point set is degenerate and cannot be normalized")

// Similarity is a translation followed by an isotropic scale. In homogeneous coordinates it is
//
//	[[s 0 -s*tx],
//	 [0 s -s*ty],
//	 [0 0   1  ]]
type Similarity struct {
	Scale float64
	Tx    float64
	Ty    float64
}

// NewNormalizingTransform computes the similarity that moves the centroid of pts to the origin and
// scales them so that their mean distance to it is sqrt(2), as described in Multiple View
// Geometry, Alg 11.1.
func NewNormalizingTransform(pts []r2.Point) (*Similarity, error) {
	nPoints := len(pts)
	if nPoints == 0 {
		return nil, errors.Wrap(ErrDegenerateNormalization, "no points")
	}
	// compute centroid of points
	sum := r2.Point{}
	for _, pt := range pts {
		sum = sum.Add(pt)
	}
	if math.Abs(sum.X) < normalizationEpsilon || math.Abs(sum.Y) < normalizationEpsilon {
		return nil, errors.Wrapf(ErrDegenerateNormalization, "coordinate sums (%v, %v) are zero", sum.X, sum.Y)
	}
	mu := sum.Mul(1. / float64(nPoints))

	// compute scale factor
	d := 0.0
	for _, pt := range pts {
		d += pt.Sub(mu).Norm() / float64(nPoints)
	}
	if d < normalizationEpsilon || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, errors.Wrapf(ErrDegenerateNormalization, "mean distance to centroid is %v", d)
	}
	return &Similarity{Scale: math.Sqrt2 / d, Tx: mu.X, Ty: mu.Y}, nil
}

// Matrix returns the 3x3 homogeneous matrix of the similarity.
func (s *Similarity) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		s.Scale, 0, -s.Scale * s.Tx,
		0, s.Scale, -s.Scale * s.Ty,
		0, 0, 1,
	})
}

// Apply maps one point: it is lifted to homogeneous coordinates, multiplied by Matrix and
// projected back.
func (s *Similarity) Apply(pt r2.Point) r2.Point {
	q := MulVec(s.Matrix(), Homogeneous(pt))
	// The last row of a similarity is [0 0 1], so q.Z is exactly 1.
	return r2.Point{X: q.X / q.Z, Y: q.Y / q.Z}
}

// ApplyAll maps every point of pts and returns the new slice.
func (s *Similarity) ApplyAll(pts []r2.Point) []r2.Point {
	m := s.Matrix()
	out := make([]r2.Point, len(pts))
	for i, pt := range pts {
		q := MulVec(m, Homogeneous(pt))
		out[i] = r2.Point{X: q.X / q.Z, Y: q.Y / q.Z}
	}
	return out
}

// Invert returns the inverse transform as a matrix. The inverse of a normalizing similarity is
// x = p/s + t, which is not itself of the Similarity form, so it is returned as a matrix.
func (s *Similarity) Invert() *mat.Dense {
	inv := 1 / s.Scale
	return mat.NewDense(3, 3, []float64{
		inv, 0, s.Tx,
		0, inv, s.Ty,
		0, 0, 1,
	})
}

// Unapply maps a normalized point back to original coordinates.
func (s *Similarity) Unapply(pt r2.Point) r2.Point {
	q := MulVec(s.Invert(), Homogeneous(pt))
	return r2.Point{X: q.X / q.Z, Y: q.Y / q.Z}
}
