package twoview

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/transform"
)

// buildConstraintMatrix stacks one row per correspondence so that A * vec(F) = 0, with vec(F) the
// 9 entries of F in row major order and the constraint p1^T * F * p0 = 0.
func buildConstraintMatrix(pts0, pts1 []r2.Point) *mat.Dense {
	a := mat.NewDense(len(pts0), 9, nil)
	for i, p0 := range pts0 {
		p1 := pts1[i]
		a.SetRow(i, []float64{
			p1.X * p0.X, p1.X * p0.Y, p1.X,
			p1.Y * p0.X, p1.Y * p0.Y, p1.Y,
			p0.X, p0.Y, 1,
		})
	}
	return a
}

// enforceRank2 zeroes the smallest singular value of f, giving the closest rank 2 matrix in
// Frobenius norm.
func enforceRank2(f mat.Matrix) (*mat.Dense, error) {
	svd, err := performSVD(f)
	if err != nil {
		return nil, errors.Wrap(err, "cannot enforce rank 2")
	}
	return svd.compose([]float64{svd.Values[0], svd.Values[1], 0}), nil
}

// normalizeScale scales f to unit Frobenius norm with its largest magnitude entry positive, so
// that the same geometry always yields the same matrix.
func normalizeScale(f *mat.Dense) {
	norm := mat.Norm(f, 2)
	if norm == 0 {
		return
	}
	largest := 0.
	r, c := f.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := f.At(i, j); math.Abs(v) > math.Abs(largest) {
				largest = v
			}
		}
	}
	if largest < 0 {
		norm = -norm
	}
	f.Scale(1/norm, f)
}

// EstimateFundamental computes the fundamental matrix F such that pts1[i]^T * F * pts0[i] = 0
// using the normalized eight point algorithm: both point sets are normalized, the homogeneous
// system is solved by SVD, rank 2 is enforced and the result denormalized with F = T1^T * F' * T0.
func EstimateFundamental(pts0, pts1 []r2.Point) (*mat.Dense, error) {
	if err := ValidateCorrespondences(pts0, pts1); err != nil {
		return nil, err
	}
	t0, err := transform.NewNormalizingTransform(pts0)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize first image points: %w: %w", ErrDegenerateGeometry, err)
	}
	t1, err := transform.NewNormalizingTransform(pts1)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize second image points: %w: %w", ErrDegenerateGeometry, err)
	}

	a := buildConstraintMatrix(t0.ApplyAll(pts0), t1.ApplyAll(pts1))
	svd, err := performSVD(a)
	if err != nil {
		return nil, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}
	// V is 9x9 even when there are exactly 8 rows; its last column spans the null space.
	f := mat.NewDense(3, 3, mat.Col(nil, 8, svd.V))

	fRank2, err := enforceRank2(f)
	if err != nil {
		return nil, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}

	var denormalized mat.Dense
	denormalized.Mul(transposeDense(t1.Matrix()), fRank2)
	denormalized.Mul(&denormalized, t0.Matrix())
	normalizeScale(&denormalized)
	if !isFiniteDense(&denormalized) {
		return nil, errors.Wrap(ErrDegenerateGeometry, "fundamental matrix has non-finite entries")
	}
	return &denormalized, nil
}

// EpipolarResidual returns |p1^T * F * p0|, the algebraic epipolar error of one correspondence.
func EpipolarResidual(f mat.Matrix, p0, p1 r2.Point) float64 {
	l := transform.MulVec(f, transform.Homogeneous(p0))
	return math.Abs(transform.Homogeneous(p1).Dot(l))
}
