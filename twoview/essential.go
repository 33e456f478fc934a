package twoview

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/spatialmath"
)

// wMatrix is the rotation by 90 degrees about Z used to rebuild R from the SVD of the essential matrix.
var wMatrix = mat.NewDense(3, 3, []float64{
	0, -1, 0,
	1, 0, 0,
	0, 0, 1,
})

// EssentialFromFundamental computes E = K^T * F * K and projects it onto the space of essential
// matrices by replacing its singular values with (1, 1, 0).
func EssentialFromFundamental(f, k mat.Matrix) (*mat.Dense, error) {
	var e mat.Dense
	e.Mul(k.T(), f)
	e.Mul(&e, k)

	svd, err := performSVD(&e)
	if err != nil {
		return nil, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}
	return svd.compose([]float64{1, 1, 0}), nil
}

// DecomposeEssential returns the four poses of the second camera relative to the first that are
// consistent with e, in the order (R1, +t), (R1, -t), (R2, +t), (R2, -t). R1 = U*W*V^T and
// R2 = U*W^T*V^T are negated when needed so that both have determinant +1; t is the last column of
// U and has unit length.
func DecomposeEssential(e mat.Matrix) ([4]Pose, error) {
	var poses [4]Pose
	svd, err := performSVD(e)
	if err != nil {
		return poses, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}

	r1, err := rotationFromSVD(svd.U, wMatrix, svd.VT)
	if err != nil {
		return poses, err
	}
	r2, err := rotationFromSVD(svd.U, wMatrix.T(), svd.VT)
	if err != nil {
		return poses, err
	}
	t := r3.Vector{X: svd.U.At(0, 2), Y: svd.U.At(1, 2), Z: svd.U.At(2, 2)}

	poses[0] = Pose{Rotation: r1, Translation: t}
	poses[1] = Pose{Rotation: r1, Translation: t.Mul(-1)}
	poses[2] = Pose{Rotation: r2, Translation: t}
	poses[3] = Pose{Rotation: r2, Translation: t.Mul(-1)}
	return poses, nil
}

// rotationFromSVD returns u * mid * vt, negated when its determinant is negative.
func rotationFromSVD(u, mid, vt mat.Matrix) (*spatialmath.RotationMatrix, error) {
	var r mat.Dense
	r.Mul(u, mid)
	r.Mul(&r, vt)
	rot, err := spatialmath.NewRotationMatrixFromDense(&r)
	if err != nil {
		return nil, err
	}
	if rot.Det() < 0 {
		rot = rot.Negate()
	}
	if err := rot.CheckValid(0); err != nil {
		return nil, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}
	return rot, nil
}
