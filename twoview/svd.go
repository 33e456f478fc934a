package twoview

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/utils"
)

// matsSVD stores the matrices from SVD decomposition.
type matsSVD struct {
	U      *mat.Dense
	V      *mat.Dense
	VT     *mat.Dense
	Values []float64
}

// performSVD performs a full SVD on inputMatrix. Singular values are sorted in decreasing order.
func performSVD(inputMatrix mat.Matrix) (*matsSVD, error) {
	var svd mat.SVD
	if ok := svd.Factorize(inputMatrix, mat.SVDFull); !ok {
		return nil, errors.New("failed to factorize matrix")
	}

	u, v, vt := &mat.Dense{}, &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	vt.CloneFrom(v.T())

	return &matsSVD{U: u, V: v, VT: vt, Values: svd.Values(nil)}, nil
}

// compose returns U * diag(values) * V^T for a square decomposition.
func (m *matsSVD) compose(values []float64) *mat.Dense {
	var out mat.Dense
	out.Mul(m.U, mat.NewDiagDense(len(values), values))
	out.Mul(&out, m.VT)
	return &out
}

// SingularValues returns the singular values of m in decreasing order.
func SingularValues(m mat.Matrix) []float64 {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return nil
	}
	return svd.Values(nil)
}

// mat.Dense utils.
func transposeDense(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m.T())
}

// isFiniteDense reports whether every element of m is finite.
func isFiniteDense(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !utils.IsFinite(m.At(i, j)) {
				return false
			}
		}
	}
	return true
}
