// Package spatialmath defines rotations of rigid camera frames in 3D Euclidean space.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// rotationTolerance is the default orthonormality tolerance used by CheckValid.
const rotationTolerance = 1e-6

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 row major values. It does not
// check that the result is a proper rotation; use CheckValid for that.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	data := [9]float64{}
	copy(data[:], m)
	return &RotationMatrix{data}, nil
}

// NewRotationMatrixFromDense copies a 3x3 gonum matrix into a RotationMatrix.
func NewRotationMatrixFromDense(m mat.Matrix) (*RotationMatrix, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return nil, errors.Errorf("rotation matrix must be 3x3, got %dx%d", r, c)
	}
	var rm RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rm.mat[3*i+j] = m.At(i, j)
		}
	}
	return &rm, nil
}

// NewIdentityRotationMatrix returns the rotation that does nothing.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// NewRotationMatrixFromAxisAngle returns the rotation of theta radians about axis. The axis is
// normalized; a zero axis yields the identity.
func NewRotationMatrixFromAxisAngle(axis r3.Vector, theta float64) *RotationMatrix {
	if axis.Norm() == 0 {
		return NewIdentityRotationMatrix()
	}
	axis = axis.Normalize()
	s := math.Sin(theta / 2)
	return QuaternionToRotationMatrix(quat.Number{Real: math.Cos(theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s})
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the a 3 element vector corresponding to the specified row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the a 3 element vector corresponding to the specified column.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// RowMajor returns a copy of the 9 values in row major order.
func (rm *RotationMatrix) RowMajor() []float64 {
	out := make([]float64, 9)
	copy(out, rm.mat[:])
	return out
}

// Dense returns the matrix as a gonum 3x3 matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	return mat.NewDense(3, 3, rm.RowMajor())
}

// Mul returns the product of the rotation matrix and the column vector v.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{X: rm.Row(0).Dot(v), Y: rm.Row(1).Dot(v), Z: rm.Row(2).Dot(v)}
}

// MulMatrix returns rm * other.
func (rm *RotationMatrix) MulMatrix(other *RotationMatrix) *RotationMatrix {
	var out RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.mat[3*i+j] = rm.Row(i).Dot(other.Col(j))
		}
	}
	return &out
}

// Transpose returns the transpose, which is also the inverse of a proper rotation.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	var out RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.mat[3*j+i] = rm.mat[3*i+j]
		}
	}
	return &out
}

// Negate returns -rm.
func (rm *RotationMatrix) Negate() *RotationMatrix {
	var out RotationMatrix
	for i, v := range rm.mat {
		out.mat[i] = -v
	}
	return &out
}

// Det returns the determinant.
func (rm *RotationMatrix) Det() float64 {
	return rm.Row(0).Dot(rm.Row(1).Cross(rm.Row(2)))
}

// CheckValid returns an error unless rm is orthonormal with determinant +1 within tol. A tol of
// zero uses the package default.
func (rm *RotationMatrix) CheckValid(tol float64) error {
	if tol <= 0 {
		tol = rotationTolerance
	}
	for _, v := range rm.mat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("rotation matrix has non-finite elements")
		}
	}
	if det := rm.Det(); math.Abs(det-1) > tol {
		return errors.Errorf("rotation matrix determinant is %v, not 1", det)
	}
	prod := rm.Transpose().MulMatrix(rm)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			expected := 0.
			if i == j {
				expected = 1
			}
			if math.Abs(prod.At(i, j)-expected) > tol {
				return errors.Errorf("rotation matrix is not orthonormal: (RᵗR)[%d][%d] = %v", i, j, prod.At(i, j))
			}
		}
	}
	return nil
}

// Quaternion converts the rotation matrix to a unit quaternion with non-negative real part.
func (rm *RotationMatrix) Quaternion() quat.Number {
	m := rm.mat
	var q quat.Number
	// Pick the largest diagonal combination to keep the division well conditioned.
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		q = quat.Number{Real: 0.25 / s, Imag: (m[7] - m[5]) * s, Jmag: (m[2] - m[6]) * s, Kmag: (m[3] - m[1]) * s}
	case m[0] > m[4] && m[0] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[0]-m[4]-m[8])
		q = quat.Number{Real: (m[7] - m[5]) / s, Imag: 0.25 * s, Jmag: (m[1] + m[3]) / s, Kmag: (m[2] + m[6]) / s}
	case m[4] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[4]-m[0]-m[8])
		q = quat.Number{Real: (m[2] - m[6]) / s, Imag: (m[1] + m[3]) / s, Jmag: 0.25 * s, Kmag: (m[5] + m[7]) / s}
	default:
		s := 2.0 * math.Sqrt(1.0+m[8]-m[0]-m[4])
		q = quat.Number{Real: (m[3] - m[1]) / s, Imag: (m[2] + m[6]) / s, Jmag: (m[5] + m[7]) / s, Kmag: 0.25 * s}
	}
	q = Normalize(q)
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

// QuaternionToRotationMatrix converts a quaternion to a rotation matrix. The quaternion is
// normalized first.
func QuaternionToRotationMatrix(q quat.Number) *RotationMatrix {
	q = Normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return &RotationMatrix{[9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}}
}

// Normalize a quaternion, returning its versor (unit quaternion).
func Normalize(q quat.Number) quat.Number {
	length := quat.Abs(q)
	if length == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/length, q)
}

// AngleBetween returns the angle in radians of the rotation taking a to b.
func AngleBetween(a, b *RotationMatrix) float64 {
	q := quat.Mul(quat.Conj(a.Quaternion()), b.Quaternion())
	w := math.Min(1, math.Abs(Normalize(q).Real))
	return 2 * math.Acos(w)
}

// RotationMatrixAlmostEqual returns whether two rotation matrices are element-wise equal within tol.
func RotationMatrixAlmostEqual(a, b *RotationMatrix, tol float64) bool {
	for i := range a.mat {
		if math.Abs(a.mat[i]-b.mat[i]) > tol {
			return false
		}
	}
	return true
}
