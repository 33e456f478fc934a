package twoview

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"go.viam.com/twoview/transform"
)

const (
	refineMaxEvaluations = 400
	refineTolerance      = 1e-12
)

// projectionDepth returns the third homogeneous coordinate of m * [pt; 1], which is the depth of
// pt in the camera when the last row of its intrinsics is [0 0 1].
func projectionDepth(m mat.Matrix, pt r3.Vector) float64 {
	return m.At(2, 0)*pt.X + m.At(2, 1)*pt.Y + m.At(2, 2)*pt.Z + m.At(2, 3)
}

// Project projects pt with the 3x4 camera matrix m.
func Project(m mat.Matrix, pt r3.Vector) (r2.Point, error) {
	var proj mat.VecDense
	proj.MulVec(m, transform.Homogeneous3(pt))
	return transform.Cartesian(r3.Vector{X: proj.AtVec(0), Y: proj.AtVec(1), Z: proj.AtVec(2)})
}

// ReprojectionError is the distance in pixels between px and the projection of pt by m. It is
// +Inf when pt projects to infinity.
func ReprojectionError(m mat.Matrix, pt r3.Vector, px r2.Point) float64 {
	proj, err := Project(m, pt)
	if err != nil {
		return math.Inf(1)
	}
	return proj.Sub(px).Norm()
}

func squaredReprojectionError(m0, m1 mat.Matrix, p0, p1 r2.Point, pt r3.Vector) float64 {
	e0 := ReprojectionError(m0, pt, p0)
	e1 := ReprojectionError(m1, pt, p1)
	return e0*e0 + e1*e1
}

// RefinePoint minimizes the summed squared reprojection error of pt in both cameras with
// Nelder-Mead, starting from the linear solution. The refined point is only returned when it lowers
// the error and stays in front of both cameras; otherwise pt is returned unchanged. The second
// return value is the summed squared error of the returned point.
func RefinePoint(m0, m1 mat.Matrix, p0, p1 r2.Point, pt r3.Vector) (r3.Vector, float64, error) {
	initial := squaredReprojectionError(m0, m1, p0, p1, pt)
	if math.IsInf(initial, 0) || math.IsNaN(initial) {
		return pt, initial, errors.Wrap(ErrDegenerateTriangulation, "cannot refine a point at infinity")
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return squaredReprojectionError(m0, m1, p0, p1, r3.Vector{X: x[0], Y: x[1], Z: x[2]})
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: refineMaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   refineTolerance,
			Iterations: 50,
		},
	}
	result, err := optimize.Minimize(problem, []float64{pt.X, pt.Y, pt.Z}, settings, &optimize.NelderMead{})
	if err != nil || result == nil {
		if err == nil {
			err = errors.New("no result")
		}
		return pt, initial, errors.Wrap(err, "refinement failed")
	}

	refined := r3.Vector{X: result.X[0], Y: result.X[1], Z: result.X[2]}
	if !(result.F < initial) || projectionDepth(m0, refined) <= 0 || projectionDepth(m1, refined) <= 0 {
		return pt, initial, nil
	}
	return refined, result.F, nil
}
