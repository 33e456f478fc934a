package twoview

import (
	"context"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/transform"
	"go.viam.com/twoview/utils"
)

// rankTolerance is the relative singular value threshold under which the DLT system is rank deficient.
const rankTolerance = 1e-12

// setDLTRows fills rows row and row+1 of a with x*m[2] - m[0] and y*m[2] - m[1].
func setDLTRows(a *mat.Dense, row int, m mat.Matrix, px r2.Point) {
	for j := 0; j < 4; j++ {
		a.Set(row, j, px.X*m.At(2, j)-m.At(0, j))
		a.Set(row+1, j, px.Y*m.At(2, j)-m.At(1, j))
	}
}

// TriangulatePoint solves for the 3D point seen at p0 by the camera m0 and at p1 by the camera m1
// with the linear DLT method: the homogeneous point is the right singular vector of the smallest
// singular value of the stacked 4x4 system. The point is in the frame the cameras are expressed in.
func TriangulatePoint(m0, m1 mat.Matrix, p0, p1 r2.Point) (r3.Vector, error) {
	a := mat.NewDense(4, 4, nil)
	setDLTRows(a, 0, m0, p0)
	setDLTRows(a, 2, m1, p1)
	if !isFiniteDense(a) {
		return r3.Vector{}, errors.Wrap(ErrDegenerateTriangulation, "non-finite linear system")
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return r3.Vector{}, errors.Wrap(ErrDegenerateTriangulation, "failed to factorize linear system")
	}
	if rank := svd.Rank(rankTolerance); rank < 3 {
		return r3.Vector{}, errors.Wrapf(ErrDegenerateTriangulation, "linear system has rank %d", rank)
	}
	var v mat.Dense
	svd.VTo(&v)

	pt, err := transform.Cartesian4(v.ColView(3))
	if err != nil {
		return r3.Vector{}, errors.Wrap(ErrDegenerateTriangulation, err.Error())
	}
	if !utils.VectorIsFinite(pt) {
		return r3.Vector{}, errors.Wrap(ErrDegenerateTriangulation, "non-finite point")
	}
	return pt, nil
}

// errNotSolved marks a slot whose solve never completed.
var errNotSolved = errors.Wrap(ErrDegenerateTriangulation, "correspondence was not solved")

// solveAll runs solve for every index in [0, n) and stores each outcome in the slot of its index.
// A slot keeps errNotSolved until its solve returns, including when a parallel member panics.
func solveAll(
	n int,
	parallel bool,
	solve func(i int) (r3.Vector, error),
	logger logging.Logger,
) ([]r3.Vector, []error) {
	solved := make([]r3.Vector, n)
	errs := make([]error, n)
	for i := range errs {
		errs[i] = errNotSolved
	}
	run := func(i int) {
		solved[i], errs[i] = solve(i)
	}
	serial := func() {
		for i := 0; i < n; i++ {
			run(i)
		}
	}

	if !parallel {
		serial()
		return solved, errs
	}
	// every index is written by exactly one member, so the slices need no locking.
	if err := utils.GroupWorkParallel(
		context.Background(),
		n,
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) { run(workNum) }, nil
		},
	); err != nil {
		logger.Warnw("parallel triangulation failed, running serially", "error", err)
		serial()
	}
	return solved, errs
}

// Triangulate reconstructs every correspondence with the first camera at the origin and the second
// at pose. Correspondences that cannot be solved are dropped; the returned indices give, for each
// point, the position of its correspondence in pts0 and pts1. The output order follows the input
// order whether or not the work runs in parallel.
func Triangulate(
	k mat.Matrix,
	pose Pose,
	pts0, pts1 []r2.Point,
	opts Options,
	logger logging.Logger,
) ([]r3.Vector, []int) {
	logger = logging.OrGlobal(logger)
	n := len(pts0)
	if len(pts1) < n {
		n = len(pts1)
	}
	m0 := ProjectionMatrix(k, IdentityPose())
	m1 := ProjectionMatrix(k, pose)

	solved, errs := solveAll(n, opts.Parallel, func(i int) (r3.Vector, error) {
		pt, err := TriangulatePoint(m0, m1, pts0[i], pts1[i])
		if err != nil {
			return r3.Vector{}, err
		}
		if opts.Refine {
			if refined, _, err := RefinePoint(m0, m1, pts0[i], pts1[i], pt); err == nil {
				pt = refined
			}
		}
		return pt, nil
	}, logger)

	points := make([]r3.Vector, 0, n)
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			logger.Debugw("dropping correspondence", "index", i, "reason", fmt.Sprint(errs[i]))
			continue
		}
		points = append(points, solved[i])
		indices = append(indices, i)
	}
	return points, indices
}
