package twoview

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/spatialmath"
)

// Pose is a rigid transform taking a point X in the first camera frame to R*X + t in the second.
type Pose struct {
	Rotation    *spatialmath.RotationMatrix
	Translation r3.Vector
}

// IdentityPose is the pose of the first camera.
func IdentityPose() Pose {
	return Pose{Rotation: spatialmath.NewIdentityRotationMatrix()}
}

// Transform maps pt from the first camera frame into the frame described by the pose.
func (p Pose) Transform(pt r3.Vector) r3.Vector {
	return p.Rotation.Mul(pt).Add(p.Translation)
}

// ProjectionMatrix returns the 3x4 camera matrix K * [R | t].
func ProjectionMatrix(k mat.Matrix, pose Pose) *mat.Dense {
	rt := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		row := pose.Rotation.Row(i)
		rt.SetRow(i, []float64{row.X, row.Y, row.Z, 0})
	}
	rt.Set(0, 3, pose.Translation.X)
	rt.Set(1, 3, pose.Translation.Y)
	rt.Set(2, 3, pose.Translation.Z)

	var m mat.Dense
	m.Mul(k, rt)
	return &m
}

// countPositiveDepth triangulates the probe correspondences with the candidate pose and counts
// the points that lie in front of both cameras.
func countPositiveDepth(m0 mat.Matrix, k mat.Matrix, candidate Pose, pts0, pts1 []r2.Point) int {
	m1 := ProjectionMatrix(k, candidate)
	count := 0
	for i := range pts0 {
		pt, err := TriangulatePoint(m0, m1, pts0[i], pts1[i])
		if err != nil {
			continue
		}
		if pt.Z > 0 && candidate.Transform(pt).Z > 0 {
			count++
		}
	}
	return count
}

// SelectPose picks the candidate that places the most of the first probe correspondences in front
// of both cameras. A probe that is not positive or exceeds the number of correspondences uses all
// of them. The winner must have a unique best score that is a strict majority of the probe,
// otherwise ErrDegenerateGeometry is returned. The scores of every candidate are returned either way.
func SelectPose(
	candidates [4]Pose,
	k mat.Matrix,
	pts0, pts1 []r2.Point,
	probe int,
	logger logging.Logger,
) (Pose, [4]int, error) {
	logger = logging.OrGlobal(logger)
	var scores [4]int
	if err := ValidateCorrespondences(pts0, pts1); err != nil {
		return Pose{}, scores, err
	}
	if probe <= 0 || probe > len(pts0) {
		probe = len(pts0)
	}

	m0 := ProjectionMatrix(k, IdentityPose())
	for i, candidate := range candidates {
		scores[i] = countPositiveDepth(m0, k, candidate, pts0[:probe], pts1[:probe])
	}
	best, err := pickCandidate(scores, probe)
	logger.Debugw("pose candidate scores", "scores", scores, "probe", probe, "best", best)
	if err != nil {
		return Pose{}, scores, err
	}
	return candidates[best], scores, nil
}

// pickCandidate returns the index of the unique best score, which must be a strict majority of probe.
func pickCandidate(scores [4]int, probe int) (int, error) {
	best := 0
	for i, score := range scores {
		if score > scores[best] {
			best = i
		}
	}
	for i, score := range scores {
		if i != best && score == scores[best] {
			return best, errors.Wrapf(ErrDegenerateGeometry,
				"pose candidates %d and %d both have %d points in front of the cameras", best, i, score)
		}
	}
	if 2*scores[best] <= probe {
		return best, errors.Wrapf(ErrDegenerateGeometry,
			"best pose candidate only has %d of %d points in front of the cameras", scores[best], probe)
	}
	return best, nil
}
