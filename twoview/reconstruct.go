// Package twoview recovers the relative pose of two calibrated cameras and the 3D structure
// seen by both from index aligned 2D correspondences.
//
// The pipeline estimates the fundamental matrix with the normalized eight point algorithm,
// turns it into the essential matrix using the shared intrinsics, picks the one of its four
// decompositions that places the points in front of both cameras, and triangulates every
// correspondence with the linear DLT method. The translation, and so the scene, is recovered
// up to scale: |t| = 1.
package twoview

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/transform"
)

// Options configures a reconstruction.
type Options struct {
	// ProbeSize is the number of leading correspondences triangulated to choose between the four
	// pose candidates. Zero or a value larger than the number of correspondences uses all of them.
	ProbeSize int
	// Refine runs a non-linear reprojection error minimization on every triangulated point.
	Refine bool
	// Parallel triangulates the points over utils.ParallelFactor goroutines.
	Parallel bool
}

// DefaultOptions probes every correspondence and triangulates serially without refinement.
func DefaultOptions() Options {
	return Options{}
}

// Result is a two view reconstruction. Points are in the frame of the first camera, and the pose
// maps them into the frame of the second: X1 = Rotation * X0 + Translation.
type Result struct {
	Pose
	Points       []r3.Vector
	Indices      []int
	Fundamental  *mat.Dense
	Essential    *mat.Dense
	Scores       [4]int
	Reprojection ReprojectionStats
}

// Reconstruct runs the full pipeline. It fails without a partial result when the input is invalid,
// the geometry is degenerate or no correspondence could be triangulated.
func Reconstruct(
	intrinsics *transform.PinholeCameraIntrinsics,
	pts0, pts1 []r2.Point,
	opts Options,
	logger logging.Logger,
) (*Result, error) {
	logger = logging.OrGlobal(logger)
	if err := intrinsics.CheckValid(); err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "%v", err)
	}
	if err := ValidateCorrespondences(pts0, pts1); err != nil {
		return nil, err
	}
	k := intrinsics.GetCameraMatrix()

	f, err := EstimateFundamental(pts0, pts1)
	if err != nil {
		return nil, err
	}
	logger.Debugw("estimated fundamental matrix", "singular_values", SingularValues(f))

	e, err := EssentialFromFundamental(f, k)
	if err != nil {
		return nil, err
	}
	candidates, err := DecomposeEssential(e)
	if err != nil {
		return nil, err
	}
	pose, scores, err := SelectPose(candidates, k, pts0, pts1, opts.ProbeSize, logger)
	if err != nil {
		return nil, err
	}

	points, indices := Triangulate(k, pose, pts0, pts1, opts, logger)
	if len(points) == 0 {
		return nil, ErrNoPointsReconstructed
	}
	if dropped := len(pts0) - len(points); dropped > 0 {
		logger.Infof("dropped %d of %d correspondences during triangulation", dropped, len(pts0))
	}

	reprojection, err := ComputeReprojectionStats(
		ProjectionMatrix(k, IdentityPose()), ProjectionMatrix(k, pose), pts0, pts1, points, indices)
	if err != nil {
		return nil, err
	}
	logger.Debugw("reconstructed scene",
		"points", len(points),
		"mean_reprojection_error", reprojection.Mean,
		"max_reprojection_error", reprojection.Max,
	)

	return &Result{
		Pose:         pose,
		Points:       points,
		Indices:      indices,
		Fundamental:  f,
		Essential:    e,
		Scores:       scores,
		Reprojection: reprojection,
	}, nil
}

// Triangulation reconstructs the scene seen by two cameras sharing the intrinsics (fx, fy, cx, cy).
// On success it returns the points in the first camera frame, the rotation and unit translation of
// the second camera, and true. On failure the error is logged and it returns empty outputs and false.
func Triangulation(
	fx, fy, cx, cy float64,
	pts0, pts1 []r2.Point,
	logger logging.Logger,
) ([]r3.Vector, *mat.Dense, r3.Vector, bool) {
	logger = logging.OrGlobal(logger)
	result, err := Reconstruct(transform.NewPinholeCameraIntrinsics(fx, fy, cx, cy), pts0, pts1, DefaultOptions(), logger)
	if err != nil {
		logger.Errorw("triangulation failed", "error", err)
		return nil, nil, r3.Vector{}, false
	}
	return result.Points, result.Rotation.Dense(), result.Translation, true
}
