package twoview

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned when the correspondences or intrinsics cannot be used at all:
	// too few points, mismatched sequences or invalid camera parameters.
	ErrInvalidInput = errors.New("invalid reconstruction input")

	// ErrDegenerateGeometry is returned when the input is well formed but the scene geometry does
	// not determine a pose: collapsed normalization, no consistent pose candidate, or no points.
	ErrDegenerateGeometry = errors.New("degenerate two-view geometry")

	// ErrDegenerateTriangulation is returned for a single correspondence whose 3D point cannot be
	// solved. The pipeline drops such points instead of failing.
	ErrDegenerateTriangulation = errors.New("degenerate triangulation")

	// ErrNoPointsReconstructed is returned when every correspondence was dropped.
	ErrNoPointsReconstructed = fmt.Errorf("no points were reconstructed: %w", ErrDegenerateGeometry)
)
