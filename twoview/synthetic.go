package twoview

import (
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/twoview/spatialmath"
	"go.viam.com/twoview/transform"
)

// maxDrawsPerPoint bounds the rejection sampling of NewSyntheticScene.
const maxDrawsPerPoint = 100

// SyntheticConfig describes a random scene observed by two cameras.
type SyntheticConfig struct {
	Intrinsics *transform.PinholeCameraIntrinsics
	// Pose of the second camera relative to the first.
	Pose      Pose
	NumPoints int
	Seed      int64
	// Noise is the standard deviation, in pixels, of the gaussian noise added to the observations.
	Noise float64
	// Points are drawn uniformly with |x|, |y| <= Spread and MinDepth <= z <= MaxDepth in the first camera frame.
	Spread   float64
	MinDepth float64
	MaxDepth float64
}

// DefaultSyntheticConfig returns a 1280x960 camera pair with a mostly sideways baseline and a
// small rotation about the vertical axis.
func DefaultSyntheticConfig() SyntheticConfig {
	intrinsics := transform.NewPinholeCameraIntrinsics(1000, 1000, 640, 480)
	intrinsics.Width = 1280
	intrinsics.Height = 960
	return SyntheticConfig{
		Intrinsics: intrinsics,
		Pose: Pose{
			Rotation:    spatialmath.NewRotationMatrixFromAxisAngle(r3.Vector{X: 0.1, Y: 1, Z: 0.05}, 0.15),
			Translation: r3.Vector{X: -1, Y: 0.1, Z: 0.2},
		},
		NumPoints: 50,
		Seed:      1,
		Spread:    2,
		MinDepth:  4,
		MaxDepth:  10,
	}
}

// SyntheticScene holds the ground truth points, in the first camera frame, and their observations.
type SyntheticScene struct {
	Config  SyntheticConfig
	Points  []r3.Vector
	Points0 []r2.Point
	Points1 []r2.Point
}

// NewSyntheticScene draws cfg.NumPoints points that are in front of both cameras and project
// inside both images. The same config always produces the same scene.
func NewSyntheticScene(cfg SyntheticConfig) (*SyntheticScene, error) {
	if err := cfg.Intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	if cfg.Pose.Rotation == nil {
		return nil, errors.New("synthetic scene needs a rotation")
	}
	if cfg.NumPoints <= 0 {
		return nil, errors.Errorf("number of points must be positive, got %d", cfg.NumPoints)
	}
	if cfg.MinDepth <= 0 || cfg.MaxDepth < cfg.MinDepth {
		return nil, errors.Errorf("invalid depth range [%v, %v]", cfg.MinDepth, cfg.MaxDepth)
	}

	//nolint:gosec
	rng := rand.New(rand.NewSource(cfg.Seed))
	scene := &SyntheticScene{Config: cfg}
	for draws := 0; len(scene.Points) < cfg.NumPoints; draws++ {
		if draws >= maxDrawsPerPoint*cfg.NumPoints {
			return nil, errors.Errorf("only %d of %d points are visible in both cameras", len(scene.Points), cfg.NumPoints)
		}
		pt := r3.Vector{
			X: (2*rng.Float64() - 1) * cfg.Spread,
			Y: (2*rng.Float64() - 1) * cfg.Spread,
			Z: cfg.MinDepth + rng.Float64()*(cfg.MaxDepth-cfg.MinDepth),
		}
		inSecond := cfg.Pose.Transform(pt)
		if inSecond.Z <= 0 {
			continue
		}
		px0, err := cfg.Intrinsics.PointToPixel(pt)
		if err != nil {
			continue
		}
		px1, err := cfg.Intrinsics.PointToPixel(inSecond)
		if err != nil {
			continue
		}
		if !cfg.Intrinsics.InBounds(px0) || !cfg.Intrinsics.InBounds(px1) {
			continue
		}
		if cfg.Noise > 0 {
			px0 = px0.Add(r2.Point{X: rng.NormFloat64(), Y: rng.NormFloat64()}.Mul(cfg.Noise))
			px1 = px1.Add(r2.Point{X: rng.NormFloat64(), Y: rng.NormFloat64()}.Mul(cfg.Noise))
		}
		scene.Points = append(scene.Points, pt)
		scene.Points0 = append(scene.Points0, px0)
		scene.Points1 = append(scene.Points1, px1)
	}
	return scene, nil
}
