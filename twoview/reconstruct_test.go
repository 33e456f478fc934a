package twoview

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/spatialmath"
	"go.viam.com/twoview/transform"
	"go.viam.com/twoview/utils"
)

func TestReconstructExact(t *testing.T) {
	scene := newTestScene(t, 0)
	logger := logging.NewTestLogger(t)

	result, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)

	truth := scene.Config.Pose
	scale := truth.Translation.Norm()
	test.That(t, result.Rotation.CheckValid(1e-9), test.ShouldBeNil)
	test.That(t, spatialmath.RotationMatrixAlmostEqual(result.Rotation, truth.Rotation, 1e-6), test.ShouldBeTrue)
	test.That(t, result.Translation.Norm(), test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, utils.R3VectorAlmostEqual(result.Translation, truth.Translation.Mul(1/scale), 1e-6), test.ShouldBeTrue)

	test.That(t, result.Points, test.ShouldHaveLength, len(scene.Points))
	test.That(t, result.Indices, test.ShouldHaveLength, len(scene.Points))
	for i, pt := range result.Points {
		test.That(t, result.Indices[i], test.ShouldEqual, i)
		// the reconstruction is the scene scaled by 1/|t|.
		test.That(t, utils.R3VectorAlmostEqual(pt.Mul(scale), scene.Points[i], 1e-5), test.ShouldBeTrue)
		test.That(t, pt.Z, test.ShouldBeGreaterThan, 0)
		test.That(t, result.Transform(pt).Z, test.ShouldBeGreaterThan, 0)
	}

	best := 0
	for _, score := range result.Scores {
		if score > best {
			best = score
		}
	}
	test.That(t, best, test.ShouldEqual, len(scene.Points))
	test.That(t, result.Reprojection.Max, test.ShouldBeLessThan, 1e-6)
	test.That(t, SingularValues(result.Fundamental)[2], test.ShouldBeLessThan, 1e-9)
	test.That(t, SingularValues(result.Essential)[2], test.ShouldBeLessThan, 1e-12)
}

func TestReconstructDeterministic(t *testing.T) {
	scene := newTestScene(t, 0.5)
	logger := logging.NewTestLogger(t)

	first, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)
	second, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, second.Rotation.RowMajor(), test.ShouldResemble, first.Rotation.RowMajor())
	test.That(t, second.Translation, test.ShouldResemble, first.Translation)
	test.That(t, second.Points, test.ShouldResemble, first.Points)
	test.That(t, second.Scores, test.ShouldResemble, first.Scores)

	parallel, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, Options{Parallel: true}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parallel.Points, test.ShouldResemble, first.Points)
	test.That(t, parallel.Indices, test.ShouldResemble, first.Indices)
}

func TestReconstructNoisy(t *testing.T) {
	scene := newTestScene(t, 0.5)
	logger := logging.NewTestLogger(t)
	truth := scene.Config.Pose

	linear, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, DefaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.AngleBetween(linear.Rotation, truth.Rotation), test.ShouldBeLessThan, 0.02)
	test.That(t, linear.Translation.Dot(truth.Translation.Normalize()), test.ShouldBeGreaterThan, 0.99)
	test.That(t, linear.Reprojection.Mean, test.ShouldBeLessThan, 2)

	refined, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, Options{Refine: true}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, refined.Rotation.RowMajor(), test.ShouldResemble, linear.Rotation.RowMajor())
	test.That(t, refined.Points, test.ShouldHaveLength, len(linear.Points))
	test.That(t, refined.Reprojection.RMS, test.ShouldBeLessThanOrEqualTo, linear.Reprojection.RMS)
}

func TestReconstructProbe(t *testing.T) {
	scene := newTestScene(t, 0)
	result, err := Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1, Options{ProbeSize: 8}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Points, test.ShouldHaveLength, len(scene.Points))
	for _, score := range result.Scores {
		test.That(t, score, test.ShouldBeLessThanOrEqualTo, 8)
	}
}

func TestReconstructInvalidInput(t *testing.T) {
	scene := newTestScene(t, 0)
	logger := logging.NewTestLogger(t)

	_, err := Reconstruct(scene.Config.Intrinsics, scene.Points0[:7], scene.Points1[:7], DefaultOptions(), logger)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = Reconstruct(scene.Config.Intrinsics, scene.Points0, scene.Points1[:20], DefaultOptions(), logger)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = Reconstruct(transform.NewPinholeCameraIntrinsics(0, 1000, 640, 480), scene.Points0, scene.Points1, DefaultOptions(), logger)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Fx")

	_, err = Reconstruct(nil, scene.Points0, scene.Points1, DefaultOptions(), logger)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
}

// planarScene observes points on the plane z = 6 with a rotating camera; such scenes do not
// determine the fundamental matrix.
func planarScene(t *testing.T) *SyntheticScene {
	t.Helper()
	cfg := DefaultSyntheticConfig()
	cfg.MinDepth = 6
	cfg.MaxDepth = 6
	scene, err := NewSyntheticScene(cfg)
	test.That(t, err, test.ShouldBeNil)
	return scene
}

func TestReconstructDegenerate(t *testing.T) {
	logger := logging.NewTestLogger(t)
	intrinsics := DefaultSyntheticConfig().Intrinsics
	exact := newTestScene(t, 0)

	collapsed := make([]r2.Point, 12)
	for i := range collapsed {
		collapsed[i] = r2.Point{X: 320, Y: 240}
	}

	planar := planarScene(t)
	for _, tc := range []struct {
		name       string
		pts0, pts1 []r2.Point
	}{
		{"planar scene", planar.Points0, planar.Points1},
		{"no motion", exact.Points0, exact.Points0},
		{"collapsed first image", collapsed, exact.Points1[:12]},
	} {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Reconstruct(intrinsics, tc.pts0, tc.pts1, DefaultOptions(), logger)
			if err != nil {
				test.That(t, result, test.ShouldBeNil)
				test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
				return
			}
			// whatever pose comes out must still be a finite rigid motion.
			test.That(t, result.Rotation.CheckValid(1e-6), test.ShouldBeNil)
			test.That(t, utils.VectorIsFinite(result.Translation), test.ShouldBeTrue)
			for _, pt := range result.Points {
				test.That(t, utils.VectorIsFinite(pt), test.ShouldBeTrue)
			}
		})
	}

	_, err := Reconstruct(intrinsics, collapsed, exact.Points1[:12], DefaultOptions(), logger)
	test.That(t, errors.Is(err, transform.ErrDegenerateNormalization), test.ShouldBeTrue)
}

func TestTriangulation(t *testing.T) {
	scene := newTestScene(t, 0)
	intrinsics := scene.Config.Intrinsics
	logger, logs := logging.NewObservedTestLogger(t)

	points, rotation, translation, ok := Triangulation(
		intrinsics.Fx, intrinsics.Fy, intrinsics.Ppx, intrinsics.Ppy, scene.Points0, scene.Points1, logger)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, points, test.ShouldHaveLength, len(scene.Points))
	test.That(t, mat.EqualApprox(rotation, scene.Config.Pose.Rotation.Dense(), 1e-6), test.ShouldBeTrue)
	test.That(t, translation.Norm(), test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, logs.FilterMessage("triangulation failed").Len(), test.ShouldEqual, 0)

	points, rotation, translation, ok = Triangulation(
		intrinsics.Fx, intrinsics.Fy, intrinsics.Ppx, intrinsics.Ppy, scene.Points0[:7], scene.Points1[:7], logger)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, points, test.ShouldBeNil)
	test.That(t, rotation, test.ShouldBeNil)
	test.That(t, translation, test.ShouldResemble, r3.Vector{})

	failures := logs.FilterMessage("triangulation failed").All()
	test.That(t, failures, test.ShouldHaveLength, 1)
	test.That(t, failures[0].ContextMap()["error"], test.ShouldContainSubstring, "insufficient correspondences")
}

func TestTriangulationGlobalLogger(t *testing.T) {
	prev := logging.Global()
	defer logging.ReplaceGlobal(prev)
	logger, logs := logging.NewObservedTestLogger(t)
	logging.ReplaceGlobal(logger)

	_, _, _, ok := Triangulation(1000, 1000, 640, 480, nil, nil, nil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, logs.FilterMessage("triangulation failed").Len(), test.ShouldEqual, 1)
}
