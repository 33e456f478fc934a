package twoview

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/twoview/transform"
)

func TestNewSyntheticScene(t *testing.T) {
	cfg := DefaultSyntheticConfig()
	scene, err := NewSyntheticScene(cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scene.Points, test.ShouldHaveLength, cfg.NumPoints)
	test.That(t, scene.Points0, test.ShouldHaveLength, cfg.NumPoints)
	test.That(t, scene.Points1, test.ShouldHaveLength, cfg.NumPoints)

	for i, pt := range scene.Points {
		test.That(t, pt.Z, test.ShouldBeGreaterThanOrEqualTo, cfg.MinDepth)
		test.That(t, pt.Z, test.ShouldBeLessThanOrEqualTo, cfg.MaxDepth)
		test.That(t, cfg.Pose.Transform(pt).Z, test.ShouldBeGreaterThan, 0)
		test.That(t, cfg.Intrinsics.InBounds(scene.Points0[i]), test.ShouldBeTrue)
		test.That(t, cfg.Intrinsics.InBounds(scene.Points1[i]), test.ShouldBeTrue)
	}

	again, err := NewSyntheticScene(cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Points, test.ShouldResemble, scene.Points)
	test.That(t, again.Points0, test.ShouldResemble, scene.Points0)

	cfg.Seed = 2
	other, err := NewSyntheticScene(cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, other.Points, test.ShouldNotResemble, scene.Points)
}

func TestNewSyntheticSceneNoise(t *testing.T) {
	cfg := DefaultSyntheticConfig()
	exact, err := NewSyntheticScene(cfg)
	test.That(t, err, test.ShouldBeNil)

	cfg.Noise = 0.5
	noisy, err := NewSyntheticScene(cfg)
	test.That(t, err, test.ShouldBeNil)
	moved := 0
	for i, px := range noisy.Points0 {
		if px.Sub(exact.Points0[i]).Norm() > 0 {
			moved++
		}
		// noisy draws consume more random numbers, so only the first point lines up.
		if i == 0 {
			test.That(t, noisy.Points[0], test.ShouldResemble, exact.Points[0])
			test.That(t, px.Sub(exact.Points0[0]).Norm(), test.ShouldBeLessThan, 5)
		}
	}
	test.That(t, moved, test.ShouldBeGreaterThan, 0)
}

func TestNewSyntheticSceneErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(cfg *SyntheticConfig)
	}{
		{"no intrinsics", func(cfg *SyntheticConfig) { cfg.Intrinsics = nil }},
		{"bad intrinsics", func(cfg *SyntheticConfig) { cfg.Intrinsics = transform.NewPinholeCameraIntrinsics(-1, 1, 1, 1) }},
		{"no rotation", func(cfg *SyntheticConfig) { cfg.Pose.Rotation = nil }},
		{"no points", func(cfg *SyntheticConfig) { cfg.NumPoints = 0 }},
		{"bad depth", func(cfg *SyntheticConfig) { cfg.MinDepth, cfg.MaxDepth = 5, 1 }},
		{"invisible", func(cfg *SyntheticConfig) { cfg.Pose.Translation = r3.Vector{Z: -1000} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSyntheticConfig()
			tc.modify(&cfg)
			scene, err := NewSyntheticScene(cfg)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, scene, test.ShouldBeNil)
		})
	}
}
