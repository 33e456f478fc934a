package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/twoview/config"
	"go.viam.com/twoview/twoview"
)

// GenerateAction is the corresponding Action for 'generate'.
func GenerateAction(c *cli.Context) error {
	cfg := twoview.DefaultSyntheticConfig()
	cfg.NumPoints = c.Int(generateFlagPoints)
	cfg.Seed = c.Int64(generateFlagSeed)
	cfg.Noise = c.Float64(generateFlagNoise)
	if cfg.Noise < 0 {
		return errors.Errorf("--%s must not be negative", generateFlagNoise)
	}

	scene, err := twoview.NewSyntheticScene(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to generate scene")
	}
	out := c.Path(generateFlagOut)
	if err := config.Write(out, config.NewJob(cfg.Intrinsics, scene.Points0, scene.Points1)); err != nil {
		return errors.Wrap(err, "failed to write job")
	}

	w := c.App.Writer
	infof(w, "wrote %d correspondences to %s", len(scene.Points), out)
	if prefix := c.String(generateFlagXY); prefix != "" {
		if err := config.WritePointsFile(prefix+"_0.xy", scene.Points0); err != nil {
			return err
		}
		if err := config.WritePointsFile(prefix+"_1.xy", scene.Points1); err != nil {
			return err
		}
		infof(w, "wrote %s_0.xy and %s_1.xy", prefix, prefix)
	}

	t := cfg.Pose.Translation.Normalize()
	q := cfg.Pose.Rotation.Quaternion()
	printf(w, "true rotation (quaternion): %.6f %.6f %.6f %.6f", q.Real, q.Imag, q.Jmag, q.Kmag)
	printf(w, "true translation direction: %.6f %.6f %.6f", t.X, t.Y, t.Z)
	return nil
}
