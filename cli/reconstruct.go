package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/twoview/config"
	"go.viam.com/twoview/pointcloud"
	"go.viam.com/twoview/transform"
	"go.viam.com/twoview/twoview"
)

// ReconstructAction is the corresponding Action for 'reconstruct'.
func ReconstructAction(c *cli.Context) (err error) {
	logger := newLogger(c)
	defer func() {
		err = multierr.Combine(err, logger.Sync())
	}()

	job, err := loadJob(c)
	if err != nil {
		return err
	}
	opts := job.ReconstructOptions()
	if c.IsSet(reconstructFlagRefine) {
		opts.Refine = c.Bool(reconstructFlagRefine)
	}
	if c.IsSet(reconstructFlagParallel) {
		opts.Parallel = c.Bool(reconstructFlagParallel)
	}
	if c.IsSet(reconstructFlagProbe) {
		opts.ProbeSize = c.Int(reconstructFlagProbe)
		if opts.ProbeSize < 0 {
			return errors.Errorf("--%s must not be negative", reconstructFlagProbe)
		}
	}

	pts0, pts1 := job.ImagePoints()
	result, err := twoview.Reconstruct(job.Intrinsics, pts0, pts1, opts, logger)
	if err != nil {
		return errors.Wrap(err, "reconstruction failed")
	}

	w := c.App.Writer
	r := result.Rotation
	printf(w, "rotation:")
	for i := 0; i < 3; i++ {
		row := r.Row(i)
		printf(w, "  %10.6f %10.6f %10.6f", row.X, row.Y, row.Z)
	}
	printf(w, "translation: %.6f %.6f %.6f", result.Translation.X, result.Translation.Y, result.Translation.Z)
	printf(w, "points: %d of %d", len(result.Points), len(pts0))
	printf(w, "reprojection error: mean %.4f px, median %.4f px, max %.4f px",
		result.Reprojection.Mean, result.Reprojection.Median, result.Reprojection.Max)
	if dropped := len(pts0) - len(result.Points); dropped > 0 {
		warningf(w, "%d correspondences could not be triangulated", dropped)
	}

	if out := c.Path(reconstructFlagOut); out != "" {
		if err := config.WriteResult(out, result); err != nil {
			return errors.Wrap(err, "failed to write result")
		}
		infof(w, "wrote result to %s", out)
	}
	if out := c.Path(reconstructFlagPCD); out != "" {
		cloud, err := pointcloud.NewFromPoints(result.Points, result.Indices)
		if err != nil {
			return err
		}
		pcdType := pointcloud.PCDAscii
		if c.Bool(reconstructFlagBinary) {
			pcdType = pointcloud.PCDBinary
		}
		if err := pointcloud.WriteToPCDFile(cloud, out, pcdType); err != nil {
			return errors.Wrap(err, "failed to write point cloud")
		}
		infof(w, "wrote %d points to %s", cloud.Size(), out)
	}
	return nil
}

// loadJob reads the job from --input, or builds it from point files and intrinsics flags.
func loadJob(c *cli.Context) (*config.Job, error) {
	input := c.Path(reconstructFlagInput)
	hasPointFiles := c.IsSet(reconstructFlagPoints0) || c.IsSet(reconstructFlagPoints1)
	switch {
	case input != "" && hasPointFiles:
		return nil, errors.Errorf("use either --%s or --%s and --%s", reconstructFlagInput, reconstructFlagPoints0, reconstructFlagPoints1)
	case input != "":
		return config.Read(input)
	case !hasPointFiles:
		return nil, errors.Errorf("no correspondences given, use --%s or --%s and --%s",
			reconstructFlagInput, reconstructFlagPoints0, reconstructFlagPoints1)
	}

	for _, name := range []string{
		reconstructFlagPoints0, reconstructFlagPoints1,
		reconstructFlagFx, reconstructFlagFy, reconstructFlagCx, reconstructFlagCy,
	} {
		if !c.IsSet(name) {
			return nil, errors.Errorf("missing --%s", name)
		}
	}
	pts0, err := config.ReadPointsFile(c.Path(reconstructFlagPoints0))
	if err != nil {
		return nil, err
	}
	pts1, err := config.ReadPointsFile(c.Path(reconstructFlagPoints1))
	if err != nil {
		return nil, err
	}
	intrinsics := transform.NewPinholeCameraIntrinsics(
		c.Float64(reconstructFlagFx), c.Float64(reconstructFlagFy),
		c.Float64(reconstructFlagCx), c.Float64(reconstructFlagCy),
	)
	job := config.NewJob(intrinsics, pts0, pts1)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}
