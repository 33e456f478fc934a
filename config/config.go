// Package config reads reconstruction jobs and correspondence files, and writes reconstruction
// results.
package config

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/twoview/transform"
	"go.viam.com/twoview/twoview"
)

// Job is a reconstruction job as stored on disk.
type Job struct {
	ConfigFilePath string `json:"-"`

	Intrinsics *transform.PinholeCameraIntrinsics `json:"intrinsics"`
	Points0    [][2]float64                       `json:"points_0"`
	Points1    [][2]float64                       `json:"points_1"`
	Options    *OptionsConfig                     `json:"options,omitempty"`
}

// OptionsConfig overrides the default reconstruction options. Unset fields keep their default.
type OptionsConfig struct {
	ProbeSize *int  `json:"probe_size,omitempty"`
	Refine    *bool `json:"refine,omitempty"`
	Parallel  *bool `json:"parallel,omitempty"`
}

// Validate ensures all parts of the job are valid.
func (j *Job) Validate() error {
	if j == nil {
		return errors.New("job is empty")
	}
	if err := j.Intrinsics.CheckValid(); err != nil {
		return errors.Wrap(err, "intrinsics")
	}
	if err := twoview.ValidateCorrespondences(j.ImagePoints()); err != nil {
		return err
	}
	if j.Options != nil && j.Options.ProbeSize != nil && *j.Options.ProbeSize < 0 {
		return errors.Errorf("probe_size must not be negative, got %d", *j.Options.ProbeSize)
	}
	return nil
}

// ReconstructOptions returns the default options with the job's overrides applied.
func (j *Job) ReconstructOptions() twoview.Options {
	opts := twoview.DefaultOptions()
	if j.Options == nil {
		return opts
	}
	if j.Options.ProbeSize != nil {
		opts.ProbeSize = *j.Options.ProbeSize
	}
	if j.Options.Refine != nil {
		opts.Refine = *j.Options.Refine
	}
	if j.Options.Parallel != nil {
		opts.Parallel = *j.Options.Parallel
	}
	return opts
}

// ImagePoints returns the correspondences of both images.
func (j *Job) ImagePoints() ([]r2.Point, []r2.Point) {
	return toPoints(j.Points0), toPoints(j.Points1)
}

// NewJob builds a job from intrinsics and correspondences.
func NewJob(intrinsics *transform.PinholeCameraIntrinsics, pts0, pts1 []r2.Point) *Job {
	return &Job{
		Intrinsics: intrinsics,
		Points0:    fromPoints(pts0),
		Points1:    fromPoints(pts1),
	}
}

func toPoints(in [][2]float64) []r2.Point {
	out := make([]r2.Point, len(in))
	for i, p := range in {
		out[i] = r2.Point{X: p[0], Y: p[1]}
	}
	return out
}

func fromPoints(in []r2.Point) [][2]float64 {
	out := make([][2]float64, len(in))
	for i, p := range in {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
