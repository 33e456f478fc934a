package twoview

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ReprojectionStats summarizes the pixel reprojection errors of a reconstruction over both images.
type ReprojectionStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	RMS    float64 `json:"rms"`
}

// ComputeReprojectionStats projects every point with both cameras and summarizes the distance to
// the observed pixels. indices[i] is the correspondence that points[i] was triangulated from.
// Points projecting to infinity are skipped.
func ComputeReprojectionStats(
	m0, m1 mat.Matrix,
	pts0, pts1 []r2.Point,
	points []r3.Vector,
	indices []int,
) (ReprojectionStats, error) {
	if len(points) != len(indices) {
		return ReprojectionStats{}, errors.Errorf("got %d points but %d indices", len(points), len(indices))
	}
	residuals := make(stats.Float64Data, 0, 2*len(points))
	for i, pt := range points {
		idx := indices[i]
		if idx < 0 || idx >= len(pts0) || idx >= len(pts1) {
			return ReprojectionStats{}, errors.Errorf("index %d is out of range", idx)
		}
		for _, e := range []float64{ReprojectionError(m0, pt, pts0[idx]), ReprojectionError(m1, pt, pts1[idx])} {
			if !math.IsInf(e, 0) && !math.IsNaN(e) {
				residuals = append(residuals, e)
			}
		}
	}
	if len(residuals) == 0 {
		return ReprojectionStats{}, errors.Wrap(ErrNoPointsReconstructed, "no finite reprojection errors")
	}

	var out ReprojectionStats
	var err error
	if out.Mean, err = stats.Mean(residuals); err != nil {
		return ReprojectionStats{}, err
	}
	if out.Median, err = stats.Median(residuals); err != nil {
		return ReprojectionStats{}, err
	}
	if out.Max, err = stats.Max(residuals); err != nil {
		return ReprojectionStats{}, err
	}
	squared := make(stats.Float64Data, len(residuals))
	for i, r := range residuals {
		squared[i] = r * r
	}
	meanSquared, err := stats.Mean(squared)
	if err != nil {
		return ReprojectionStats{}, err
	}
	out.RMS = math.Sqrt(meanSquared)
	return out, nil
}
