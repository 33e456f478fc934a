package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/twoview"
)

// ResultFile is the JSON form of a reconstruction.
type ResultFile struct {
	// Rotation is row major.
	Rotation    []float64                 `json:"rotation"`
	Quaternion  [4]float64                `json:"quaternion"`
	Translation [3]float64                `json:"translation"`
	Points      [][3]float64              `json:"points"`
	Indices     []int                     `json:"indices"`
	Scores      [4]int                    `json:"pose_scores"`
	Fundamental []float64                 `json:"fundamental"`
	Essential   []float64                 `json:"essential"`
	Stats       twoview.ReprojectionStats `json:"reprojection"`
}

// NewResultFile converts a reconstruction to its JSON form.
func NewResultFile(result *twoview.Result) (*ResultFile, error) {
	if result == nil || result.Rotation == nil {
		return nil, errors.New("no reconstruction to write")
	}
	q := result.Rotation.Quaternion()
	out := &ResultFile{
		Rotation:    result.Rotation.RowMajor(),
		Quaternion:  [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Translation: [3]float64{result.Translation.X, result.Translation.Y, result.Translation.Z},
		Points:      make([][3]float64, len(result.Points)),
		Indices:     append([]int{}, result.Indices...),
		Scores:      result.Scores,
		Stats:       result.Reprojection,
	}
	for i, p := range result.Points {
		out.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	if result.Fundamental != nil {
		out.Fundamental = rowMajor(result.Fundamental)
	}
	if result.Essential != nil {
		out.Essential = rowMajor(result.Essential)
	}
	return out, nil
}

func rowMajor(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// WriteResult writes the reconstruction to path as indented JSON.
func WriteResult(path string, result *twoview.Result) error {
	out, err := NewResultFile(result)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// ReadResult reads a result written by WriteResult.
func ReadResult(path string) (*ResultFile, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out ResultFile
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode result")
	}
	return &out, nil
}
