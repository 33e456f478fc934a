package twoview

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// MinCorrespondences is the number of point pairs the linear eight point algorithm needs.
const MinCorrespondences = 8

// ValidateCorrespondences checks that pts0 and pts1 can be used as index aligned correspondences.
func ValidateCorrespondences(pts0, pts1 []r2.Point) error {
	if len(pts0) < MinCorrespondences || len(pts1) < MinCorrespondences {
		return errors.Wrapf(ErrInvalidInput, "insufficient correspondences (%d, %d), need at least %d",
			len(pts0), len(pts1), MinCorrespondences)
	}
	if len(pts0) != len(pts1) {
		return errors.Wrapf(ErrInvalidInput, "sets of points must have the same number of elements, got %d and %d",
			len(pts0), len(pts1))
	}
	return nil
}
