package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

const pointsCommentChar = "#"

// ReadPointsFile reads image points from a text file with one "x y" pair per line.
func ReadPointsFile(path string) ([]r2.Point, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening points file")
	}
	defer utils.UncheckedErrorFunc(f.Close)
	pts, err := ParsePoints(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return pts, nil
}

// ParsePoints parses one "x y" pair per line. Anything after a # is a comment and blank lines
// are skipped.
func ParsePoints(r io.Reader) ([]r2.Point, error) {
	var pts []r2.Point
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line, _, _ := strings.Cut(scanner.Text(), pointsCommentChar)
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 2 {
			return nil, errors.Errorf("line %d: expected 2 values, got %d", lineNum, len(tokens))
		}
		x, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		y, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		pts = append(pts, r2.Point{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}

// WritePointsFile writes one "x y" pair per line.
func WritePointsFile(path string, pts []r2.Point) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	for _, p := range pts {
		if _, err := fmt.Fprintf(w, "%s %s\n",
			strconv.FormatFloat(p.X, 'g', -1, 64), strconv.FormatFloat(p.Y, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return w.Flush()
}
