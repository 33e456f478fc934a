package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/twoview/config"
	"go.viam.com/twoview/pointcloud"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"twoview"}, args...))
	return out.String(), errOut.String(), err
}

func TestGenerateAndReconstruct(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.json")
	resultPath := filepath.Join(dir, "result.json")
	pcdPath := filepath.Join(dir, "scene.pcd")

	out, _, err := runApp(t, "generate", "--out", jobPath, "--points", "40", "--seed", "3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote 40 correspondences")

	job, err := config.Read(jobPath)
	test.That(t, err, test.ShouldBeNil)
	pts0, _ := job.ImagePoints()
	test.That(t, pts0, test.ShouldHaveLength, 40)

	out, _, err = runApp(t, "reconstruct", "--input", jobPath, "--out", resultPath, "--pcd", pcdPath, "--parallel")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "points: 40 of 40")
	test.That(t, out, test.ShouldContainSubstring, "wrote result to "+resultPath)

	result, err := config.ReadResult(resultPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Points, test.ShouldHaveLength, 40)
	test.That(t, result.Stats.Max, test.ShouldBeLessThan, 1e-6)

	//nolint:gosec
	f, err := os.Open(pcdPath)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	cloud, err := pointcloud.ReadPCD(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cloud.Size(), test.ShouldEqual, 40)
}

func TestReconstructFromPointFiles(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "image")
	_, _, err := runApp(t, "generate", "--out", filepath.Join(dir, "job.json"), "--noise", "0.5", "--xy-prefix", prefix)
	test.That(t, err, test.ShouldBeNil)

	pcdPath := filepath.Join(dir, "scene.pcd")
	out, errOut, err := runApp(t, "--debug", "reconstruct",
		"--points0", prefix+"_0.xy", "--points1", prefix+"_1.xy",
		"--fx", "1000", "--fy", "1000", "--cx", "640", "--cy", "480",
		"--refine", "--probe", "10", "--pcd", pcdPath, "--binary",
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "rotation:")
	test.That(t, out, test.ShouldContainSubstring, "wrote 50 points to "+pcdPath)
	// debug logs go to the error writer.
	test.That(t, errOut, test.ShouldContainSubstring, "pose candidate scores")

	data, err := os.ReadFile(pcdPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "DATA binary\n")
}

func TestReconstructErrors(t *testing.T) {
	dir := t.TempDir()
	xy := filepath.Join(dir, "a.xy")
	test.That(t, os.WriteFile(xy, []byte("1 2\n3 4\n"), 0o600), test.ShouldBeNil)

	for _, tc := range []struct {
		name string
		args []string
		msg  string
	}{
		{"nothing", []string{"reconstruct"}, "no correspondences"},
		{"both", []string{"reconstruct", "--input", "job.json", "--points0", xy}, "use either"},
		{"missing intrinsics", []string{"reconstruct", "--points0", xy, "--points1", xy}, "missing --fx"},
		{
			"too few points",
			[]string{"reconstruct", "--points0", xy, "--points1", xy, "--fx", "1", "--fy", "1", "--cx", "1", "--cy", "1"},
			"insufficient correspondences",
		},
		{"missing job", []string{"reconstruct", "--input", filepath.Join(dir, "missing.json")}, "missing.json"},
		{"generate without out", []string{"generate"}, "out"},
		{"negative noise", []string{"generate", "--out", filepath.Join(dir, "j.json"), "--noise", "-1"}, "noise"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runApp(t, tc.args...)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, strings.Contains(err.Error(), tc.msg), test.ShouldBeTrue)
		})
	}
}
