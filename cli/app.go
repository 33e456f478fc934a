// Package cli contains the twoview command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagDebug = "debug"

	reconstructFlagInput    = "input"
	reconstructFlagPoints0  = "points0"
	reconstructFlagPoints1  = "points1"
	reconstructFlagFx       = "fx"
	reconstructFlagFy       = "fy"
	reconstructFlagCx       = "cx"
	reconstructFlagCy       = "cy"
	reconstructFlagRefine   = "refine"
	reconstructFlagParallel = "parallel"
	reconstructFlagProbe    = "probe"
	reconstructFlagOut      = "out"
	reconstructFlagPCD      = "pcd"
	reconstructFlagBinary   = "binary"

	generateFlagOut    = "out"
	generateFlagPoints = "points"
	generateFlagSeed   = "seed"
	generateFlagNoise  = "noise"
	generateFlagXY     = "xy-prefix"
)

var app = &cli.App{
	Name:            "twoview",
	Usage:           "recover camera motion and scene structure from two calibrated views",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "reconstruct",
			Usage: "reconstruct a scene from point correspondences",
			UsageText: "twoview reconstruct --input <job.json> [other options]\n" +
				"   twoview reconstruct --points0 <a.xy> --points1 <b.xy> --fx <fx> --fy <fy> --cx <cx> --cy <cy> [other options]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:  reconstructFlagInput,
					Usage: "reconstruction job `FILE`",
				},
				&cli.PathFlag{
					Name:  reconstructFlagPoints0,
					Usage: "points of the first image, one \"x y\" pair per line",
				},
				&cli.PathFlag{
					Name:  reconstructFlagPoints1,
					Usage: "points of the second image, one \"x y\" pair per line",
				},
				&cli.Float64Flag{
					Name:  reconstructFlagFx,
					Usage: "horizontal focal length in pixels",
				},
				&cli.Float64Flag{
					Name:  reconstructFlagFy,
					Usage: "vertical focal length in pixels",
				},
				&cli.Float64Flag{
					Name:  reconstructFlagCx,
					Usage: "principal point x in pixels",
				},
				&cli.Float64Flag{
					Name:  reconstructFlagCy,
					Usage: "principal point y in pixels",
				},
				&cli.BoolFlag{
					Name:  reconstructFlagRefine,
					Usage: "refine every point by minimizing its reprojection error",
				},
				&cli.BoolFlag{
					Name:  reconstructFlagParallel,
					Usage: "triangulate points in parallel",
				},
				&cli.IntFlag{
					Name:  reconstructFlagProbe,
					Usage: "number of correspondences used to choose the camera pose, 0 for all",
				},
				&cli.PathFlag{
					Name:  reconstructFlagOut,
					Usage: "write the result as JSON to `FILE`",
				},
				&cli.PathFlag{
					Name:  reconstructFlagPCD,
					Usage: "write the points as a PCD point cloud to `FILE`",
				},
				&cli.BoolFlag{
					Name:  reconstructFlagBinary,
					Usage: "write the PCD point cloud in binary",
				},
			},
			Action: ReconstructAction,
		},
		{
			Name:      "generate",
			Usage:     "generate a synthetic reconstruction job",
			UsageText: "twoview generate --out <job.json> [other options]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     generateFlagOut,
					Required: true,
					Usage:    "write the job to `FILE`",
				},
				&cli.IntFlag{
					Name:  generateFlagPoints,
					Value: 50,
					Usage: "number of scene points",
				},
				&cli.Int64Flag{
					Name:  generateFlagSeed,
					Value: 1,
					Usage: "random seed",
				},
				&cli.Float64Flag{
					Name:  generateFlagNoise,
					Usage: "standard deviation of the pixel noise",
				},
				&cli.StringFlag{
					Name:  generateFlagXY,
					Usage: "also write the points to PREFIX_0.xy and PREFIX_1.xy",
				},
			},
			Action: GenerateAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
