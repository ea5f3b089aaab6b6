// Package cli contains the bvh command line tool. It loads a scenario into a world, runs ticks and reports
// on the quality of the broad-phase trees.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	debugFlag    = "debug"
	scenarioFlag = "scenario"
	ticksFlag    = "ticks"
	seedFlag     = "seed"
	speedFlag    = "speed"
	layerFlag    = "layer"
	pointFlag    = "point"
	boxFlag      = "box"
	rayFlag      = "ray"
	limitFlag    = "limit"
	workersFlag  = "workers"
)

var scenarioFlagDef = &cli.PathFlag{
	Name:     scenarioFlag,
	Aliases:  []string{"s"},
	Usage:    "load the world from scenario `FILE`",
	Required: true,
}

var app = &cli.App{
	Name:            "bvh",
	Usage:           "inspect the broad-phase index of a simulated world",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "stats",
			Usage:  "print statistics about the trees of a scenario",
			Flags:  []cli.Flag{scenarioFlagDef},
			Action: StatsAction,
		},
		{
			Name:      "simulate",
			Usage:     "move every body randomly for a number of ticks and report candidate pairs",
			UsageText: "bvh simulate --scenario FILE [--ticks N] [--seed N] [--speed V]",
			Flags: []cli.Flag{
				scenarioFlagDef,
				&cli.IntFlag{
					Name:  ticksFlag,
					Usage: "number of ticks to run",
					Value: 60,
				},
				&cli.Int64Flag{
					Name:  seedFlag,
					Usage: "seed of the random movements",
					Value: 1,
				},
				&cli.Float64Flag{
					Name:  speedFlag,
					Usage: "largest speed of a body along each axis in units per second; a tick lasts the world's delta_t",
					Value: 6,
				},
				&cli.IntFlag{
					Name:  workersFlag,
					Usage: "number of concurrent pair queries, 0 for one per CPU",
				},
			},
			Action: SimulateAction,
		},
		{
			Name:  "query",
			Usage: "list the parts hit by a point, box or ray query",
			Flags: []cli.Flag{
				scenarioFlagDef,
				&cli.Float64SliceFlag{
					Name:  pointFlag,
					Usage: "parts containing the point x,y,z",
				},
				&cli.Float64SliceFlag{
					Name:  boxFlag,
					Usage: "parts intersecting the box minX,minY,minZ,maxX,maxY,maxZ",
				},
				&cli.Float64SliceFlag{
					Name:  rayFlag,
					Usage: "parts hit by the ray originX,originY,originZ,dirX,dirY,dirZ, nearest first",
				},
				&cli.StringFlag{
					Name:  layerFlag,
					Usage: "layer to query: all, free or terrain",
					Value: "all",
				},
			},
			Action: QueryAction,
		},
		{
			Name:  "pairs",
			Usage: "list the candidate pairs of a scenario",
			Flags: []cli.Flag{
				scenarioFlagDef,
				&cli.IntFlag{
					Name:  limitFlag,
					Usage: "print at most this many pairs, 0 for all",
				},
				&cli.IntFlag{
					Name:  workersFlag,
					Usage: "number of concurrent pair queries, 0 for one per CPU",
				},
			},
			Action: PairsAction,
		},
		{
			Name:   "version",
			Usage:  "print version info for this program",
			Action: VersionAction,
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
