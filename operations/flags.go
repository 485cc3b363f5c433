package operations

import (
	"strings"

	"github.com/urfave/cli"
)

////////////////////////////////////////////////////////////////////////
//
// Flag Name Constants

const (
	configFlag     = "config"
	pathFlagName   = "path"
	outputFlagName = "output"

	numWorkersFlag = "workers"
	bucketNameFlag = "bucket"

	dbURIFlag  = "dbUri"
	dbNameFlag = "dbName"

	clientHostFlag = "host"
	clientPortFlag = "port"

	scenarioFlagName  = "scenario"
	methodFlagName    = "method"
	seedFlagName      = "seed"
	samplesFlagName   = "samples"
	countFlagName     = "count"
	obstaclesFlagName = "obstacles"
	formatFlagName    = "format"
	limitFlagName     = "limit"

	flagNameFlag = "flag"
)

////////////////////////////////////////////////////////////////////////
//
// Utility Functions

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func mergeFlags(in ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{}

	for idx := range in {
		out = append(out, in[idx]...)
	}

	return out
}

////////////////////////////////////////////////////////////////////////
//
// Flag Groups

func addOutputPath(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(outputFlagName, "o"),
		Usage: "path to the output file",
		Value: "output.json",
	})
}

func restServiceFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  clientHostFlag,
			Usage: "host for the remote flightpath instance.",
			Value: "http://localhost",
		},
		cli.IntFlag{
			Name:  clientPortFlag,
			Usage: "port for the remote flightpath service.",
			Value: 3000,
		},
	)
}

func dbFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:   dbURIFlag,
			Usage:  "specify a mongodb connection string",
			Value:  "mongodb://localhost:27017",
			EnvVar: "FLIGHTPATH_MONGODB_URL",
		},
		cli.StringFlag{
			Name:   dbNameFlag,
			Usage:  "specify a database name to use",
			Value:  "flightpath",
			EnvVar: "FLIGHTPATH_DATABASE_NAME",
		})
}

func addModifyFeatureFlagFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  flagNameFlag,
		Usage: "specify the name of the flag to set",
	})
}

func routeFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  scenarioFlagName,
			Usage: "name of the mission scenario",
			Value: "default",
		},
		cli.StringFlag{
			Name:  methodFlagName,
			Usage: "route generation method (bezier, spline, dubins, rrt)",
			Value: "bezier",
		},
		cli.Int64Flag{
			Name:  seedFlagName,
			Usage: "seed for the random source",
			Value: 42,
		},
		cli.IntFlag{
			Name:  samplesFlagName,
			Usage: "number of waypoints sampled per route",
			Value: 50,
		},
		cli.IntFlag{
			Name:  obstaclesFlagName,
			Usage: "number of spherical obstacles to scatter in the mission volume",
		})
}

func baseFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.IntFlag{
			Name:  numWorkersFlag,
			Usage: "specify the number of worker jobs this process will have",
			Value: 2,
		},
		cli.StringFlag{
			Name:   bucketNameFlag,
			Usage:  "specify a bucket name to use for storing route data",
			EnvVar: "FLIGHTPATH_BUCKET_NAME",
			Value:  "flightpath-trajectories",
		})
}
