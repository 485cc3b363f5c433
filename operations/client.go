package operations

import (
	"context"

	"github.com/evergreen-ci/flightpath/rest"
	"github.com/evergreen-ci/flightpath/rest/data"
	"github.com/evergreen-ci/flightpath/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Client returns the ./flightpath client command, a thin wrapper around
// the REST API of a running flightpath service.
func Client() cli.Command {
	return cli.Command{
		Name:  "client",
		Usage: "run a simple flightpath client",
		Flags: restServiceFlags(),
		Subcommands: []cli.Command{
			printStatus(),
			scheduleGeneration(),
			getTrajectory(),
			listTrajectories(),
			createDataset(),
			listDatasets(),
			exportDataset(),
		},
	}
}

func parentClient(c *cli.Context) (*rest.Client, error) {
	client, err := rest.NewClient(rest.ClientOptions{
		Host: c.Parent().String(clientHostFlag),
		Port: c.Parent().Int(clientPortFlag),
	})

	return client, errors.Wrap(err, "problem creating REST client")
}

func printStatus() cli.Command {
	return cli.Command{
		Name:  "status",
		Usage: "prints json document for the status of the service",
		Action: func(c *cli.Context) error {
			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			status, err := client.GetStatus(context.Background())
			if err != nil {
				return errors.Wrap(err, "problem getting status")
			}

			return errors.WithStack(util.PrintJSON(status))
		},
	}
}

func scheduleGeneration() cli.Command {
	return cli.Command{
		Name:  "generate",
		Usage: "schedule background generation of a batch of trajectories",
		Flags: routeFlags(
			cli.IntFlag{
				Name:  countFlagName,
				Usage: "number of trajectories to generate",
				Value: 1,
			}),
		Action: func(c *cli.Context) error {
			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			jobIDs, err := client.GenerateTrajectories(context.Background(), data.GenerationOptions{
				Scenario:  c.String(scenarioFlagName),
				Method:    c.String(methodFlagName),
				Seed:      c.Int64(seedFlagName),
				Count:     c.Int(countFlagName),
				Points:    c.Int(samplesFlagName),
				Obstacles: c.Int(obstaclesFlagName),
			})
			if err != nil {
				return errors.Wrap(err, "problem scheduling generation")
			}

			grip.Infof("scheduled %d generation jobs", len(jobIDs))
			return errors.WithStack(util.PrintJSON(jobIDs))
		},
	}
}

func getTrajectory() cli.Command {
	return cli.Command{
		Name:      "get-trajectory",
		Usage:     "prints the trajectory record with the given id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("must specify a trajectory id")
			}

			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			record, err := client.GetTrajectory(context.Background(), c.Args().Get(0))
			if err != nil {
				return errors.Wrap(err, "problem getting trajectory")
			}

			return errors.WithStack(util.PrintJSON(record))
		},
	}
}

func listTrajectories() cli.Command {
	return cli.Command{
		Name:  "list-trajectories",
		Usage: "prints the trajectory records for a scenario",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  scenarioFlagName,
				Usage: "name of the mission scenario",
			},
			cli.StringFlag{
				Name:  methodFlagName,
				Usage: "optionally filter by route generation method",
			},
			cli.IntFlag{
				Name:  limitFlagName,
				Usage: "maximum number of records to return",
			},
		},
		Before: requireStringFlag(scenarioFlagName),
		Action: func(c *cli.Context) error {
			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			records, err := client.GetTrajectoriesByScenario(context.Background(),
				c.String(scenarioFlagName), c.String(methodFlagName), c.Int(limitFlagName))
			if err != nil {
				return errors.Wrap(err, "problem listing trajectories")
			}

			return errors.WithStack(util.PrintJSON(records))
		},
	}
}

func createDataset() cli.Command {
	return cli.Command{
		Name:  "create-dataset",
		Usage: "schedule a new dataset build",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  scenarioFlagName,
				Usage: "name of the mission scenario",
			},
			cli.StringSliceFlag{
				Name:  methodFlagName,
				Usage: "route generation methods to rotate through",
			},
			cli.IntFlag{
				Name:  samplesFlagName,
				Usage: "number of waypoints sampled per route",
				Value: 50,
			},
			cli.IntFlag{
				Name:  "routes",
				Usage: "number of routes per method",
				Value: 10,
			},
			cli.Int64Flag{
				Name:  seedFlagName,
				Usage: "seed for the random source",
				Value: 42,
			},
		},
		Before: requireStringFlag(scenarioFlagName),
		Action: func(c *cli.Context) error {
			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			record, err := client.CreateDataset(context.Background(), data.DatasetOptions{
				Scenario:        c.String(scenarioFlagName),
				Methods:         c.StringSlice(methodFlagName),
				SamplesPerRoute: c.Int(samplesFlagName),
				RoutesPerMethod: c.Int("routes"),
				Seed:            c.Int64(seedFlagName),
			})
			if err != nil {
				return errors.Wrap(err, "problem creating dataset")
			}

			return errors.WithStack(util.PrintJSON(record))
		},
	}
}

func listDatasets() cli.Command {
	return cli.Command{
		Name:  "list-datasets",
		Usage: "prints the dataset records",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  scenarioFlagName,
				Usage: "optionally filter by mission scenario",
			},
			cli.StringFlag{
				Name:  "state",
				Usage: "optionally filter by dataset state",
			},
			cli.IntFlag{
				Name:  limitFlagName,
				Usage: "maximum number of records to return",
			},
		},
		Action: func(c *cli.Context) error {
			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			records, err := client.ListDatasets(context.Background(),
				c.String(scenarioFlagName), c.String("state"), c.Int(limitFlagName))
			if err != nil {
				return errors.Wrap(err, "problem listing datasets")
			}

			return errors.WithStack(util.PrintJSON(records))
		},
	}
}

func exportDataset() cli.Command {
	return cli.Command{
		Name:      "export-dataset",
		Usage:     "schedule an export of a completed dataset",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  formatFlagName,
				Usage: "export format (csv or parquet)",
				Value: "csv",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("must specify a dataset id")
			}

			client, err := parentClient(c)
			if err != nil {
				return errors.WithStack(err)
			}

			jobID, err := client.ExportDataset(context.Background(), c.Args().Get(0), c.String(formatFlagName))
			if err != nil {
				return errors.Wrap(err, "problem scheduling export")
			}

			grip.Infof("scheduled export job '%s'", jobID)
			return nil
		},
	}
}
