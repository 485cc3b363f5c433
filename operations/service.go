package operations

import (
	"context"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/rest"
	"github.com/evergreen-ci/flightpath/units"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Service returns the ./flightpath service sub-command object, which is
// responsible for starting the REST API and the background cron jobs.
func Service() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "run the flightpath api service",
		Flags: mergeFlags(baseFlags(), dbFlags(
			cli.BoolFlag{
				Name:  "localQueue",
				Usage: "uses a locally-backed queue rather than MongoDB",
			},
			cli.IntFlag{
				Name:   "port, p",
				Usage:  "specify a port to run the service on",
				Value:  3000,
				EnvVar: "FLIGHTPATH_SERVICE_PORT",
			},
			cli.StringFlag{
				Name:  "prefix",
				Usage: "specify a prefix for the service api",
			})...),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			workers := c.Int(numWorkersFlag)
			mongodbURI := c.String(dbURIFlag)
			runLocal := c.Bool("localQueue")
			bucket := c.String(bucketNameFlag)
			dbName := c.String(dbNameFlag)

			sc := newServiceConf(workers, runLocal, mongodbURI, bucket, dbName)
			if err := sc.setup(ctx); err != nil {
				return errors.WithStack(err)
			}

			env := flightpath.GetEnvironment()
			defer func() {
				grip.Warning(errors.Wrap(env.Close(ctx), "problem closing environment"))
			}()

			if err := model.ConfigureIndexes(ctx, env.GetDB()); err != nil {
				return errors.Wrap(err, "problem configuring indexes")
			}

			if err := env.GetLocalQueue().Start(ctx); err != nil {
				return errors.Wrap(err, "problem starting local queue")
			}

			if err := units.StartCrons(ctx, env); err != nil {
				return errors.Wrap(err, "problem starting background jobs")
			}

			service := &rest.Service{
				Port:        c.Int("port"),
				Prefix:      c.String("prefix"),
				Environment: env,
			}
			if err := service.Validate(); err != nil {
				return errors.Wrap(err, "problem validating service")
			}

			grip.Noticef("starting flightpath service on :%d", c.Int("port"))
			if err := service.Start(ctx); err != nil {
				return errors.Wrap(err, "problem running rest service")
			}

			grip.Info("completed service, terminating.")
			return nil
		},
	}
}
