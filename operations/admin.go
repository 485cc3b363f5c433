package operations

import (
	"context"

	"github.com/evergreen-ci/flightpath"
	"github.com/evergreen-ci/flightpath/model"
	"github.com/evergreen-ci/flightpath/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Admin returns the ./flightpath admin command, which manages a deployed
// flightpath application.
func Admin() cli.Command {
	return cli.Command{
		Name:  "admin",
		Usage: "manage a deployed flightpath application",
		Subcommands: []cli.Command{
			{
				Name:  "conf",
				Usage: "flightpath application configuration",
				Subcommands: []cli.Command{
					loadFlightpathConfig(),
					dumpFlightpathConfig(),
				},
			},
			{
				Name:  "flags",
				Usage: "manage flightpath feature flags",
				Subcommands: []cli.Command{
					setFeatureFlag(),
					unsetFeatureFlag(),
				},
			},
		},
	}
}

// adminSetup builds a database-only environment for administrative
// operations.
func adminSetup(ctx context.Context, c *cli.Context) (flightpath.Environment, error) {
	sc := newServiceConf(2, true, c.String(dbURIFlag), "", c.String(dbNameFlag))
	if err := sc.setup(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	return flightpath.GetEnvironment(), nil
}

func dumpFlightpathConfig() cli.Command {
	return cli.Command{
		Name:   "dump-config",
		Usage:  "write current flightpath application configuration to a file",
		Flags:  dbFlags(addOutputPath()...),
		Before: requireStringFlag(outputFlagName),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := adminSetup(ctx, c)
			if err != nil {
				return errors.WithStack(err)
			}

			conf := model.NewFlightpathConfig(env)
			if err = conf.Find(); err != nil {
				return errors.WithStack(err)
			}

			return errors.WithStack(util.WriteJSON(c.String(outputFlagName), conf))
		},
	}
}

func loadFlightpathConfig() cli.Command {
	return cli.Command{
		Name:  "load-config",
		Usage: "loads flightpath application configuration from a file",
		Flags: dbFlags(
			cli.StringFlag{
				Name:  pathFlagName,
				Usage: "specify path to a flightpath application config file",
			}),
		Before: mergeBeforeFuncs(requireStringFlag(pathFlagName), requireFileExists(pathFlagName)),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := adminSetup(ctx, c)
			if err != nil {
				return errors.WithStack(err)
			}

			conf, err := model.LoadFlightpathConfig(c.String(pathFlagName))
			if err != nil {
				return errors.WithStack(err)
			}
			conf.Setup(env)

			if err = conf.Save(); err != nil {
				return errors.WithStack(err)
			}

			grip.Infoln("successfully saved application configuration to database at:", c.String(dbURIFlag))
			return nil
		},
	}
}

func setFeatureFlag() cli.Command {
	return cli.Command{
		Name:   "set",
		Usage:  "set a named feature flag",
		Flags:  dbFlags(addModifyFeatureFlagFlags()...),
		Before: mergeBeforeFuncs(setFlagOrFirstPositional(flagNameFlag), requireStringFlag(flagNameFlag)),
		Action: func(c *cli.Context) error {
			return errors.WithStack(modifyFeatureFlag(c, true))
		},
	}
}

func unsetFeatureFlag() cli.Command {
	return cli.Command{
		Name:   "unset",
		Usage:  "unset a named feature flag",
		Flags:  dbFlags(addModifyFeatureFlagFlags()...),
		Before: mergeBeforeFuncs(setFlagOrFirstPositional(flagNameFlag), requireStringFlag(flagNameFlag)),
		Action: func(c *cli.Context) error {
			return errors.WithStack(modifyFeatureFlag(c, false))
		},
	}
}

func modifyFeatureFlag(c *cli.Context, value bool) error {
	flag := c.String(flagNameFlag)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := adminSetup(ctx, c)
	if err != nil {
		return errors.WithStack(err)
	}

	conf := model.NewFlightpathConfig(env)
	if err = conf.Find(); err != nil {
		return errors.WithStack(err)
	}

	if value {
		err = conf.Flags.SetTrue(flag)
	} else {
		err = conf.Flags.SetFalse(flag)
	}
	if err != nil {
		return errors.Wrapf(err, "problem setting flag '%s' to %t", flag, value)
	}

	grip.Infof("successfully set '%s' to '%t'", flag, value)
	return nil
}
