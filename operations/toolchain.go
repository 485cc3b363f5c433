package operations

import (
	"context"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/jasper"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	pythonFlagName = "python"

	defaultViewerScript = "src/data_generator.py"

	// the viewer emits benign runtime warnings from its numeric
	// internals, so they are suppressed for interactive runs.
	viewerWarningsFilter = "ignore::RuntimeWarning"
)

// pinnedToolchainPackages are the python packages, at known-good
// versions, required by the visualization toolchain.
var pinnedToolchainPackages = []string{
	"numpy==1.26.4",
	"scipy==1.14.1",
	"PyQt5==5.15.11",
	"pyqtgraph==0.13.7",
	"PyOpenGL==3.1.7",
}

const toolchainProbeScript = `import numpy, scipy, PyQt5, pyqtgraph, OpenGL
print('numpy', numpy.__version__)
print('scipy', scipy.__version__)
print('pyqtgraph', pyqtgraph.__version__)
print('toolchain ok')`

// Toolchain returns the ./flightpath toolchain command, which manages the
// python environment used by the route visualization tools.
func Toolchain() cli.Command {
	return cli.Command{
		Name:  "toolchain",
		Usage: "manage the python visualization toolchain",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   pythonFlagName,
				Usage:  "path to the python interpreter",
				Value:  "python3",
				EnvVar: "FLIGHTPATH_PYTHON",
			},
		},
		Subcommands: []cli.Command{
			installToolchain(),
			toolchainDoctor(),
			runViewer(),
		},
	}
}

func makeProcessManager() (jasper.Manager, error) {
	jpm, err := jasper.NewSynchronizedManager(false)
	if err != nil {
		return nil, errors.Wrap(err, "problem constructing process manager")
	}

	return jpm, nil
}

func installToolchain() cli.Command {
	return cli.Command{
		Name:  "install",
		Usage: "install the pinned python packages for the visualization toolchain",
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			jpm, err := makeProcessManager()
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() {
				grip.Warning(errors.Wrap(jpm.Close(ctx), "problem closing process manager"))
			}()

			python := c.Parent().String(pythonFlagName)
			sender := grip.GetSender()

			cmd := jpm.CreateCommand(ctx).
				SetOutputSender(level.Info, sender).
				SetErrorSender(level.Error, sender).
				Add([]string{python, "-m", "pip", "install", "--upgrade", "pip"})
			for _, pkg := range pinnedToolchainPackages {
				cmd.Add([]string{python, "-m", "pip", "install", pkg})
			}
			// installer and probe failures are surfaced in the log
			// but do not fail the command; the packages that did
			// install remain usable.
			grip.Warning(message.WrapError(cmd.Run(ctx), message.Fields{
				"message": "problem installing toolchain packages",
				"python":  python,
			}))

			// the accelerator is a best-effort optimization and has
			// no wheels on some platforms
			grip.Warning(message.WrapError(jpm.CreateCommand(ctx).
				SetOutputSender(level.Info, sender).
				SetErrorSender(level.Error, sender).
				Add([]string{python, "-m", "pip", "install", "PyOpenGL_accelerate"}).
				Run(ctx), message.Fields{
				"message": "could not install optional OpenGL accelerator",
				"python":  python,
			}))

			grip.Warning(message.WrapError(probeToolchain(ctx, jpm, python), message.Fields{
				"message": "toolchain verification failed",
				"python":  python,
			}))

			grip.Info("toolchain installation finished")
			return nil
		},
	}
}

func toolchainDoctor() cli.Command {
	return cli.Command{
		Name:  "doctor",
		Usage: "verify that the visualization toolchain imports cleanly",
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			jpm, err := makeProcessManager()
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() {
				grip.Warning(errors.Wrap(jpm.Close(ctx), "problem closing process manager"))
			}()

			return errors.Wrap(probeToolchain(ctx, jpm, c.Parent().String(pythonFlagName)),
				"toolchain is not usable")
		},
	}
}

func probeToolchain(ctx context.Context, jpm jasper.Manager, python string) error {
	sender := grip.GetSender()

	return jpm.CreateCommand(ctx).
		SetOutputSender(level.Info, sender).
		SetErrorSender(level.Error, sender).
		Add([]string{python, "-c", toolchainProbeScript}).
		Run(ctx)
}

func runViewer() cli.Command {
	return cli.Command{
		Name:  "viewer",
		Usage: "launch the interactive route viewer",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  pathFlagName,
				Usage: "path to the viewer entry point",
				Value: defaultViewerScript,
			},
		},
		Before: requireFileExists(pathFlagName),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			jpm, err := makeProcessManager()
			if err != nil {
				return errors.WithStack(err)
			}
			defer func() {
				grip.Warning(errors.Wrap(jpm.Close(ctx), "problem closing process manager"))
			}()

			python := c.Parent().String(pythonFlagName)
			script := c.String(pathFlagName)
			sender := grip.GetSender()

			grip.Infof("launching viewer '%s'", script)
			grip.Warning(message.WrapError(jpm.CreateCommand(ctx).
				AddEnv("PYTHONWARNINGS", viewerWarningsFilter).
				SetOutputSender(level.Info, sender).
				SetErrorSender(level.Error, sender).
				Add([]string{python, script}).
				Run(ctx), message.Fields{
				"message": "viewer exited with an error",
				"script":  script,
			}))

			grip.Info("viewer session finished")
			return nil
		},
	}
}
