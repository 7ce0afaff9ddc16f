package command

import (
	"os"

	"github.com/hoveland/labops/cli/flags"
	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/jobrunner"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

type RunnerStartCommand struct {
}

func NewRunnerStartCommand() RunnerStartCommand {
	return RunnerStartCommand{}
}

func (r RunnerStartCommand) Cli() cli.Command {
	return cli.Command{
		Name:   "start",
		Usage:  "Start the CI job runner on a remote host unless it is already up",
		Action: r.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "host",
				Usage: "Host running the job runner",
			},
			cli.StringFlag{
				Name:  "user, u",
				Usage: "SSH username",
			},
			cli.StringFlag{
				Name:  "key, k",
				Usage: "Path to the SSH private key",
			},
			cli.StringFlag{
				Name:  "known-hosts",
				Usage: "Path to a known_hosts file, empty skips host key checks",
			},
			cli.StringFlag{
				Name:  "exe",
				Usage: "Runner executable on the remote host, defaults to $" + config.EnvRunnerExe,
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Only check whether the runner is up",
			},
		},
	}
}

func (r RunnerStartCommand) Action(c *cli.Context) error {
	if err := flags.Validate([]string{"host", "user", "key"}, c); err != nil {
		return err
	}

	exe := c.String("exe")
	if exe == "" {
		exe = os.Getenv(config.EnvRunnerExe)
	}
	if exe == "" {
		return redCliError(errors.Errorf("--exe flag or %s is required.", config.EnvRunnerExe))
	}

	logger := factory.BuildLogger(c.GlobalBool("debug"))

	remote, err := factory.BuildRemoteRunner(c.String("host"), c.String("user"), c.String("key"), c.String("known-hosts"), logger)
	if err != nil {
		return redCliError(err)
	}

	starter := jobrunner.NewStarter(remote, c.Bool("dry-run"), logger)
	if err := starter.Start(exe); err != nil {
		return redCliError(err)
	}

	return nil
}
