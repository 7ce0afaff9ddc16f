package command

import (
	"github.com/hoveland/labops/cli/flags"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/mirror"
	"github.com/hoveland/labops/orchestrator"
	"github.com/hoveland/labops/runner"

	"github.com/urfave/cli"
)

type RepoBundleCommand struct {
}

func NewRepoBundleCommand() RepoBundleCommand {
	return RepoBundleCommand{}
}

func (r RepoBundleCommand) Cli() cli.Command {
	return cli.Command{
		Name:   "bundle",
		Usage:  "Cut a .bundle file from every mirror clone",
		Action: r.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "root",
				Usage: "Directory holding the mirror clones",
			},
			cli.StringFlag{
				Name:  "destination",
				Usage: "Directory receiving the bundles",
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log what would happen without writing bundles",
			},
		},
	}
}

func (r RepoBundleCommand) Action(c *cli.Context) error {
	if err := flags.Validate([]string{"root", "destination"}, c); err != nil {
		return err
	}

	logger := factory.BuildLogger(c.GlobalBool("debug"))
	cmdRunner := runner.NewCommandRunner(logger, c.Bool("dry-run"))
	git := runner.NewGit("", cmdRunner)

	bundler := mirror.NewBundler(git, c.String("root"), c.String("destination"), c.Bool("dry-run"), logger)
	return processError(orchestrator.NewError(bundler.BundleAll()...))
}
