package command

import (
	"github.com/hoveland/labops/cli/flags"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/mirror"
	"github.com/hoveland/labops/orchestrator"
	"github.com/hoveland/labops/runner"

	"github.com/urfave/cli"
)

type RepoMirrorCommand struct {
}

func NewRepoMirrorCommand() RepoMirrorCommand {
	return RepoMirrorCommand{}
}

func (r RepoMirrorCommand) Cli() cli.Command {
	return cli.Command{
		Name:   "mirror",
		Usage:  "Mirror-clone the authenticated account's repositories and keep them fresh",
		Action: r.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "root",
				Usage: "Directory holding the mirror clones",
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log what would happen without cloning or deleting",
			},
		},
	}
}

func (r RepoMirrorCommand) Action(c *cli.Context) error {
	if err := flags.Validate([]string{"root"}, c); err != nil {
		return err
	}

	logger := factory.BuildLogger(c.GlobalBool("debug"))
	cmdRunner := runner.NewCommandRunner(logger, c.Bool("dry-run"))
	git := runner.NewGit("", cmdRunner)
	gh := runner.NewGh("", cmdRunner)

	syncer := mirror.NewSyncer(git, gh, c.String("root"), c.Bool("dry-run"), logger)
	return processError(orchestrator.NewError(syncer.SyncAll()...))
}
