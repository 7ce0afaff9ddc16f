package command

import (
	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/orchestrator"

	"github.com/urfave/cli"
)

type BackupRotateCommand struct {
}

func NewBackupRotateCommand() BackupRotateCommand {
	return BackupRotateCommand{}
}

func (b BackupRotateCommand) Cli() cli.Command {
	return cli.Command{
		Name:   "rotate",
		Usage:  "Rotate existing backups through the daily/weekly/monthly tiers without producing new ones",
		Action: b.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config, c",
				Usage: "Path to the TOML config, defaults to $LABOPS_CONFIG then ./labops.toml",
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log what would happen without touching anything",
			},
		},
	}
}

func (b BackupRotateCommand) Action(c *cli.Context) error {
	trapSigint(false)

	logger := factory.BuildLogger(c.GlobalBool("debug"))

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return redCliError(err)
	}

	rotations, err := factory.BuildRotations(cfg, c.Bool("dry-run"), logger)
	if err != nil {
		return redCliError(err)
	}

	var errs []error
	for _, rotation := range rotations {
		errs = append(errs, rotation.Rotator.Rotate(rotation.CacheDir)...)
	}

	return processError(orchestrator.NewError(errs...))
}
