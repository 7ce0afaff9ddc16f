package command

import (
	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/orchestrator"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"
)

type BackupRunCommand struct {
}

func NewBackupRunCommand() BackupRunCommand {
	return BackupRunCommand{}
}

func (b BackupRunCommand) Cli() cli.Command {
	return cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the configured backup jobs",
		Action:  b.Action,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config, c",
				Usage: "Path to the TOML config, defaults to $LABOPS_CONFIG then ./labops.toml",
			},
			cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log what would happen without touching anything",
			},
			cli.BoolFlag{
				Name:  "parallel",
				Usage: "Run jobs within a batch concurrently",
			},
			cli.StringFlag{
				Name:  "schedule",
				Usage: "Keep running on this cron schedule instead of once",
			},
		},
	}
}

func (b BackupRunCommand) Action(c *cli.Context) error {
	trapSigint(true)

	logger := factory.BuildLogger(c.GlobalBool("debug"))

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return redCliError(err)
	}

	runOnce := func() orchestrator.Error {
		jobs, err := factory.BuildBackupJobs(cfg, c.Bool("dry-run"), logger)
		if err != nil {
			return orchestrator.NewError(err)
		}
		return factory.BuildBackupRunner(c.Bool("parallel"), logger).Run(jobs)
	}

	if spec := c.String("schedule"); spec != "" {
		return runOnSchedule(spec, logger, runOnce)
	}

	backupErr := runOnce()

	errorCode, errorMessage, errorWithStackTrace := orchestrator.ProcessError(backupErr)
	if err := writeStackTrace(errorWithStackTrace); err != nil {
		return errors.Wrap(backupErr, err.Error())
	}

	if backupErr.ContainsCleanup() {
		errorMessage = errorMessage + "\n" + backupCleanupAdvisedNotice
	}

	return cli.NewExitError(errorMessage, errorCode)
}

// runOnSchedule blocks in the foreground and fires the backup on the given
// cron expression. Scheduled failures are logged, not fatal; the next run
// gets another shot.
func runOnSchedule(spec string, logger boshlog.Logger, run func() orchestrator.Error) error {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(spec, func() {
		if err := run(); err != nil {
			logger.Error("backup", "scheduled run reported problems: %s", err.Error())
		}
	})
	if err != nil {
		return redCliError(errors.Wrapf(err, "invalid schedule %q", spec))
	}

	logger.Info("backup", "running on schedule %q, Ctrl-C to stop", spec)
	scheduler.Run()
	return nil
}
