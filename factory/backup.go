package factory

import (
	"path/filepath"

	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/executor"
	"github.com/hoveland/labops/mirror"
	"github.com/hoveland/labops/orchestrator"
	"github.com/hoveland/labops/rotation"
	"github.com/hoveland/labops/runner"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
)

func BuildBackupRunner(parallel bool, logger boshlog.Logger) orchestrator.BackupRunner {
	var exec executor.Executor = executor.NewSerialExecutor()
	if parallel {
		exec = executor.NewParallelExecutor()
	}
	return orchestrator.NewBackupRunner(exec, logger)
}

// BuildBackupJobs turns the configuration into ordered job batches: local
// drive copies first, SMB replication second, archive pipelines third,
// repository mirrors and bundles last.
func BuildBackupJobs(cfg config.Config, dryRun bool, logger boshlog.Logger) ([][]executor.Executable, error) {
	strategy, err := buildStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	cmdRunner := runner.NewCommandRunner(logger, dryRun)
	robocopy := runner.NewRobocopy(cfg.Handlers.Robocopy.Exe, cfg.Handlers.Robocopy.Options, cmdRunner)
	sevenZip := runner.NewSevenZip(cfg.Handlers.SevenZip.Exe, cfg.Handlers.SevenZip.Options, cfg.Handlers.SevenZip.VolumeSize, cmdRunner)
	multiPar := runner.NewMultiPar(cfg.Handlers.MultiPar.Exe, cfg.Handlers.MultiPar.Options, cfg.Handlers.MultiPar.RedundancyRate, cmdRunner)
	git := runner.NewGit("", cmdRunner)
	gh := runner.NewGh("", cmdRunner)

	var locals, shares, archives, repos []executor.Executable

	for _, target := range cfg.Targets {
		backup := orchestrator.NewTargetBackup(target)

		for _, drive := range cfg.Destinations.LocalDrives {
			locals = append(locals, orchestrator.NewLocalDriveJob(backup, drive, robocopy, logger))

			root := filepath.Join(drive, target.Destination)
			rotator := rotation.NewRotator(root, strategy, dryRun, logger)
			archives = append(archives, orchestrator.NewArchiveJob(backup, root, sevenZip, multiPar, rotator, logger))
		}

		for _, share := range cfg.Destinations.SmbShares {
			shares = append(shares, orchestrator.NewSmbShareJob(backup, share, robocopy, logger))
		}
	}

	for _, clone := range cfg.Destinations.MirrorClones {
		syncer := mirror.NewSyncer(git, gh, clone.Root, dryRun, logger)
		repos = append(repos, orchestrator.NewMirrorCloneJob(syncer, logger))
	}

	for _, bundle := range cfg.Destinations.GitBundles {
		bundler := mirror.NewBundler(git, bundle.Root, bundle.Destination, dryRun, logger)
		repos = append(repos, orchestrator.NewGitBundleJob(bundler, logger))
	}

	return [][]executor.Executable{locals, shares, archives, repos}, nil
}

// Rotation pairs a rotator with the cache directory it stages from, one per
// target per drive.
type Rotation struct {
	Rotator  *rotation.Rotator
	CacheDir string
}

func BuildRotations(cfg config.Config, dryRun bool, logger boshlog.Logger) ([]Rotation, error) {
	strategy, err := buildStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	var rotations []Rotation
	for _, target := range cfg.Targets {
		for _, drive := range cfg.Destinations.LocalDrives {
			root := filepath.Join(drive, target.Destination)
			rotations = append(rotations, Rotation{
				Rotator:  rotation.NewRotator(root, strategy, dryRun, logger),
				CacheDir: filepath.Join(root, "cache"),
			})
		}
	}

	return rotations, nil
}

func buildStrategy(s config.Strategy) (rotation.Strategy, error) {
	day, err := s.PromotionDay()
	if err != nil {
		return rotation.Strategy{}, err
	}

	return rotation.Strategy{
		DailyLimit:   s.NumberOfDailyBackups,
		WeeklyLimit:  s.NumberOfWeeklyBackups,
		MonthlyLimit: s.NumberOfMonthlyBackups,
		PromotionDay: day,
	}, nil
}
