package orchestrator

import (
	"path/filepath"
	"sync"

	"github.com/hoveland/labops/config"
	"github.com/hoveland/labops/runner"
)

const tag = "backup"

// Mirrorer, Archiver and ParityWriter are the slices of the runner tool
// wrappers the jobs need.
type Mirrorer interface {
	Mirror(source, destination string) (runner.Outcome, error)
}

type Archiver interface {
	Archive(source, archivePath string) (runner.Outcome, error)
}

type ParityWriter interface {
	Create(file string) (runner.Outcome, error)
}

type Rotator interface {
	Rotate(cacheDir string) []error
}

type RepoSyncer interface {
	SyncAll() []error
}

type RepoBundler interface {
	BundleAll() []error
}

// TargetBackup carries per-target state across job batches: SMB replication
// is skipped once any local drive copy of the target failed. Local jobs of
// one target may run concurrently, hence the mutex.
type TargetBackup struct {
	Target config.Target

	mu          sync.Mutex
	localFailed bool
}

func NewTargetBackup(target config.Target) *TargetBackup {
	return &TargetBackup{Target: target}
}

func (t *TargetBackup) markLocalFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.localFailed = true
}

func (t *TargetBackup) LocalFailed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localFailed
}

// LocalDriveJob mirrors a target's source onto one local backup drive.
type LocalDriveJob struct {
	backup   *TargetBackup
	drive    string
	mirrorer Mirrorer
	logger   Logger
}

func NewLocalDriveJob(backup *TargetBackup, drive string, mirrorer Mirrorer, logger Logger) LocalDriveJob {
	return LocalDriveJob{backup: backup, drive: drive, mirrorer: mirrorer, logger: logger}
}

func (j LocalDriveJob) Execute() error {
	destination := filepath.Join(j.drive, j.backup.Target.Destination)
	j.logger.Info(tag, "mirroring %s to %s", j.backup.Target.Name, destination)

	outcome, err := j.mirrorer.Mirror(j.backup.Target.Source, destination)
	if err != nil {
		j.backup.markLocalFailure()
		return NewToolError("failed to mirror %s to %s: %v", j.backup.Target.Name, destination, err)
	}
	if outcome == runner.SuccessWithWarnings {
		return NewToolWarning("mirroring %s to %s finished with warnings", j.backup.Target.Name, destination)
	}

	return nil
}

// SmbShareJob replicates a target onto a network share. It refuses to run
// when a local copy of the same target already failed, so a half-written
// local state never spreads onto the share.
type SmbShareJob struct {
	backup   *TargetBackup
	share    string
	mirrorer Mirrorer
	logger   Logger
}

func NewSmbShareJob(backup *TargetBackup, share string, mirrorer Mirrorer, logger Logger) SmbShareJob {
	return SmbShareJob{backup: backup, share: share, mirrorer: mirrorer, logger: logger}
}

func (j SmbShareJob) Execute() error {
	if j.backup.LocalFailed() {
		j.logger.Warn(tag, "skipping replication of %s to %s, a local copy failed", j.backup.Target.Name, j.share)
		return nil
	}

	destination := filepath.Join(j.share, j.backup.Target.Destination)
	j.logger.Info(tag, "replicating %s to %s", j.backup.Target.Name, destination)

	outcome, err := j.mirrorer.Mirror(j.backup.Target.Source, destination)
	if err != nil {
		return NewToolError("failed to replicate %s to %s: %v", j.backup.Target.Name, destination, err)
	}
	if outcome == runner.SuccessWithWarnings {
		return NewToolWarning("replicating %s to %s finished with warnings", j.backup.Target.Name, destination)
	}

	return nil
}

// ArchiveJob produces a compressed archive of a target with a parity sidecar
// in the cache folder of one backup root, then rotates the cache into the
// dated tiers.
type ArchiveJob struct {
	backup   *TargetBackup
	root     string
	archiver Archiver
	parity   ParityWriter
	rotator  Rotator
	logger   Logger
}

func NewArchiveJob(backup *TargetBackup, root string, archiver Archiver, parity ParityWriter, rotator Rotator, logger Logger) ArchiveJob {
	return ArchiveJob{backup: backup, root: root, archiver: archiver, parity: parity, rotator: rotator, logger: logger}
}

// CacheDir is where fresh archives land before rotation stages them.
func (j ArchiveJob) CacheDir() string {
	return filepath.Join(j.root, "cache")
}

func (j ArchiveJob) Execute() error {
	archivePath := filepath.Join(j.CacheDir(), j.backup.Target.Name+".7z")
	j.logger.Info(tag, "archiving %s to %s", j.backup.Target.Name, archivePath)

	if _, err := j.archiver.Archive(j.backup.Target.Source, archivePath); err != nil {
		return NewToolError("failed to archive %s: %v", j.backup.Target.Name, err)
	}

	if _, err := j.parity.Create(archivePath); err != nil {
		return NewToolError("failed to create parity for %s: %v", archivePath, err)
	}

	if errs := j.rotator.Rotate(j.CacheDir()); len(errs) > 0 {
		return NewError(errs...)
	}

	return nil
}

// MirrorCloneJob refreshes the local mirror clones of the account's
// repositories.
type MirrorCloneJob struct {
	syncer RepoSyncer
	logger Logger
}

func NewMirrorCloneJob(syncer RepoSyncer, logger Logger) MirrorCloneJob {
	return MirrorCloneJob{syncer: syncer, logger: logger}
}

func (j MirrorCloneJob) Execute() error {
	j.logger.Info(tag, "syncing repository mirrors")
	return ConvertErrors(j.syncer.SyncAll())
}

// GitBundleJob cuts bundle files from the mirror clones.
type GitBundleJob struct {
	bundler RepoBundler
	logger  Logger
}

func NewGitBundleJob(bundler RepoBundler, logger Logger) GitBundleJob {
	return GitBundleJob{bundler: bundler, logger: logger}
}

func (j GitBundleJob) Execute() error {
	j.logger.Info(tag, "bundling repository mirrors")
	return ConvertErrors(j.bundler.BundleAll())
}
