package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoveland/labops/orchestrator"
	"github.com/hoveland/labops/writer"

	"github.com/pkg/errors"
)

type Bundler struct {
	git         GitRunner
	root        string
	destination string
	dryRun      bool
	logger      Logger
}

func NewBundler(git GitRunner, root, destination string, dryRun bool, logger Logger) Bundler {
	return Bundler{git: git, root: root, destination: destination, dryRun: dryRun, logger: logger}
}

// BundleAll writes one .bundle per mirror clone under root into the
// destination directory. Bundles are produced in a temp directory first and
// moved over only when git succeeded, so a half-written bundle never lands
// next to good ones. A temp directory left behind surfaces as a cleanup
// error, not a failed backup.
func (b Bundler) BundleAll() (errs []error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return []error{errors.Wrapf(err, "failed to list %s", b.root)}
	}

	tmpDir := ""
	if !b.dryRun {
		tmpDir, err = os.MkdirTemp("", "labops-bundles-")
		if err != nil {
			return []error{errors.Wrap(err, "failed to create temp directory")}
		}
		defer func() {
			if err := os.RemoveAll(tmpDir); err != nil {
				errs = append(errs, orchestrator.NewCleanupError("failed to remove temp directory %s: %s", tmpDir, err))
			}
		}()
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".git") {
			continue
		}

		repoDir := filepath.Join(b.root, entry.Name())
		if !b.isMirror(repoDir) {
			b.logger.Warn(tag, "%s is not a verified mirror, skipping bundle", repoDir)
			continue
		}

		if err := b.bundleOne(entry.Name(), repoDir, tmpDir); err != nil {
			b.logger.Error(tag, "failed to bundle %s: %v", entry.Name(), err)
			errs = append(errs, err)
		}
	}

	return errs
}

func (b Bundler) bundleOne(name, repoDir, tmpDir string) error {
	bundleName := strings.TrimSuffix(name, ".git") + ".bundle"

	if b.dryRun {
		b.logger.Info(tag, "dry-run: would bundle %s into %s", repoDir, filepath.Join(b.destination, bundleName))
		return nil
	}

	tmpPath := filepath.Join(tmpDir, bundleName)
	if err := b.git.CreateBundle(repoDir, tmpPath); err != nil {
		return err
	}

	b.logger.Info(tag, "bundled %s", name)
	return b.moveFile(tmpPath, filepath.Join(b.destination, bundleName))
}

func (b Bundler) isMirror(dir string) bool {
	value, err := b.git.ConfigValue(dir, "remote.origin.mirror")
	return err == nil && value == "true"
}

func (b Bundler) moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// temp and destination often sit on different filesystems
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "failed to move %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to move %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}

	percentageMessage := fmt.Sprintf("copying %s -- %%d%%%% complete", filepath.Base(src))
	progress := writer.NewLogPercentageWriter(out, b.logger, int(info.Size()), tag, percentageMessage)
	if _, err := io.Copy(progress, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s to %s", src, dst)
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
