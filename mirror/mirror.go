// Package mirror keeps local mirror clones of the account's repositories
// and cuts point-in-time bundle files from them. git and gh do the real
// work; anything that looks corrupted is re-cloned, never repaired.
package mirror

import (
	"os"
	"path/filepath"

	"github.com/hoveland/labops/runner"

	"github.com/pkg/errors"
)

const tag = "mirror"

type Logger interface {
	Debug(tag, msg string, args ...interface{})
	Info(tag, msg string, args ...interface{})
	Warn(tag, msg string, args ...interface{})
	Error(tag, msg string, args ...interface{})
}

type GitRunner interface {
	ConfigValue(repoDir, key string) (string, error)
	CloneMirror(url, dir string) error
	RemoteUpdate(repoDir string) error
	CreateBundle(repoDir, bundlePath string) error
}

type RepoLister interface {
	ListOwnedRepos() ([]runner.Repo, error)
}

type Syncer struct {
	git    GitRunner
	lister RepoLister
	root   string
	dryRun bool
	logger Logger
}

func NewSyncer(git GitRunner, lister RepoLister, root string, dryRun bool, logger Logger) Syncer {
	return Syncer{git: git, lister: lister, root: root, dryRun: dryRun, logger: logger}
}

// SyncAll brings the mirror directory in line with the authenticated
// account: missing repositories are cloned, healthy mirrors fetched,
// anything suspicious deleted and cloned fresh. One broken repository does
// not stop the others.
func (s Syncer) SyncAll() []error {
	repos, err := s.lister.ListOwnedRepos()
	if err != nil {
		return []error{errors.Wrap(err, "failed to list repositories")}
	}

	var errs []error
	for _, repo := range repos {
		if err := s.syncOne(repo); err != nil {
			s.logger.Error(tag, "failed to sync %s: %v", repo.Name, err)
			errs = append(errs, err)
		}
	}

	return errs
}

func (s Syncer) syncOne(repo runner.Repo) error {
	dir := filepath.Join(s.root, repo.Name+".git")
	url := cloneURL(repo)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		s.logger.Info(tag, "cloning new mirror of %s", repo.Name)
		return s.git.CloneMirror(url, dir)
	}

	if s.Verified(dir, url) {
		s.logger.Debug(tag, "updating mirror of %s", repo.Name)
		return s.git.RemoteUpdate(dir)
	}

	s.logger.Warn(tag, "%s is not a healthy mirror, re-cloning", dir)
	if s.dryRun {
		s.logger.Info(tag, "dry-run: would remove and re-clone %s", dir)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "failed to remove %s", dir)
	}
	return s.git.CloneMirror(url, dir)
}

// Verified reports whether dir is a mirror clone pointing at the expected
// origin. Unreadable config counts as corruption.
func (s Syncer) Verified(dir, expectedURL string) bool {
	mirrorFlag, err := s.git.ConfigValue(dir, "remote.origin.mirror")
	if err != nil || mirrorFlag != "true" {
		return false
	}

	url, err := s.git.ConfigValue(dir, "remote.origin.url")
	return err == nil && url == expectedURL
}

func cloneURL(repo runner.Repo) string {
	if repo.SSHURL != "" {
		return repo.SSHURL
	}
	return repo.URL
}
