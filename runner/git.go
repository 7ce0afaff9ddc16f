package runner

import (
	"strings"

	"github.com/pkg/errors"
)

type Git struct {
	exe    string
	runner CommandRunner
}

func NewGit(exe string, runner CommandRunner) Git {
	if exe == "" {
		exe = "git"
	}
	return Git{exe: exe, runner: runner}
}

// ConfigValue reads a config key from a repository. A missing key is not an
// error, it just reads as empty.
func (g Git) ConfigValue(repoDir, key string) (string, error) {
	stdout, code, err := g.runner.Output(g.exe, "-C", repoDir, "config", "--get", key)
	if err != nil {
		return "", errors.Wrapf(err, "git did not run in %s", repoDir)
	}

	// git config exits 1 when the key is unset
	if code == 1 {
		return "", nil
	}
	if ClassifyExit(code) == Failure {
		return "", errors.Errorf("git config --get %s failed in %s with exit code %d", key, repoDir, code)
	}

	return strings.TrimSpace(stdout), nil
}

func (g Git) CloneMirror(url, dir string) error {
	code, err := g.runner.Run(g.exe, "clone", "--mirror", url, dir)
	if err != nil {
		return errors.Wrap(err, "git did not run")
	}
	if ClassifyExit(code) == Failure {
		return errors.Errorf("git clone --mirror %s failed with exit code %d", url, code)
	}
	return nil
}

func (g Git) RemoteUpdate(repoDir string) error {
	code, err := g.runner.Run(g.exe, "-C", repoDir, "remote", "update", "--prune")
	if err != nil {
		return errors.Wrapf(err, "git did not run in %s", repoDir)
	}
	if ClassifyExit(code) == Failure {
		return errors.Errorf("git remote update failed in %s with exit code %d", repoDir, code)
	}
	return nil
}

func (g Git) CreateBundle(repoDir, bundlePath string) error {
	code, err := g.runner.Run(g.exe, "-C", repoDir, "bundle", "create", bundlePath, "--all")
	if err != nil {
		return errors.Wrapf(err, "git did not run in %s", repoDir)
	}
	if ClassifyExit(code) == Failure {
		return errors.Errorf("git bundle create failed in %s with exit code %d", repoDir, code)
	}
	return nil
}
