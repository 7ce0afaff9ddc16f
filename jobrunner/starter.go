// Package jobrunner starts a self-hosted CI job-runner executable on a
// remote host over SSH and confirms it stayed up.
package jobrunner

import (
	"path"
	"time"

	"github.com/hoveland/labops/ssh"

	"github.com/pkg/errors"
)

const tag = "jobrunner"

const (
	defaultCheckAttempts = 5
	defaultCheckInterval = time.Second
)

type Logger interface {
	Debug(tag, msg string, args ...interface{})
	Info(tag, msg string, args ...interface{})
	Warn(tag, msg string, args ...interface{})
	Error(tag, msg string, args ...interface{})
}

type Starter struct {
	runner        ssh.RemoteRunner
	dryRun        bool
	logger        Logger
	checkAttempts int
	checkInterval time.Duration
}

func NewStarter(runner ssh.RemoteRunner, dryRun bool, logger Logger) Starter {
	return Starter{
		runner:        runner,
		dryRun:        dryRun,
		logger:        logger,
		checkAttempts: defaultCheckAttempts,
		checkInterval: defaultCheckInterval,
	}
}

func (s Starter) WithCheckPolicy(attempts int, interval time.Duration) Starter {
	s.checkAttempts = attempts
	s.checkInterval = interval
	return s
}

// Start launches exe detached on the connected host unless a process
// matching it is already running, then polls until it shows up in the
// process table. A runner that exits immediately comes back as an error.
func (s Starter) Start(exe string) error {
	if exe == "" {
		return errors.New("a runner executable path is required")
	}

	pattern := path.Base(exe)

	running, err := s.runner.ProcessRunning(pattern)
	if err != nil {
		return errors.Wrapf(err, "failed to check for a running %s on %s", pattern, s.runner.ConnectedHost())
	}
	if running {
		s.logger.Info(tag, "%s is already running on %s", pattern, s.runner.ConnectedHost())
		return nil
	}

	if s.dryRun {
		s.logger.Info(tag, "dry-run: would start %s on %s", exe, s.runner.ConnectedHost())
		return nil
	}

	s.logger.Info(tag, "starting %s on %s", exe, s.runner.ConnectedHost())
	if err := s.runner.RunDetached(exe, "job runner"); err != nil {
		return errors.Wrapf(err, "failed to start %s", exe)
	}

	for attempt := 1; attempt <= s.checkAttempts; attempt++ {
		running, err := s.runner.ProcessRunning(pattern)
		if err != nil {
			return errors.Wrap(err, "failed to verify the runner started")
		}
		if running {
			s.logger.Info(tag, "%s is up on %s", pattern, s.runner.ConnectedHost())
			return nil
		}

		s.logger.Debug(tag, "waiting for %s to appear (attempt %d/%d)", pattern, attempt, s.checkAttempts)
		time.Sleep(s.checkInterval)
	}

	return errors.Errorf("%s did not stay running on %s", exe, s.runner.ConnectedHost())
}
