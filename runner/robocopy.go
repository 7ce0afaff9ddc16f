package runner

import (
	"github.com/pkg/errors"
)

type Robocopy struct {
	exe     string
	options []string
	runner  CommandRunner
}

func NewRobocopy(exe string, options []string, runner CommandRunner) Robocopy {
	if exe == "" {
		exe = "robocopy.exe"
	}
	return Robocopy{exe: exe, options: options, runner: runner}
}

// Mirror copies source to destination with the configured options. Robocopy
// flags use the "/" prefix.
func (r Robocopy) Mirror(source, destination string) (Outcome, error) {
	args := append([]string{source, destination}, NormalizeOptions(r.options, "/")...)

	code, err := r.runner.Run(r.exe, args...)
	if err != nil {
		return Failure, errors.Wrap(err, "robocopy did not run")
	}

	outcome := ClassifyRobocopyExit(code)
	if outcome == Failure {
		return Failure, errors.Errorf("robocopy %s -> %s failed with exit code %d", source, destination, code)
	}

	return outcome, nil
}
