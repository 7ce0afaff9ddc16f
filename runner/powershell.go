package runner

import (
	"strings"

	"github.com/pkg/errors"
)

type PowerShell struct {
	exe    string
	runner CommandRunner
}

func NewPowerShell(exe string, runner CommandRunner) PowerShell {
	if exe == "" {
		exe = "powershell.exe"
	}
	return PowerShell{exe: exe, runner: runner}
}

// Run executes a mutating cmdlet pipeline.
func (p PowerShell) Run(script string) error {
	code, err := p.runner.Run(p.exe, "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return errors.Wrap(err, "powershell did not run")
	}
	if ClassifyExit(code) == Failure {
		return errors.Errorf("powershell command failed with exit code %d: %s", code, script)
	}
	return nil
}

// Output executes a read-only cmdlet pipeline and returns its stdout.
func (p PowerShell) Output(script string) (string, error) {
	stdout, code, err := p.runner.Output(p.exe, "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return "", errors.Wrap(err, "powershell did not run")
	}
	if ClassifyExit(code) == Failure {
		return "", errors.Errorf("powershell command failed with exit code %d: %s", code, script)
	}
	return strings.TrimSpace(stdout), nil
}
