package runner

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// CommandRunner shells out to external tools. It has no retry and no timeout;
// the heavy lifting is the tool's job, ours is to hand back the exit code.
type CommandRunner struct {
	logger Logger
	dryRun bool
}

func NewCommandRunner(logger Logger, dryRun bool) CommandRunner {
	return CommandRunner{logger: logger, dryRun: dryRun}
}

// Run executes a mutating command. In dry-run mode it only logs what it
// would have run and reports exit code zero.
func (r CommandRunner) Run(name string, args ...string) (int, error) {
	if r.dryRun {
		r.logger.Info("labops", "dry-run: would run %s %s", name, strings.Join(args, " "))
		return 0, nil
	}

	return r.execute(name, args...)
}

// Output executes a read-only query command and returns its stdout. Queries
// run even in dry-run mode.
func (r CommandRunner) Output(name string, args ...string) (string, int, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	r.logOutput(name, stdout.String(), stderr.String())

	code, err := exitCode(err)
	if err != nil {
		return "", -1, errors.Wrapf(err, "failed to run %s", name)
	}

	return stdout.String(), code, nil
}

func (r CommandRunner) execute(name string, args ...string) (int, error) {
	r.logger.Debug("labops", "running %s %s", name, strings.Join(args, " "))

	var stdout, stderr bytes.Buffer

	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	r.logOutput(name, stdout.String(), stderr.String())

	code, err := exitCode(err)
	if err != nil {
		return -1, errors.Wrapf(err, "failed to run %s", name)
	}

	return code, nil
}

func (r CommandRunner) logOutput(name, stdout, stderr string) {
	if strings.TrimSpace(stdout) != "" {
		r.logger.Debug("labops", "[%s] stdout: %s", name, stdout)
	}
	if strings.TrimSpace(stderr) != "" {
		r.logger.Debug("labops", "[%s] stderr: %s", name, stderr)
	}
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// NormalizeOptions rewrites caller-supplied tool options so that every one
// carries the prefix the tool expects, regardless of how it was written in
// the configuration ("MIR", "/MIR" and "-MIR" all normalize the same way).
func NormalizeOptions(options []string, prefix string) []string {
	normalized := make([]string, 0, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		trimmed := strings.TrimLeft(option, "/-")
		normalized = append(normalized, prefix+trimmed)
	}
	return normalized
}
