package runner

import (
	"fmt"

	"github.com/pkg/errors"
)

type MultiPar struct {
	exe            string
	options        []string
	redundancyRate int
	runner         CommandRunner
}

func NewMultiPar(exe string, options []string, redundancyRate int, runner CommandRunner) MultiPar {
	if exe == "" {
		exe = "par2j64.exe"
	}
	return MultiPar{exe: exe, options: options, redundancyRate: redundancyRate, runner: runner}
}

// Create writes a .par2 recovery sidecar next to file.
func (m MultiPar) Create(file string) (Outcome, error) {
	args := append([]string{"create"}, NormalizeOptions(m.options, "/")...)
	if m.redundancyRate > 0 {
		args = append(args, fmt.Sprintf("/rr%d", m.redundancyRate))
	}
	args = append(args, file+".par2", file)

	code, err := m.runner.Run(m.exe, args...)
	if err != nil {
		return Failure, errors.Wrap(err, "MultiPar did not run")
	}

	if ClassifyExit(code) == Failure {
		return Failure, errors.Errorf("MultiPar failed to create parity for %s with exit code %d", file, code)
	}

	return Success, nil
}
