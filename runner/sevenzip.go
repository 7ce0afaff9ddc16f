package runner

import (
	"github.com/pkg/errors"
)

type SevenZip struct {
	exe        string
	options    []string
	volumeSize string
	runner     CommandRunner
}

func NewSevenZip(exe string, options []string, volumeSize string, runner CommandRunner) SevenZip {
	if exe == "" {
		exe = "7z.exe"
	}
	return SevenZip{exe: exe, options: options, volumeSize: volumeSize, runner: runner}
}

// Archive compresses source into archivePath, split into volumes when a
// volume size is configured.
func (z SevenZip) Archive(source, archivePath string) (Outcome, error) {
	args := append([]string{"a"}, NormalizeOptions(z.options, "-")...)
	if z.volumeSize != "" {
		args = append(args, "-v"+z.volumeSize)
	}
	args = append(args, archivePath, source)

	code, err := z.runner.Run(z.exe, args...)
	if err != nil {
		return Failure, errors.Wrap(err, "7-Zip did not run")
	}

	if ClassifyExit(code) == Failure {
		return Failure, errors.Errorf("7-Zip failed to archive %s with exit code %d", source, code)
	}

	return Success, nil
}
