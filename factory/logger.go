// Package factory wires the concrete collaborators the CLI commands need.
package factory

import (
	"os"

	"github.com/hoveland/labops/writer"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
)

// ApplicationLoggerStdout is pausable so the sigint handler can prompt
// without log lines landing in the middle of the question.
var ApplicationLoggerStdout = writer.NewPausableWriter(os.Stdout)

func BuildLogger(debug bool) boshlog.Logger {
	if debug {
		return boshlog.NewWriterLogger(boshlog.LevelDebug, ApplicationLoggerStdout)
	}
	return boshlog.NewWriterLogger(boshlog.LevelInfo, ApplicationLoggerStdout)
}
