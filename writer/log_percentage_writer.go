package writer

import (
	"io"
)

type Logger interface {
	Info(tag, msg string, args ...interface{})
}

// LogPercentageWriter wraps a writer and logs copy progress in five percent
// increments. The message must carry a %d verb for the percentage.
type LogPercentageWriter struct {
	Writer              io.Writer
	bytesWritten        int
	logger              Logger
	totalSize           int
	tag                 string
	message             string
	lastLogPercentage   int
	percentageIncrement int
}

func NewLogPercentageWriter(writer io.Writer, logger Logger, totalSize int, tag, message string) *LogPercentageWriter {
	return &LogPercentageWriter{
		Writer:              writer,
		logger:              logger,
		totalSize:           totalSize,
		tag:                 tag,
		message:             message,
		percentageIncrement: 5,
	}
}

func (lw *LogPercentageWriter) Write(b []byte) (int, error) {
	n, err := lw.Writer.Write(b)
	if err != nil {
		return 0, err
	}

	lw.bytesWritten += n
	percentageWrittenSoFar := (100 * lw.bytesWritten) / lw.totalSize

	if lw.bytesWritten > lw.totalSize {
		lw.logger.Info(lw.tag, lw.message, 100)
	} else if percentageWrittenSoFar >= lw.lastLogPercentage+lw.percentageIncrement {
		lw.lastLogPercentage = percentageWrittenSoFar
		lw.logger.Info(lw.tag, lw.message, percentageWrittenSoFar)
	}

	return n, nil
}
