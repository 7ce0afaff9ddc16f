// Package writer holds io.Writer decorators shared by the logging setup and
// the file-copy paths.
package writer

import (
	"bytes"
	"io"
	"sync"
)

// PausableWriter buffers writes while paused and replays them on resume. The
// sigint handler pauses the application log writer so its prompt is not
// interleaved with log lines.
type PausableWriter struct {
	out    io.Writer
	buffer bytes.Buffer
	paused bool
	mutex  sync.Mutex
}

func NewPausableWriter(out io.Writer) *PausableWriter {
	return &PausableWriter{out: out}
}

func (pw *PausableWriter) Write(p []byte) (int, error) {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	if pw.paused {
		return pw.buffer.Write(p)
	}
	return pw.out.Write(p)
}

func (pw *PausableWriter) Pause() {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	pw.paused = true
}

// Resume flushes everything buffered while paused and goes back to writing
// through.
func (pw *PausableWriter) Resume() (int, error) {
	pw.mutex.Lock()
	defer pw.mutex.Unlock()

	pw.paused = false
	n, err := pw.out.Write(pw.buffer.Bytes())
	pw.buffer.Reset()
	return n, err
}
