package orchestrator

import (
	"github.com/hoveland/labops/executor"
)

// BackupRunner drives ordered batches of backup jobs through an executor.
// Batches run strictly in order so SMB replication always sees the outcome
// of the local copies; within a batch, concurrency is the executor's call.
type BackupRunner struct {
	executor executor.Executor
	logger   Logger
}

func NewBackupRunner(exec executor.Executor, logger Logger) BackupRunner {
	return BackupRunner{executor: exec, logger: logger}
}

func (b BackupRunner) Run(batches [][]executor.Executable) Error {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	if total == 0 {
		b.logger.Warn(tag, "nothing to do, no backup jobs configured")
		return nil
	}

	b.logger.Info(tag, "running %d backup job(s)", total)
	errs := b.executor.Run(batches)
	if len(errs) > 0 {
		b.logger.Error(tag, "%d of %d backup job(s) reported problems", len(errs), total)
		return flatten(errs)
	}

	b.logger.Info(tag, "backup run finished")
	return nil
}

// flatten unwraps nested aggregates so the caller sees one flat Error.
func flatten(errs []error) Error {
	var flat Error
	for _, err := range errs {
		if nested, ok := err.(Error); ok {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}
	return flat
}
