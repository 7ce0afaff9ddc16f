package executor

// Executor runs batches of executables. Executables within a batch may run
// concurrently depending on the implementation; batches always run in order.
type Executor interface {
	Run([][]Executable) []error
}

type Executable interface {
	Execute() error
}
