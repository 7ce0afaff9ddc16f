package runner

// Outcome is the coarse classification of an external tool run. Raw exit
// codes never leave this package.
type Outcome int

const (
	Success Outcome = iota
	SuccessWithWarnings
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case SuccessWithWarnings:
		return "success-with-warnings"
	default:
		return "failure"
	}
}

// ClassifyRobocopyExit buckets robocopy's bitmask exit codes. 0 means nothing
// needed copying and still counts as success; 1 means files were copied;
// 2-7 flag extra or mismatched files; 8 and above signal copy failures.
func ClassifyRobocopyExit(code int) Outcome {
	switch {
	case code == 0 || code == 1:
		return Success
	case code >= 2 && code <= 7:
		return SuccessWithWarnings
	default:
		return Failure
	}
}

// ClassifyExit is the classifier for tools with conventional exit codes
// (7-Zip, MultiPar, git, gh): zero is success, anything else is failure.
func ClassifyExit(code int) Outcome {
	if code == 0 {
		return Success
	}
	return Failure
}
