package build

import "fmt"

// PreconditionError reports an invalid input/output combination detected
// before any compilation starts. Its message is meant to be shown verbatim.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}
