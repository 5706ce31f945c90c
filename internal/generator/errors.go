package generator

import (
	"fmt"

	"github.com/gnolang/toracle/internal/sequence"
)

// SequenceError reports a flaky sequence: a statement before the last one
// raised a fault. The sequence must be discarded.
type SequenceError struct {
	Index int
	Fault *sequence.Fault
	// Sequence is a rendering of the offending sequence.
	Sequence string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("flaky sequence: statement %d raised %s", e.Index, e.Fault)
}

func (e *SequenceError) Unwrap() error { return e.Fault }

// InternalError reports a defect of the test harness rather than a behavior
// of the program under test. Classification cannot continue and no partial
// result may be used.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func internalError(op string, err error) *InternalError {
	return &InternalError{Op: op, Err: err}
}

func internalErrorf(op, format string, args ...any) *InternalError {
	return &InternalError{Op: op, Err: fmt.Errorf(format, args...)}
}
