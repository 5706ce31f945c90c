package sequence

import "github.com/gnolang/toracle/internal/typesys"

// Outcome is the result of executing one statement. It is one of
// NotExecuted, NormalExecution or ExceptionalExecution.
type Outcome interface {
	isOutcome()
}

// NotExecuted marks a statement that was never reached.
type NotExecuted struct{}

// NormalExecution is a statement that completed and produced Value. Type is
// the runtime type of Value when known.
type NormalExecution struct {
	Value any
	Type  typesys.Type
}

// ExceptionalExecution is a statement that raised a fault.
type ExceptionalExecution struct {
	Fault *Fault
}

func (NotExecuted) isOutcome()          {}
func (NormalExecution) isOutcome()      {}
func (ExceptionalExecution) isOutcome() {}

// OutcomeKind returns a short name of the outcome variant.
func OutcomeKind(o Outcome) string {
	switch o.(type) {
	case NotExecuted:
		return "not-executed"
	case NormalExecution:
		return "normal"
	case ExceptionalExecution:
		return "exceptional"
	default:
		return "unknown"
	}
}
