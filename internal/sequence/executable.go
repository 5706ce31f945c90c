package sequence

import (
	"fmt"
	"reflect"

	"github.com/gnolang/toracle/internal/typesys"
)

// Expectation carries what the documentation of an operation says about a
// particular call, as determined by the executor before the call ran.
type Expectation struct {
	// PreconditionViolated is set when the inputs of the call violate a
	// documented precondition.
	PreconditionViolated bool `yaml:"precondition_violated,omitempty" json:"precondition_violated,omitempty"`
	// RequiredFaults lists fault types that the call is documented to raise
	// for these inputs.
	RequiredFaults []string `yaml:"required_faults,omitempty" json:"required_faults,omitempty"`
}

// Requires reports whether f is one of the required faults.
func (e Expectation) Requires(f *Fault) bool {
	if f == nil {
		return false
	}
	for _, t := range e.RequiredFaults {
		if t == f.Type {
			return true
		}
	}
	return false
}

// ReferenceValue is a non-nil runtime value of a non-primitive type, together
// with the variable that holds it.
type ReferenceValue struct {
	Var   Variable
	Value any
	// Type is the runtime type of Value.
	Type typesys.Type
}

// ExecutableSequence is a sequence together with the outcome of executing
// each statement once. It is read-only.
type ExecutableSequence struct {
	Sequence     *Sequence
	outcomes     []Outcome
	expectations []Expectation
}

// NewExecutableSequence pairs seq with one outcome per statement.
func NewExecutableSequence(seq *Sequence, outcomes []Outcome) (*ExecutableSequence, error) {
	if seq == nil {
		return nil, ErrEmptySequence
	}
	if len(outcomes) != seq.Size() {
		return nil, fmt.Errorf("%w: %d statements, %d outcomes", ErrOutcomeArity, seq.Size(), len(outcomes))
	}
	for i, o := range outcomes {
		if o == nil {
			outcomes[i] = NotExecuted{}
		}
	}
	return &ExecutableSequence{
		Sequence: seq,
		outcomes: append([]Outcome(nil), outcomes...),
	}, nil
}

// Execute runs every statement of seq in order and records the outcomes.
// Execution stops at the first exceptional statement; the remaining
// statements are left NotExecuted.
func Execute(seq *Sequence) *ExecutableSequence {
	outcomes := make([]Outcome, seq.Size())
	stopped := false
	for i := range outcomes {
		if stopped {
			outcomes[i] = NotExecuted{}
			continue
		}
		st := seq.Statement(i)
		args := make([]any, len(st.Inputs))
		for j, in := range st.Inputs {
			args[j] = outcomes[in].(NormalExecution).Value
		}
		outcomes[i] = st.Op.Execute(args...)
		if _, ok := outcomes[i].(NormalExecution); !ok {
			stopped = true
		}
	}
	return &ExecutableSequence{Sequence: seq, outcomes: outcomes}
}

// WithExpectations returns a copy of the sequence carrying one expectation
// per statement.
func (es *ExecutableSequence) WithExpectations(exps []Expectation) (*ExecutableSequence, error) {
	if len(exps) != es.Sequence.Size() {
		return nil, fmt.Errorf("%w: %d statements, %d expectations", ErrOutcomeArity, es.Sequence.Size(), len(exps))
	}
	return &ExecutableSequence{
		Sequence:     es.Sequence,
		outcomes:     es.outcomes,
		expectations: append([]Expectation(nil), exps...),
	}, nil
}

// Size returns the number of statements.
func (es *ExecutableSequence) Size() int { return es.Sequence.Size() }

// LastIndex returns the index of the final statement.
func (es *ExecutableSequence) LastIndex() int { return es.Sequence.LastIndex() }

// Result returns the outcome of statement i.
func (es *ExecutableSequence) Result(i int) Outcome { return es.outcomes[i] }

// Expectation returns the expectation recorded for statement i, or the zero
// Expectation.
func (es *ExecutableSequence) Expectation(i int) Expectation {
	if i < len(es.expectations) {
		return es.expectations[i]
	}
	return Expectation{}
}

// Value returns the value computed by statement i.
func (es *ExecutableSequence) Value(i int) (any, error) {
	if i < 0 || i >= es.Size() {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	switch o := es.outcomes[i].(type) {
	case NormalExecution:
		return o.Value, nil
	case NotExecuted:
		return nil, fmt.Errorf("statement %d: %w", i, ErrNotExecuted)
	default:
		return nil, fmt.Errorf("statement %d: %w", i, ErrNotNormal)
	}
}

// RuntimeType returns the runtime type of the value of statement i, falling
// back to the declared output type.
func (es *ExecutableSequence) RuntimeType(i int) typesys.Type {
	if o, ok := es.outcomes[i].(NormalExecution); ok && o.Type != nil {
		return o.Type
	}
	return es.Sequence.Operation(i).OutputType
}

// IsNormalExecution reports whether every statement executed normally.
func (es *ExecutableSequence) IsNormalExecution() bool {
	for _, o := range es.outcomes {
		if _, ok := o.(NormalExecution); !ok {
			return false
		}
	}
	return true
}

// HasNilInput reports whether any input of statement i is nil.
func (es *ExecutableSequence) HasNilInput(i int) bool {
	for _, in := range es.Sequence.Statement(i).Inputs {
		if o, ok := es.outcomes[in].(NormalExecution); ok && IsNil(o.Value) {
			return true
		}
	}
	return false
}

// LastStatementValues returns the reference values of the final statement:
// its result followed by its inputs. Each variable appears once. Nil values
// are kept with their declared type.
func (es *ExecutableSequence) LastStatementValues() []ReferenceValue {
	last := es.LastIndex()
	indices := append([]int{last}, es.Sequence.Statement(last).Inputs...)
	return es.referenceValues(indices)
}

// InputValues returns the reference values of every variable used as an
// input by some statement, in variable order. Each variable appears once.
func (es *ExecutableSequence) InputValues() []ReferenceValue {
	used := make([]bool, es.Size())
	for i := 0; i < es.Size(); i++ {
		for _, in := range es.Sequence.Statement(i).Inputs {
			used[in] = true
		}
	}
	var indices []int
	for i, u := range used {
		if u {
			indices = append(indices, i)
		}
	}
	return es.referenceValues(indices)
}

func (es *ExecutableSequence) referenceValues(indices []int) []ReferenceValue {
	seen := make(map[int]bool, len(indices))
	var values []ReferenceValue
	for _, i := range indices {
		if seen[i] {
			continue
		}
		seen[i] = true
		o, ok := es.outcomes[i].(NormalExecution)
		if !ok {
			continue
		}
		t := es.RuntimeType(i)
		if t == nil || t.IsVoid() || t.IsPrimitive() {
			continue
		}
		values = append(values, ReferenceValue{
			Var:   es.Sequence.Variable(i),
			Value: o.Value,
			Type:  t,
		})
	}
	return values
}

func (es *ExecutableSequence) String() string { return es.Sequence.String() }

// IsNil reports whether v is nil or a nil pointer, map, slice, channel,
// function or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
