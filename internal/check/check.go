// Package check defines test oracles ("checks") and the three ways a classified
// sequence can carry them: regression, error-revealing and invalid.
package check

import (
	"fmt"
	"strings"

	"github.com/gnolang/toracle/internal/sequence"
)

// Kind enumerates check variants.
type Kind int

const (
	KindObject Kind = iota
	KindNoException
	KindMissingException
	KindInvalidValue
	KindExpectedException
	KindEmptyException
	KindInvalidException
)

var kindNames = [...]string{
	KindObject:            "ObjectCheck",
	KindNoException:       "NoExceptionCheck",
	KindMissingException:  "MissingExceptionCheck",
	KindInvalidValue:      "InvalidValueCheck",
	KindExpectedException: "ExpectedExceptionCheck",
	KindEmptyException:    "EmptyExceptionCheck",
	KindInvalidException:  "InvalidExceptionCheck",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UnknownCheck"
}

// IsException reports whether the kind is one of the exception checks.
func (k Kind) IsException() bool {
	return k == KindExpectedException || k == KindEmptyException || k == KindInvalidException
}

// Check is an atomic oracle. The renderer places PreStatement before and
// PostStatement after the statement the check refers to.
//
// The set of implementations is closed: *ObjectCheck, *NoExceptionCheck,
// *MissingExceptionCheck, *InvalidValueCheck, *ExpectedExceptionCheck,
// *EmptyExceptionCheck and *InvalidExceptionCheck.
type Check interface {
	Kind() Kind
	PreStatement() string
	PostStatement() string
	// ID is stable across runs for equal checks.
	ID() string
	// Evaluate reports whether the check holds for es.
	Evaluate(es *sequence.ExecutableSequence) (bool, error)
	Equal(other Check) bool

	sealed()
}

// Condition is a property of one or more runtime values. Regression
// assertions and contracts are conditions.
type Condition interface {
	// Name identifies the condition including any captured parameters, so
	// that two conditions with the same name are interchangeable.
	Name() string
	// Evaluate applies the condition. A fault raised by the program under
	// test while evaluating is returned as a *sequence.Fault error.
	Evaluate(values ...any) (bool, error)
	// Assertion renders the condition over the named variables as a test
	// statement.
	Assertion(vars ...string) string
}

// ObjectCheck asserts a condition over variables of the sequence.
type ObjectCheck struct {
	Cond Condition
	Vars []sequence.Variable
}

// NewObjectCheck creates a check of cond over vars.
func NewObjectCheck(cond Condition, vars ...sequence.Variable) *ObjectCheck {
	return &ObjectCheck{Cond: cond, Vars: vars}
}

func (c *ObjectCheck) Kind() Kind           { return KindObject }
func (c *ObjectCheck) PreStatement() string { return "" }

func (c *ObjectCheck) PostStatement() string {
	return c.Cond.Assertion(c.varNames()...)
}

func (c *ObjectCheck) ID() string {
	return fmt.Sprintf("%s %s(%s)", KindObject, c.Cond.Name(), strings.Join(c.varNames(), ","))
}

func (c *ObjectCheck) Evaluate(es *sequence.ExecutableSequence) (bool, error) {
	values := make([]any, len(c.Vars))
	for i, v := range c.Vars {
		val, err := es.Value(v.Index)
		if err != nil {
			return false, err
		}
		values[i] = val
	}
	return c.Cond.Evaluate(values...)
}

func (c *ObjectCheck) Equal(other Check) bool {
	o, ok := other.(*ObjectCheck)
	return ok && c.ID() == o.ID()
}

func (c *ObjectCheck) String() string { return c.ID() }

func (c *ObjectCheck) varNames() []string {
	names := make([]string, len(c.Vars))
	for i, v := range c.Vars {
		names[i] = v.Name()
	}
	return names
}

// NoExceptionCheck records that the statement at Index raised a fault
// classified as an error. It holds when the statement executes normally.
type NoExceptionCheck struct {
	Index     int
	FaultType string
}

func NewNoExceptionCheck(index int, faultType string) *NoExceptionCheck {
	return &NoExceptionCheck{Index: index, FaultType: faultType}
}

func (c *NoExceptionCheck) Kind() Kind { return KindNoException }

func (c *NoExceptionCheck) PreStatement() string {
	return fmt.Sprintf("// During test generation this statement raised a fault of type %s in error.", c.FaultType)
}

func (c *NoExceptionCheck) PostStatement() string { return "" }

func (c *NoExceptionCheck) ID() string {
	return fmt.Sprintf("%s @%d %s", KindNoException, c.Index, c.FaultType)
}

func (c *NoExceptionCheck) Evaluate(es *sequence.ExecutableSequence) (bool, error) {
	_, ok := es.Result(c.Index).(sequence.NormalExecution)
	return ok, nil
}

func (c *NoExceptionCheck) Equal(other Check) bool {
	o, ok := other.(*NoExceptionCheck)
	return ok && c.Index == o.Index && c.FaultType == o.FaultType
}

func (c *NoExceptionCheck) String() string { return c.ID() }

// MissingExceptionCheck records that the statement at Index was required to
// raise one of Expected but returned normally.
type MissingExceptionCheck struct {
	Index    int
	Expected []string
}

func NewMissingExceptionCheck(index int, expected []string) *MissingExceptionCheck {
	return &MissingExceptionCheck{Index: index, Expected: append([]string(nil), expected...)}
}

func (c *MissingExceptionCheck) Kind() Kind { return KindMissingException }

func (c *MissingExceptionCheck) PreStatement() string {
	return fmt.Sprintf("// This statement is required to raise one of: %s", strings.Join(c.Expected, ", "))
}

func (c *MissingExceptionCheck) PostStatement() string {
	return fmt.Sprintf("t.Fatalf(%q)", "Expected one of faults "+strings.Join(c.Expected, ", "))
}

func (c *MissingExceptionCheck) ID() string {
	return fmt.Sprintf("%s @%d [%s]", KindMissingException, c.Index, strings.Join(c.Expected, ","))
}

// Evaluate holds when the statement raised one of the required faults.
func (c *MissingExceptionCheck) Evaluate(es *sequence.ExecutableSequence) (bool, error) {
	exc, ok := es.Result(c.Index).(sequence.ExceptionalExecution)
	if !ok {
		return false, nil
	}
	for _, t := range c.Expected {
		if t == exc.Fault.Type {
			return true, nil
		}
	}
	return false, nil
}

func (c *MissingExceptionCheck) Equal(other Check) bool {
	o, ok := other.(*MissingExceptionCheck)
	return ok && c.ID() == o.ID()
}

func (c *MissingExceptionCheck) String() string { return c.ID() }

// InvalidValueCheck marks a statement whose inputs violate a precondition.
type InvalidValueCheck struct {
	Index int
}

func NewInvalidValueCheck(index int) *InvalidValueCheck {
	return &InvalidValueCheck{Index: index}
}

func (c *InvalidValueCheck) Kind() Kind { return KindInvalidValue }

func (c *InvalidValueCheck) PreStatement() string {
	return "// The inputs of this statement violate a precondition of the operation."
}

func (c *InvalidValueCheck) PostStatement() string { return "" }

func (c *InvalidValueCheck) ID() string {
	return fmt.Sprintf("%s @%d", KindInvalidValue, c.Index)
}

func (c *InvalidValueCheck) Evaluate(*sequence.ExecutableSequence) (bool, error) {
	return false, ErrInvalidEvaluation
}

func (c *InvalidValueCheck) Equal(other Check) bool {
	o, ok := other.(*InvalidValueCheck)
	return ok && c.Index == o.Index
}

func (c *InvalidValueCheck) String() string { return c.ID() }

func (*ObjectCheck) sealed()           {}
func (*NoExceptionCheck) sealed()      {}
func (*MissingExceptionCheck) sealed() {}
func (*InvalidValueCheck) sealed()     {}
