package check

import (
	"fmt"
	"strings"

	"github.com/gnolang/toracle/internal/sequence"
)

// Catch types used when the fault's own type cannot be named in test code.
const (
	CatchAny   = "any"
	CatchError = "error"
)

// ExceptionCheck is implemented by the checks about a fault raised at a
// statement: *ExpectedExceptionCheck, *EmptyExceptionCheck and
// *InvalidExceptionCheck.
type ExceptionCheck interface {
	Check
	Fault() *sequence.Fault
	Index() int
	// CatchType is the type name used to match the fault in test code.
	CatchType() string
}

// AsExceptionCheck returns c as an ExceptionCheck if it is one.
func AsExceptionCheck(c Check) (ExceptionCheck, bool) {
	ec, ok := c.(ExceptionCheck)
	return ec, ok
}

type exceptionCheck struct {
	fault     *sequence.Fault
	index     int
	catchType string
}

func newExceptionCheck(fault *sequence.Fault, index int, catchType string) exceptionCheck {
	if catchType == "" {
		catchType = fault.Type
	}
	return exceptionCheck{fault: fault, index: index, catchType: catchType}
}

func (c *exceptionCheck) Fault() *sequence.Fault { return c.fault }
func (c *exceptionCheck) Index() int             { return c.index }
func (c *exceptionCheck) CatchType() string      { return c.catchType }

func (c *exceptionCheck) id(k Kind) string {
	return fmt.Sprintf("%s @%d %s", k, c.index, c.fault.Type)
}

// equal implements exception check equality: same variant, equal fault and
// same statement index. The catch type does not participate.
func (c *exceptionCheck) equal(k Kind, other Check) bool {
	o, ok := AsExceptionCheck(other)
	return ok && o.Kind() == k && o.Index() == c.index && c.fault.Equal(o.Fault())
}

// returned reports whether the fault was returned as an error value rather
// than raised by a panic.
func (c *exceptionCheck) returned() bool {
	return c.fault.Class == sequence.FaultChecked
}

// matches reports whether f would be caught by the catch type.
func (c *exceptionCheck) matches(f *sequence.Fault) bool {
	switch c.catchType {
	case CatchAny:
		return true
	case CatchError:
		return f.Class == sequence.FaultChecked || f.Type == c.fault.Type
	default:
		return f.Type == c.catchType
	}
}

func (c *exceptionCheck) comment(verb string) string {
	return fmt.Sprintf("// This statement %s a fault of type %s", verb, c.fault.Type)
}

// ExpectedExceptionCheck requires the statement to raise the fault again.
type ExpectedExceptionCheck struct {
	exceptionCheck
}

func NewExpectedExceptionCheck(fault *sequence.Fault, index int, catchType string) *ExpectedExceptionCheck {
	return &ExpectedExceptionCheck{newExceptionCheck(fault, index, catchType)}
}

func (c *ExpectedExceptionCheck) Kind() Kind { return KindExpectedException }

func (c *ExpectedExceptionCheck) PreStatement() string {
	if c.returned() {
		return c.comment("is expected to return")
	}
	var sb strings.Builder
	sb.WriteString(c.comment("is expected to raise"))
	sb.WriteString("\nfunc() {\n")
	sb.WriteString("\tdefer func() {\n")
	sb.WriteString("\t\tif r := recover(); r != nil {\n")
	sb.WriteString("\t\t\t// Expected fault.\n")
	if c.catchType != CatchAny {
		fmt.Fprintf(&sb, "\t\t\tassert.Equal(t, %q, fmt.Sprintf(\"%%T\", r))\n", c.catchType)
	}
	sb.WriteString("\t\t}\n")
	sb.WriteString("\t}()")
	return sb.String()
}

func (c *ExpectedExceptionCheck) PostStatement() string {
	msg := fmt.Sprintf("Expected fault of type %s; message: %s", c.fault.Type, c.fault.Message)
	if c.returned() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "if err == nil {\n\tt.Fatalf(%q)\n}\n", msg)
		if c.catchType != CatchError && c.catchType != CatchAny {
			fmt.Fprintf(&sb, "assert.Equal(t, %q, fmt.Sprintf(\"%%T\", err))", c.catchType)
		}
		return strings.TrimSuffix(sb.String(), "\n")
	}
	return fmt.Sprintf("\tt.Fatalf(%q)\n}()", msg)
}

func (c *ExpectedExceptionCheck) ID() string { return c.id(KindExpectedException) }

// Evaluate holds when the statement raised a fault matching the catch type.
func (c *ExpectedExceptionCheck) Evaluate(es *sequence.ExecutableSequence) (bool, error) {
	exc, ok := es.Result(c.index).(sequence.ExceptionalExecution)
	return ok && c.matches(exc.Fault), nil
}

func (c *ExpectedExceptionCheck) Equal(other Check) bool {
	return c.equal(KindExpectedException, other)
}

func (c *ExpectedExceptionCheck) String() string { return c.ID() }

// EmptyExceptionCheck documents a fault observed during generation without
// requiring it on replay.
type EmptyExceptionCheck struct {
	exceptionCheck
}

func NewEmptyExceptionCheck(fault *sequence.Fault, index int, catchType string) *EmptyExceptionCheck {
	return &EmptyExceptionCheck{newExceptionCheck(fault, index, catchType)}
}

func (c *EmptyExceptionCheck) Kind() Kind { return KindEmptyException }

func (c *EmptyExceptionCheck) PreStatement() string {
	if c.returned() {
		return c.comment("returned")
	}
	return c.comment("raised") + "\nfunc() {\n\tdefer func() { _ = recover() }()"
}

func (c *EmptyExceptionCheck) PostStatement() string {
	if c.returned() {
		return "_ = err"
	}
	return "}()"
}

func (c *EmptyExceptionCheck) ID() string { return c.id(KindEmptyException) }

// Evaluate always holds.
func (c *EmptyExceptionCheck) Evaluate(*sequence.ExecutableSequence) (bool, error) {
	return true, nil
}

func (c *EmptyExceptionCheck) Equal(other Check) bool {
	return c.equal(KindEmptyException, other)
}

func (c *EmptyExceptionCheck) String() string { return c.ID() }

// InvalidExceptionCheck marks a fault that makes the sequence invalid.
type InvalidExceptionCheck struct {
	exceptionCheck
}

func NewInvalidExceptionCheck(fault *sequence.Fault, index int, catchType string) *InvalidExceptionCheck {
	return &InvalidExceptionCheck{newExceptionCheck(fault, index, catchType)}
}

func (c *InvalidExceptionCheck) Kind() Kind { return KindInvalidException }

func (c *InvalidExceptionCheck) PreStatement() string {
	return c.comment("raised") + ", which makes the sequence invalid."
}

func (c *InvalidExceptionCheck) PostStatement() string { return "" }

func (c *InvalidExceptionCheck) ID() string { return c.id(KindInvalidException) }

func (c *InvalidExceptionCheck) Evaluate(*sequence.ExecutableSequence) (bool, error) {
	return false, ErrInvalidEvaluation
}

func (c *InvalidExceptionCheck) Equal(other Check) bool {
	return c.equal(KindInvalidException, other)
}

func (c *InvalidExceptionCheck) String() string { return c.ID() }

func (*ExpectedExceptionCheck) sealed() {}
func (*EmptyExceptionCheck) sealed()    {}
func (*InvalidExceptionCheck) sealed()  {}
