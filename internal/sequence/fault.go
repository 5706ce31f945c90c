package sequence

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// FaultClass is the coarse category of a fault raised by the program under
// test.
type FaultClass int

const (
	// FaultChecked is an error value returned through the normal error
	// result of an operation.
	FaultChecked FaultClass = iota
	// FaultUnchecked is a panic.
	FaultUnchecked
	FaultNilDereference
	FaultOutOfMemory
	FaultStackOverflow
	FaultTimeout
)

var faultClassNames = map[FaultClass]string{
	FaultChecked:        "checked",
	FaultUnchecked:      "unchecked",
	FaultNilDereference: "nil-dereference",
	FaultOutOfMemory:    "out-of-memory",
	FaultStackOverflow:  "stack-overflow",
	FaultTimeout:        "timeout",
}

func (c FaultClass) String() string {
	if name, ok := faultClassNames[c]; ok {
		return name
	}
	return "unknown"
}

// IsResourceExhaustion reports whether faults of this class are artifacts of
// the execution environment rather than behavior of the program under test.
func (c FaultClass) IsResourceExhaustion() bool {
	return c == FaultOutOfMemory || c == FaultStackOverflow || c == FaultTimeout
}

// ParseFaultClass parses a fault class name such as "nil-dereference".
func ParseFaultClass(s string) (FaultClass, error) {
	for class, name := range faultClassNames {
		if strings.EqualFold(name, s) {
			return class, nil
		}
	}
	return 0, fmt.Errorf("unknown fault class %q", s)
}

func (c FaultClass) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *FaultClass) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseFaultClass(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Fault is a fault raised by the program under test: a returned error or a
// recovered panic.
type Fault struct {
	// Type is the qualified type name of the fault value, e.g. "*errors.errorString"
	// or "runtime.boundsError".
	Type    string     `yaml:"type" json:"type"`
	Message string     `yaml:"message" json:"message"`
	Class   FaultClass `yaml:"class" json:"class"`
}

func (f *Fault) Error() string {
	if f.Message == "" {
		return f.Type
	}
	return f.Type + ": " + f.Message
}

// Equal reports whether f and other describe the same fault.
func (f *Fault) Equal(other *Fault) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Type == other.Type && f.Message == other.Message && f.Class == other.Class
}

// FaultFromPanic converts a recovered panic value into a Fault.
func FaultFromPanic(r any) *Fault {
	switch v := r.(type) {
	case *Fault:
		return v
	case runtime.Error:
		class := FaultUnchecked
		if strings.Contains(v.Error(), "nil pointer dereference") ||
			strings.Contains(v.Error(), "nil map") {
			class = FaultNilDereference
		}
		return &Fault{Type: fmt.Sprintf("%T", v), Message: v.Error(), Class: class}
	case error:
		return &Fault{Type: fmt.Sprintf("%T", v), Message: v.Error(), Class: FaultUnchecked}
	default:
		return &Fault{Type: fmt.Sprintf("%T", v), Message: fmt.Sprint(v), Class: FaultUnchecked}
	}
}

// FaultFromError converts an error returned by an operation into a Fault.
func FaultFromError(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Type: fmt.Sprintf("%T", err), Message: err.Error(), Class: FaultChecked}
}
