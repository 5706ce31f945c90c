package sequence

import (
	"fmt"
	"strings"

	"github.com/gnolang/toracle/internal/typesys"
)

// OperationKind tells how an operation produces its value.
type OperationKind int

const (
	KindMethod OperationKind = iota
	KindFunction
	KindConstructor
	// KindLiteral initializes a variable from a constant without observing
	// any state of the program under test.
	KindLiteral
	KindFieldGet
	KindEnumConstant
)

var operationKindNames = map[OperationKind]string{
	KindMethod:       "method",
	KindFunction:     "function",
	KindConstructor:  "constructor",
	KindLiteral:      "literal",
	KindFieldGet:     "field",
	KindEnumConstant: "enum",
}

func (k OperationKind) String() string {
	if name, ok := operationKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseOperationKind parses an operation kind name.
func ParseOperationKind(s string) (OperationKind, error) {
	for kind, name := range operationKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown operation kind %q", s)
}

// InvokeFunc calls an operation on already computed input values.
type InvokeFunc func(args ...any) (any, error)

// Operation is a callable member of the program under test.
type Operation struct {
	Name string
	// Package is the package that declares the operation.
	Package string
	// Receiver is the receiver type of a method, nil otherwise. For methods
	// the receiver is also the first input type.
	Receiver   typesys.Type
	InputTypes []typesys.Type
	OutputType typesys.Type
	Kind       OperationKind

	// AcceptedFaults lists fault types that are documented outcomes of the
	// operation.
	AcceptedFaults []string

	// Invoke is nil for operations that are only described, never called.
	Invoke InvokeFunc
}

// Signature returns a unique, human readable description of the operation,
// e.g. "container/list.List.PushBack(*container/list.List,any) *container/list.Element".
func (op *Operation) Signature() string {
	var sb strings.Builder
	if op.Receiver != nil {
		sb.WriteString(op.Receiver.Name())
	} else if op.Package != "" {
		sb.WriteString(op.Package)
	}
	if sb.Len() > 0 {
		sb.WriteByte('.')
	}
	sb.WriteString(op.Name)
	sb.WriteByte('(')
	for i, t := range op.InputTypes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.Name())
	}
	sb.WriteByte(')')
	if op.OutputType != nil && !op.OutputType.IsVoid() {
		sb.WriteByte(' ')
		sb.WriteString(op.OutputType.Name())
	}
	return sb.String()
}

func (op *Operation) String() string { return op.Signature() }

func (op *Operation) IsConstructor() bool { return op.Kind == KindConstructor }
func (op *Operation) IsLiteral() bool     { return op.Kind == KindLiteral }

// IsVoid reports whether the operation produces no value.
func (op *Operation) IsVoid() bool {
	return op.OutputType == nil || op.OutputType.IsVoid()
}

func (op *Operation) IsExported() bool {
	return typesys.IsExportedName(op.Name)
}

// Accepts reports whether f is a documented outcome of the operation.
func (op *Operation) Accepts(f *Fault) bool {
	if f == nil {
		return false
	}
	for _, t := range op.AcceptedFaults {
		if t == f.Type {
			return true
		}
	}
	return false
}

// Execute invokes the operation and captures what happened. A panic raised
// by the operation is recovered into an exceptional outcome.
func (op *Operation) Execute(args ...any) (out Outcome) {
	if op.Invoke == nil {
		return NotExecuted{}
	}
	defer func() {
		if r := recover(); r != nil {
			out = ExceptionalExecution{Fault: FaultFromPanic(r)}
		}
	}()
	v, err := op.Invoke(args...)
	if err != nil {
		return ExceptionalExecution{Fault: FaultFromError(err)}
	}
	return NormalExecution{Value: v, Type: op.OutputType}
}
