package contract

import (
	"fmt"
	"path"
	"reflect"

	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/typesys"
)

// IsNull holds when its value is nil.
type IsNull struct{}

func (IsNull) Name() string { return "IsNull" }

func (IsNull) Evaluate(values ...any) (bool, error) {
	return sequence.IsNil(values[0]), nil
}

func (IsNull) Assertion(vars ...string) string {
	return fmt.Sprintf("assert.Nil(t, %s)", vars[0])
}

// IsNotNull holds when its value is not nil.
type IsNotNull struct{}

func (IsNotNull) Name() string { return "IsNotNull" }

func (IsNotNull) Evaluate(values ...any) (bool, error) {
	return !sequence.IsNil(values[0]), nil
}

func (IsNotNull) Assertion(vars ...string) string {
	return fmt.Sprintf("assert.NotNil(t, %s)", vars[0])
}

// CompareMode selects how a captured value is compared.
type CompareMode int

const (
	// CompareIdentity compares with ==; used when the variable's static type
	// is primitive.
	CompareIdentity CompareMode = iota
	// CompareValue compares with deep equality; used when the variable's
	// static type is an interface holding a primitive value.
	CompareValue
)

func (m CompareMode) String() string {
	if m == CompareIdentity {
		return "=="
	}
	return "equal"
}

// PrimValue holds when its value equals a captured primitive or string.
type PrimValue struct {
	Value any
	Mode  CompareMode
}

func (p PrimValue) Name() string {
	return fmt.Sprintf("PrimValue(%s %s)", p.Mode, Literal(p.Value))
}

func (p PrimValue) Evaluate(values ...any) (bool, error) {
	return valuesEqual(values[0], p.Value, p.Mode), nil
}

func (p PrimValue) Assertion(vars ...string) string {
	x := vars[0]
	if isNaN(p.Value) {
		if p.Mode == CompareIdentity {
			return fmt.Sprintf("assert.True(t, math.IsNaN(float64(%s)))", x)
		}
		return fmt.Sprintf("assert.True(t, math.IsNaN(%s.(%T)))", x, p.Value)
	}
	if p.Mode == CompareIdentity {
		return fmt.Sprintf("assert.True(t, %s == %s)", x, Literal(p.Value))
	}
	return fmt.Sprintf("assert.Equal(t, %s, %s)", Literal(p.Value), x)
}

// EnumValue holds when its value is the named enumeration constant.
type EnumValue struct {
	// Type is the enumeration type; Const the name of the constant.
	Type  *typesys.ClassType
	Const string
	Value any
}

func (e EnumValue) Name() string {
	return fmt.Sprintf("EnumValue(%s.%s)", e.Type.Name(), e.Const)
}

func (e EnumValue) Evaluate(values ...any) (bool, error) {
	return reflect.DeepEqual(values[0], e.Value), nil
}

func (e EnumValue) Assertion(vars ...string) string {
	return fmt.Sprintf("assert.Equal(t, %s, %s)", qualifiedConst(e.Type, e.Const), vars[0])
}

// ObserverEqValue holds when calling a side-effect free observer on its
// value returns the captured result.
type ObserverEqValue struct {
	Observer *sequence.Operation
	Value    any
	// Enum is set when Value is an enumeration constant.
	Enum *EnumValue
}

func (o ObserverEqValue) Name() string {
	return fmt.Sprintf("ObserverEqValue(%s, %s)", o.Observer.Signature(), o.expected())
}

// Evaluate calls the observer. A fault raised by the observer is returned as
// the error.
func (o ObserverEqValue) Evaluate(values ...any) (bool, error) {
	switch out := o.Observer.Execute(values[0]).(type) {
	case sequence.NormalExecution:
		return valuesEqual(out.Value, o.Value, CompareValue), nil
	case sequence.ExceptionalExecution:
		return false, out.Fault
	default:
		return false, fmt.Errorf("observer %s could not be invoked", o.Observer.Name)
	}
}

func (o ObserverEqValue) Assertion(vars ...string) string {
	call := o.call(vars[0])
	if isNaN(o.Value) {
		return fmt.Sprintf("assert.True(t, math.IsNaN(float64(%s)))", call)
	}
	return fmt.Sprintf("assert.Equal(t, %s, %s)", o.expected(), call)
}

func (o ObserverEqValue) expected() string {
	if o.Enum != nil {
		return qualifiedConst(o.Enum.Type, o.Enum.Const)
	}
	return Literal(o.Value)
}

func (o ObserverEqValue) call(x string) string {
	if o.Observer.Receiver != nil {
		return fmt.Sprintf("%s.%s()", x, o.Observer.Name)
	}
	if o.Observer.Package != "" {
		return fmt.Sprintf("%s.%s(%s)", path.Base(o.Observer.Package), o.Observer.Name, x)
	}
	return fmt.Sprintf("%s(%s)", o.Observer.Name, x)
}

func valuesEqual(got, want any, mode CompareMode) bool {
	if isNaN(want) {
		return isNaN(got)
	}
	if mode == CompareIdentity {
		defer func() { _ = recover() }()
		return got == want
	}
	return reflect.DeepEqual(got, want)
}

func qualifiedConst(t *typesys.ClassType, name string) string {
	if t.Package() == "" {
		return name
	}
	return path.Base(t.Package()) + "." + name
}
