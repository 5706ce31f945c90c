package contract

import (
	"fmt"
	"strings"

	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/typesys"
)

// property is a contract defined by an evaluation function and an
// expression template. Template placeholders {0}, {1} and {2} are replaced
// by variable names.
type property struct {
	name   string
	inputs []typesys.Type
	eval   func(values []any) bool
	expr   string
	// statement renders the expression as is instead of wrapping it in an
	// assertion; used for properties that only require a call to return.
	statement bool
}

func (p *property) Name() string               { return p.name }
func (p *property) Arity() int                 { return len(p.inputs) }
func (p *property) InputTypes() []typesys.Type { return p.inputs }

func (p *property) Evaluate(values ...any) (bool, error) {
	if len(values) != len(p.inputs) {
		return false, fmt.Errorf("%w: %s takes %d values, got %d", ErrArityMismatch, p.name, len(p.inputs), len(values))
	}
	return p.eval(values), nil
}

func (p *property) Assertion(vars ...string) string {
	expr := p.expr
	for i, v := range vars {
		expr = strings.ReplaceAll(expr, fmt.Sprintf("{%d}", i), v)
	}
	if p.statement {
		return expr
	}
	return fmt.Sprintf("assert.True(t, %s, %q)", expr, "Contract failed: "+expr)
}

func (p *property) String() string { return p.name }

func repeat(t typesys.Type, n int) []typesys.Type {
	out := make([]typesys.Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

// equalers returns the values as Equalers. ok is false if some value does
// not implement the protocol, in which case the property holds vacuously.
func equalers(values []any) (out []Equaler, ok bool) {
	out = make([]Equaler, len(values))
	for i, v := range values {
		if out[i], ok = v.(Equaler); !ok {
			return nil, false
		}
	}
	return out, true
}

func comparers(values []any) (out []Comparer, ok bool) {
	out = make([]Comparer, len(values))
	for i, v := range values {
		if out[i], ok = v.(Comparer); !ok {
			return nil, false
		}
	}
	return out, true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func newEqualsReflexive() Contract {
	return &property{
		name:   "equals-reflexive",
		inputs: repeat(EqualerType, 1),
		expr:   "{0}.Equal({0})",
		eval: func(values []any) bool {
			e, ok := equalers(values)
			return !ok || e[0].Equal(values[0])
		},
	}
}

func newEqualsNil() Contract {
	return &property{
		name:   "equals-nil",
		inputs: repeat(EqualerType, 1),
		expr:   "!{0}.Equal(nil)",
		eval: func(values []any) bool {
			e, ok := equalers(values)
			return !ok || !e[0].Equal(nil)
		},
	}
}

func newEqualsSymmetric() Contract {
	return &property{
		name:   "equals-symmetric",
		inputs: repeat(EqualerType, 2),
		expr:   "!{0}.Equal({1}) || {1}.Equal({0})",
		eval: func(values []any) bool {
			e, ok := equalers(values)
			return !ok || !e[0].Equal(values[1]) || e[1].Equal(values[0])
		},
	}
}

func newEqualsHashCode() Contract {
	return &property{
		name:   "equals-hashcode",
		inputs: repeat(EqualerType, 2),
		expr:   "!{0}.Equal({1}) || {0}.Hash() == {1}.Hash()",
		eval: func(values []any) bool {
			e, ok := equalers(values)
			if !ok || !e[0].Equal(values[1]) {
				return true
			}
			h0, ok0 := values[0].(Hasher)
			h1, ok1 := values[1].(Hasher)
			return !ok0 || !ok1 || h0.Hash() == h1.Hash()
		},
	}
}

func newEqualsTransitive() Contract {
	return &property{
		name:   "equals-transitive",
		inputs: repeat(EqualerType, 3),
		expr:   "!({0}.Equal({1}) && {1}.Equal({2})) || {0}.Equal({2})",
		eval: func(values []any) bool {
			e, ok := equalers(values)
			if !ok || !(e[0].Equal(values[1]) && e[1].Equal(values[2])) {
				return true
			}
			return e[0].Equal(values[2])
		},
	}
}

func newCompareReflexive() Contract {
	return &property{
		name:   "compare-reflexive",
		inputs: repeat(comparableT, 1),
		expr:   "{0}.Compare({0}) == 0",
		eval: func(values []any) bool {
			c, ok := comparers(values)
			return !ok || c[0].Compare(values[0]) == 0
		},
	}
}

func newCompareAntisymmetric() Contract {
	return &property{
		name:   "compare-antisymmetric",
		inputs: repeat(comparableT, 2),
		expr:   "({0}.Compare({1}) > 0) == ({1}.Compare({0}) < 0) && ({0}.Compare({1}) < 0) == ({1}.Compare({0}) > 0)",
		eval: func(values []any) bool {
			c, ok := comparers(values)
			return !ok || sign(c[0].Compare(values[1])) == -sign(c[1].Compare(values[0]))
		},
	}
}

func newCompareTransitive() Contract {
	return &property{
		name:   "compare-transitive",
		inputs: repeat(comparableT, 3),
		expr:   "!({0}.Compare({1}) > 0 && {1}.Compare({2}) > 0) || {0}.Compare({2}) > 0",
		eval: func(values []any) bool {
			c, ok := comparers(values)
			if !ok || !(c[0].Compare(values[1]) > 0 && c[1].Compare(values[2]) > 0) {
				return true
			}
			return c[0].Compare(values[2]) > 0
		},
	}
}

func newStringNoPanic() Contract {
	return &property{
		name:      "string-no-panic",
		inputs:    repeat(typesys.Stringer, 1),
		expr:      "_ = {0}.String()",
		statement: true,
		eval: func(values []any) bool {
			if s, ok := values[0].(fmt.Stringer); ok {
				_ = s.String()
			}
			return true
		},
	}
}

func newHashNoPanic() Contract {
	return &property{
		name:      "hash-no-panic",
		inputs:    repeat(HasherType, 1),
		expr:      "_ = {0}.Hash()",
		statement: true,
		eval: func(values []any) bool {
			if h, ok := values[0].(Hasher); ok {
				_ = h.Hash()
			}
			return true
		},
	}
}

func newNotNull() Contract {
	return &property{
		name:      "not-null",
		inputs:    repeat(typesys.Any, 1),
		expr:      "assert.NotNil(t, {0})",
		statement: true,
		eval: func(values []any) bool {
			return !sequence.IsNil(values[0])
		},
	}
}
