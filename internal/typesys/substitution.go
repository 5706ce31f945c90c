package typesys

import "strings"

// Substitution is an immutable mapping from type variables to types.
type Substitution struct {
	vars  []*TypeVariable
	types map[*TypeVariable]Type
}

// NewSubstitution pairs params with args positionally. Extra entries on
// either side are ignored.
func NewSubstitution(params []*TypeVariable, args []Type) Substitution {
	s := Substitution{types: make(map[*TypeVariable]Type, len(params))}
	for i, p := range params {
		if i >= len(args) {
			break
		}
		s.vars = append(s.vars, p)
		s.types[p] = args[i]
	}
	return s
}

// Get returns the type bound to v.
func (s Substitution) Get(v *TypeVariable) (Type, bool) {
	t, ok := s.types[v]
	return t, ok
}

func (s Substitution) IsEmpty() bool { return len(s.vars) == 0 }

// Variables returns the bound variables in binding order.
func (s Substitution) Variables() []*TypeVariable { return s.vars }

// IsConsistentWith reports whether every variable bound by both s and other
// is bound to the same type.
func (s Substitution) IsConsistentWith(other Substitution) bool {
	for _, v := range other.vars {
		if t, ok := s.types[v]; ok && !Equal(t, other.types[v]) {
			return false
		}
	}
	return true
}

// Extend returns a new substitution with the bindings of s followed by the
// bindings of other that s does not already have.
func (s Substitution) Extend(other Substitution) Substitution {
	out := Substitution{types: make(map[*TypeVariable]Type, len(s.vars)+len(other.vars))}
	for _, v := range s.vars {
		out.vars = append(out.vars, v)
		out.types[v] = s.types[v]
	}
	for _, v := range other.vars {
		if _, ok := out.types[v]; ok {
			continue
		}
		out.vars = append(out.vars, v)
		out.types[v] = other.types[v]
	}
	return out
}

func (s Substitution) String() string {
	parts := make([]string, len(s.vars))
	for i, v := range s.vars {
		parts[i] = v.Name() + "=" + s.types[v].Name()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
