package typesys

import (
	"fmt"
	"strings"
)

// Kind distinguishes declared (non-primitive) types.
type Kind int

const (
	KindStruct Kind = iota
	KindInterface
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ClassType is a declared type, either non-generic or an instantiation of a
// GenericType.
type ClassType struct {
	pkg        string
	name       string
	kind       Kind
	supertypes []Type

	generic *GenericType
	args    []Type
}

// NewClassType declares a non-generic type. Supertypes are the interfaces the
// type implements and the types it embeds.
func NewClassType(pkg, name string, kind Kind, supertypes ...Type) *ClassType {
	return &ClassType{
		pkg:        pkg,
		name:       name,
		kind:       kind,
		supertypes: supertypes,
	}
}

// AddSupertype records an additional supertype. Used while a type universe
// is being assembled; types must not be mutated once handed to the engine.
func (c *ClassType) AddSupertype(t Type) {
	c.supertypes = append(c.supertypes, t)
}

func (c *ClassType) Name() string {
	if c.generic == nil {
		return qualify(c.pkg, c.name)
	}
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.Name()
	}
	return c.generic.Name() + "[" + strings.Join(args, ",") + "]"
}

func (c *ClassType) String() string { return c.Name() }

func (c *ClassType) IsVoid() bool      { return false }
func (c *ClassType) IsPrimitive() bool { return false }

func (c *ClassType) IsGeneric() bool {
	for _, a := range c.args {
		if a.IsGeneric() {
			return true
		}
	}
	return false
}

// Package returns the declaring package.
func (c *ClassType) Package() string {
	if c.generic != nil {
		return c.generic.pkg
	}
	return c.pkg
}

// SimpleName returns the unqualified name, without type arguments.
func (c *ClassType) SimpleName() string {
	if c.generic != nil {
		return c.generic.name
	}
	return c.name
}

func (c *ClassType) Kind() Kind {
	if c.generic != nil {
		return c.generic.kind
	}
	return c.kind
}

func (c *ClassType) IsEnum() bool      { return c.Kind() == KindEnum }
func (c *ClassType) IsInterface() bool { return c.Kind() == KindInterface }
func (c *ClassType) IsExported() bool  { return IsExportedName(c.SimpleName()) }

// Supertypes returns the direct supertypes in declaration order.
func (c *ClassType) Supertypes() []Type { return c.supertypes }

// GenericDeclaration returns the generic type this type instantiates, or nil.
func (c *ClassType) GenericDeclaration() *GenericType { return c.generic }

// TypeArguments returns the type arguments of an instantiated type.
func (c *ClassType) TypeArguments() []Type { return c.args }

// TypeSubstitution maps the type parameters of the generic declaration to
// the type arguments of this instantiation.
func (c *ClassType) TypeSubstitution() Substitution {
	if c.generic == nil {
		return Substitution{}
	}
	return NewSubstitution(c.generic.params, c.args)
}

func (c *ClassType) IsAssignableFrom(other Type) bool {
	if other == nil || other.IsVoid() {
		return false
	}
	if other.Name() == c.Name() {
		return true
	}
	found := false
	walkSupertypes(other, func(t Type) bool {
		if t.Name() == c.Name() {
			found = true
			return false
		}
		return true
	})
	return found
}

// MatchingSupertype returns the instantiation of g among this type and its
// transitive supertypes, in breadth-first declaration order, or nil.
func (c *ClassType) MatchingSupertype(g *GenericType) *ClassType {
	var match *ClassType
	walkSupertypes(c, func(t Type) bool {
		ct, ok := t.(*ClassType)
		if ok && ct.generic != nil && ct.generic.Name() == g.Name() {
			match = ct
			return false
		}
		return true
	})
	return match
}

func (c *ClassType) apply(s Substitution) Type {
	if c.generic == nil || s.IsEmpty() {
		return c
	}
	args := make([]Type, len(c.args))
	for i, a := range c.args {
		args[i] = a.apply(s)
	}
	inst, err := c.generic.Instantiate(args...)
	if err != nil {
		return c
	}
	return inst
}

// walkSupertypes visits t and its transitive supertypes breadth first. The
// visit stops when fn returns false.
func walkSupertypes(t Type, fn func(Type) bool) {
	seen := make(map[string]bool)
	queue := []Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur.Name()] {
			continue
		}
		seen[cur.Name()] = true
		if !fn(cur) {
			return
		}
		if ct, ok := cur.(*ClassType); ok {
			queue = append(queue, ct.supertypes...)
		}
	}
}

// GenericType is a generic type declaration such as Comparable[T].
type GenericType struct {
	pkg        string
	name       string
	kind       Kind
	params     []*TypeVariable
	supertypes []Type
}

// NewGenericType declares a generic type. Supertypes may mention params.
func NewGenericType(pkg, name string, kind Kind, params []*TypeVariable, supertypes ...Type) *GenericType {
	return &GenericType{
		pkg:        pkg,
		name:       name,
		kind:       kind,
		params:     params,
		supertypes: supertypes,
	}
}

func (g *GenericType) Name() string { return qualify(g.pkg, g.name) }

func (g *GenericType) String() string {
	params := make([]string, len(g.params))
	for i, p := range g.params {
		params[i] = p.Name()
	}
	return g.Name() + "[" + strings.Join(params, ",") + "]"
}

func (g *GenericType) IsVoid() bool      { return false }
func (g *GenericType) IsPrimitive() bool { return false }
func (g *GenericType) IsGeneric() bool   { return true }

// Params returns the type parameters.
func (g *GenericType) Params() []*TypeVariable { return g.params }

// IsAssignableFrom reports raw assignability: other instantiates g somewhere
// in its supertype closure.
func (g *GenericType) IsAssignableFrom(other Type) bool {
	ct, ok := other.(*ClassType)
	if !ok {
		return false
	}
	return ct.MatchingSupertype(g) != nil
}

func (g *GenericType) apply(Substitution) Type { return g }

// Instantiate creates the instantiation of g with the given type arguments.
func (g *GenericType) Instantiate(args ...Type) (*ClassType, error) {
	if len(args) != len(g.params) {
		return nil, fmt.Errorf("%s: expected %d type arguments, got %d", g.Name(), len(g.params), len(args))
	}
	inst := &ClassType{
		generic: g,
		args:    args,
	}
	subst := NewSubstitution(g.params, args)
	for _, st := range g.supertypes {
		inst.supertypes = append(inst.supertypes, st.apply(subst))
	}
	return inst, nil
}

// TypeVariable is a type parameter of a generic declaration. Variables are
// compared by identity.
type TypeVariable struct {
	name  string
	bound Type
}

// NewTypeVariable creates a type parameter with an optional bound.
func NewTypeVariable(name string, bound Type) *TypeVariable {
	return &TypeVariable{name: name, bound: bound}
}

func (v *TypeVariable) Name() string      { return v.name }
func (v *TypeVariable) String() string    { return v.name }
func (v *TypeVariable) IsVoid() bool      { return false }
func (v *TypeVariable) IsPrimitive() bool { return false }
func (v *TypeVariable) IsGeneric() bool   { return true }

func (v *TypeVariable) IsAssignableFrom(other Type) bool {
	if v.bound == nil {
		return other != nil && !other.IsVoid()
	}
	return v.bound.IsAssignableFrom(other)
}

func (v *TypeVariable) apply(s Substitution) Type {
	if t, ok := s.Get(v); ok {
		return t
	}
	return v
}
