// Package typesys models the nominal type system of the program under test.
//
// The engine never inspects the program under test directly. Types are
// reported by the external discovery and execution stages and are compared by
// their canonical names. The model covers what oracle synthesis needs:
//
//   - primitive types and void, to decide what regression values look like
//   - class, interface and enum types with declared supertypes
//   - generic declarations, type variables and their instantiations, so that
//     contracts declared over generic inputs can be matched against runtime
//     values with consistent substitutions
package typesys

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type is a type of the program under test.
type Type interface {
	// Name returns the canonical, package-qualified name of the type.
	Name() string
	String() string

	IsVoid() bool
	IsPrimitive() bool

	// IsGeneric reports whether the type mentions unbound type variables.
	IsGeneric() bool

	// IsAssignableFrom reports whether a value of type other can be used
	// where this type is expected.
	IsAssignableFrom(other Type) bool

	// apply returns the type with the substitution applied.
	apply(s Substitution) Type
}

// Equal reports whether a and b denote the same type.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// IsExportedName reports whether the last element of a qualified name starts
// with an upper case letter.
func IsExportedName(name string) bool {
	name = strings.TrimLeft(name, "*[]")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// PackageOf returns the package part of a qualified name, or "" for
// universe names.
func PackageOf(name string) string {
	name = strings.TrimLeft(name, "*[]")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
