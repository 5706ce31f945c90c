// Package predicate decides which types and operations generated tests may
// refer to.
package predicate

import (
	"fmt"
	"regexp"

	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/typesys"
)

// Visibility decides whether test code can name a type or an operation.
type Visibility interface {
	// IsVisibleName reports whether a qualified type name, as rendered for a
	// fault, can appear in test code.
	IsVisibleName(name string) bool
	IsVisibleType(t typesys.Type) bool
	IsVisibleOperation(op *sequence.Operation) bool
}

// PackageVisibility makes exported names visible everywhere and unexported
// names visible in the listed packages, where the generated tests live.
type PackageVisibility struct {
	packages *pathTrie
}

// NewPackageVisibility builds a visibility predicate. Patterns are package
// paths, optionally ending in "/..." to include subpackages.
func NewPackageVisibility(patterns ...string) *PackageVisibility {
	trie := newPathTrie()
	for _, p := range patterns {
		trie.Insert(p)
	}
	return &PackageVisibility{packages: trie}
}

// PublicOnly is the visibility of tests living outside the program under test.
func PublicOnly() *PackageVisibility { return NewPackageVisibility() }

// IsVisibleName reports whether the qualified name is visible.
func (v *PackageVisibility) IsVisibleName(name string) bool {
	if typesys.IsExportedName(name) {
		return true
	}
	pkg := typesys.PackageOf(name)
	return pkg == "" || v.packages.Match(pkg)
}

func (v *PackageVisibility) IsVisibleType(t typesys.Type) bool {
	switch tt := t.(type) {
	case *typesys.ClassType:
		if !v.visibleIn(tt.Package(), tt.IsExported()) {
			return false
		}
		for _, arg := range tt.TypeArguments() {
			if !v.IsVisibleType(arg) {
				return false
			}
		}
		return true
	case *typesys.GenericType:
		return v.IsVisibleName(tt.Name())
	default:
		return true
	}
}

func (v *PackageVisibility) IsVisibleOperation(op *sequence.Operation) bool {
	if op.Receiver != nil && !v.IsVisibleType(op.Receiver) {
		return false
	}
	pkg := op.Package
	if pkg == "" && op.Receiver != nil {
		pkg = typesys.PackageOf(op.Receiver.Name())
	}
	return v.visibleIn(pkg, op.IsExported())
}

func (v *PackageVisibility) visibleIn(pkg string, exported bool) bool {
	return exported || pkg == "" || v.packages.Match(pkg)
}

// Omit matches operations that must not be called by generated tests.
type Omit struct {
	patterns []*regexp.Regexp
}

// NewOmit compiles the patterns, which are matched against operation
// signatures.
func NewOmit(patterns ...string) (*Omit, error) {
	o := &Omit{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("omit pattern %q: %w", p, err)
		}
		o.patterns = append(o.patterns, re)
	}
	return o, nil
}

// ShouldOmit reports whether op matches any pattern.
func (o *Omit) ShouldOmit(op *sequence.Operation) bool {
	if o == nil {
		return false
	}
	sig := op.Signature()
	for _, re := range o.patterns {
		if re.MatchString(sig) {
			return true
		}
	}
	return false
}
