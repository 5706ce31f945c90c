// Package contract implements correctness properties checked over tuples of
// runtime values, and the value conditions used by regression assertions.
package contract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/typesys"
)

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrArityMismatch   = errors.New("tuple size does not match contract arity")
)

// Contract is a property of Arity values whose types are assignable to
// InputTypes. Input types may be generic; all generic inputs of one tuple
// must resolve to the same type arguments.
type Contract interface {
	check.Condition
	Arity() int
	InputTypes() []typesys.Type
}

type constructor func() Contract

// allContractConstructors maps contract names to their constructors.
var allContractConstructors = map[string]constructor{
	"equals-reflexive":      newEqualsReflexive,
	"equals-nil":            newEqualsNil,
	"equals-symmetric":      newEqualsSymmetric,
	"equals-hashcode":       newEqualsHashCode,
	"equals-transitive":     newEqualsTransitive,
	"compare-reflexive":     newCompareReflexive,
	"compare-antisymmetric": newCompareAntisymmetric,
	"compare-transitive":    newCompareTransitive,
	"string-no-panic":       newStringNoPanic,
	"hash-no-panic":         newHashNoPanic,
	"not-null":              newNotNull,
}

// Lookup returns a new instance of the named contract.
func Lookup(name string) (Contract, error) {
	newContract, ok := allContractConstructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	return newContract(), nil
}

// Names returns the names of all registered contracts, sorted.
func Names() []string {
	names := make([]string, 0, len(allContractConstructors))
	for name := range allContractConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set is a contract catalog. Contracts are kept in the order they were
// added, which is the order they are evaluated in.
type Set struct {
	contracts []Contract
}

// NewSet builds a catalog from contract names.
func NewSet(names ...string) (*Set, error) {
	s := &Set{}
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		s.Add(c)
	}
	return s, nil
}

// Add appends c to the catalog.
func (s *Set) Add(c Contract) {
	s.contracts = append(s.contracts, c)
}

// WithArity returns the contracts of the given arity in catalog order.
func (s *Set) WithArity(arity int) []Contract {
	var out []Contract
	for _, c := range s.contracts {
		if c.Arity() == arity {
			out = append(out, c)
		}
	}
	return out
}

// MaxArity returns the largest arity in the catalog.
func (s *Set) MaxArity() int {
	n := 0
	for _, c := range s.contracts {
		if c.Arity() > n {
			n = c.Arity()
		}
	}
	return n
}

func (s *Set) Len() int        { return len(s.contracts) }
func (s *Set) IsEmpty() bool   { return len(s.contracts) == 0 }
func (s *Set) All() []Contract { return s.contracts }
