package contract

import "github.com/gnolang/toracle/internal/typesys"

// Value protocols that the default contracts are written against. A value of
// the program under test takes part in a contract when it implements the
// protocol at runtime and its type declares the matching supertype.
type (
	Equaler interface {
		Equal(other any) bool
	}
	Hasher interface {
		Hash() uint64
	}
	Comparer interface {
		Compare(other any) int
	}
)

var (
	EqualerType = typesys.NewClassType("", "Equaler", typesys.KindInterface)
	HasherType  = typesys.NewClassType("", "Hasher", typesys.KindInterface)

	// ComparableParam is the type parameter of ComparableType.
	ComparableParam = typesys.NewTypeVariable("T", nil)
	// ComparableType is Comparable[T]: values comparable with values of
	// type T.
	ComparableType = typesys.NewGenericType("", "Comparable", typesys.KindInterface,
		[]*typesys.TypeVariable{ComparableParam})

	comparableT = mustInstantiate(ComparableType, ComparableParam)
)

var protocolTypes = map[string]typesys.Type{
	"Equaler":      EqualerType,
	"Hasher":       HasherType,
	"fmt.Stringer": typesys.Stringer,
}

// LookupProtocol returns the non-generic protocol type with the given name.
func LookupProtocol(name string) (typesys.Type, bool) {
	t, ok := protocolTypes[name]
	return t, ok
}

// LookupGenericProtocol returns the generic protocol declaration with the
// given name.
func LookupGenericProtocol(name string) (*typesys.GenericType, bool) {
	if name == ComparableType.Name() {
		return ComparableType, true
	}
	return nil, false
}

func mustInstantiate(g *typesys.GenericType, args ...typesys.Type) *typesys.ClassType {
	t, err := g.Instantiate(args...)
	if err != nil {
		panic(err)
	}
	return t
}
