package typesys

// Universe interface types.
var (
	Error    = NewClassType("", "error", KindInterface)
	Stringer = NewClassType("fmt", "Stringer", KindInterface)
)

var universe = map[string]Type{
	"void":         Void,
	"any":          Any,
	"interface{}":  Any,
	"error":        Error,
	"fmt.Stringer": Stringer,
}

// LookupUniverse returns a predeclared or primitive type by name.
func LookupUniverse(name string) (Type, bool) {
	if p, ok := LookupPrimitive(name); ok {
		return p, true
	}
	t, ok := universe[name]
	return t, ok
}
