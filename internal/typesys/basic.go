package typesys

// PrimitiveType is a predeclared value type. Values of primitive static type
// are compared by identity in regression assertions.
type PrimitiveType struct {
	name string
}

var (
	Bool    = &PrimitiveType{name: "bool"}
	Int     = &PrimitiveType{name: "int"}
	Int8    = &PrimitiveType{name: "int8"}
	Int16   = &PrimitiveType{name: "int16"}
	Int32   = &PrimitiveType{name: "int32"}
	Int64   = &PrimitiveType{name: "int64"}
	Uint    = &PrimitiveType{name: "uint"}
	Uint8   = &PrimitiveType{name: "uint8"}
	Uint16  = &PrimitiveType{name: "uint16"}
	Uint32  = &PrimitiveType{name: "uint32"}
	Uint64  = &PrimitiveType{name: "uint64"}
	Float32 = &PrimitiveType{name: "float32"}
	Float64 = &PrimitiveType{name: "float64"}
	String  = &PrimitiveType{name: "string"}

	// Byte and Rune are aliases, as in Go.
	Byte = Uint8
	Rune = Int32
)

var primitives = map[string]*PrimitiveType{
	"bool": Bool, "int": Int, "int8": Int8, "int16": Int16, "int32": Int32, "int64": Int64,
	"uint": Uint, "uint8": Uint8, "uint16": Uint16, "uint32": Uint32, "uint64": Uint64,
	"float32": Float32, "float64": Float64, "string": String,
	"byte": Byte, "rune": Rune,
}

// LookupPrimitive returns the primitive type with the given name.
func LookupPrimitive(name string) (*PrimitiveType, bool) {
	p, ok := primitives[name]
	return p, ok
}

func (p *PrimitiveType) Name() string      { return p.name }
func (p *PrimitiveType) String() string    { return p.name }
func (p *PrimitiveType) IsVoid() bool      { return false }
func (p *PrimitiveType) IsPrimitive() bool { return true }
func (p *PrimitiveType) IsGeneric() bool   { return false }

func (p *PrimitiveType) IsAssignableFrom(other Type) bool {
	return other != nil && other.Name() == p.name
}

func (p *PrimitiveType) apply(Substitution) Type { return p }

// IsText reports whether the type is the string type.
func (p *PrimitiveType) IsText() bool { return p == String }

type voidType struct{}

// Void is the output type of operations that produce no value.
var Void Type = voidType{}

func (voidType) Name() string               { return "void" }
func (voidType) String() string             { return "void" }
func (voidType) IsVoid() bool               { return true }
func (voidType) IsPrimitive() bool          { return false }
func (voidType) IsGeneric() bool            { return false }
func (voidType) IsAssignableFrom(Type) bool { return false }
func (v voidType) apply(Substitution) Type  { return v }

type anyType struct{}

// Any is the empty interface. Every non-void type is assignable to it.
var Any Type = anyType{}

func (anyType) Name() string      { return "any" }
func (anyType) String() string    { return "any" }
func (anyType) IsVoid() bool      { return false }
func (anyType) IsPrimitive() bool { return false }
func (anyType) IsGeneric() bool   { return false }

func (anyType) IsAssignableFrom(other Type) bool {
	return other != nil && !other.IsVoid()
}

func (a anyType) apply(Substitution) Type { return a }
