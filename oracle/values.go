package oracle

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/typesys"
)

// objectSpec records a value of a non-primitive type. Objects with the same
// id within a sequence are the same value.
type objectSpec struct {
	ID string `yaml:"id"`
	// String is the result of String(); Hash the result of Hash().
	String string `yaml:"string"`
	Hash   uint64 `yaml:"hash"`
	// Equals lists the ids of objects this one reports equal to.
	Equals    []string `yaml:"equals"`
	EqualsNil bool     `yaml:"equals_nil"`
	// Compare maps object ids to the result of Compare.
	Compare map[string]int `yaml:"compare"`
	// Panics maps a protocol method to the fault it raises.
	Panics map[string]*sequence.Fault `yaml:"panics"`
	// Observations maps observer operation ids to their recorded result.
	Observations map[string]yaml.Node `yaml:"observations"`
}

type observation struct {
	value any
	fault *sequence.Fault
}

// traceObject is a recorded value of the program under test. It answers
// the value protocols from the recording.
type traceObject struct {
	id           string
	typ          typesys.Type
	str          string
	hash         uint64
	equals       map[string]bool
	equalsNil    bool
	compare      map[string]int
	panics       map[string]*sequence.Fault
	observations map[string]observation
}

func (o *traceObject) raise(method string) {
	if f, ok := o.panics[method]; ok {
		panic(f)
	}
}

func (o *traceObject) Equal(other any) bool {
	o.raise("Equal")
	p, ok := other.(*traceObject)
	if other == nil || (ok && p == nil) {
		return o.equalsNil
	}
	if !ok {
		return false
	}
	return p.id == o.id || o.equals[p.id]
}

func (o *traceObject) Hash() uint64 {
	o.raise("Hash")
	return o.hash
}

func (o *traceObject) Compare(other any) int {
	o.raise("Compare")
	p, ok := other.(*traceObject)
	if !ok || p == nil || p.id == o.id {
		return 0
	}
	return o.compare[p.id]
}

func (o *traceObject) String() string {
	o.raise("String")
	if o.str != "" {
		return o.str
	}
	name := "object"
	if o.typ != nil {
		_, name = splitQualified(o.typ.Name())
	}
	return fmt.Sprintf("%s{%s}", name, o.id)
}

// traceEnum is a recorded enumeration constant.
type traceEnum struct {
	typ  *typesys.ClassType
	name string
}

func (e traceEnum) String() string { return e.name }

// valueDecoder decodes the recorded values of one sequence.
type valueDecoder struct {
	types   *typeTable
	ops     map[string]*sequence.Operation
	objects map[string]*traceObject
}

func newValueDecoder(types *typeTable, ops map[string]*sequence.Operation) *valueDecoder {
	return &valueDecoder{
		types:   types,
		ops:     ops,
		objects: make(map[string]*traceObject),
	}
}

func (d *valueDecoder) outcome(spec outcomeSpec, op *sequence.Operation) (sequence.Outcome, error) {
	kind := spec.Kind
	if kind == "" {
		kind = "normal"
		if spec.Fault != nil {
			kind = "exceptional"
		}
	}
	switch kind {
	case "not-executed":
		return sequence.NotExecuted{}, nil
	case "exceptional":
		if spec.Fault == nil {
			return nil, fmt.Errorf("exceptional outcome without a fault")
		}
		return sequence.ExceptionalExecution{Fault: spec.Fault}, nil
	case "normal":
		rt := op.OutputType
		if spec.Type != "" {
			t, err := d.types.resolve(spec.Type)
			if err != nil {
				return nil, err
			}
			rt = t
		}
		if op.IsVoid() {
			return sequence.NormalExecution{Type: rt}, nil
		}
		v, err := d.decode(&spec.Value, rt)
		if err != nil {
			return nil, err
		}
		return sequence.NormalExecution{Value: v, Type: rt}, nil
	}
	return nil, fmt.Errorf("unknown outcome kind %q", kind)
}

func isNull(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// decode converts a recorded value to a value of type t.
func (d *valueDecoder) decode(node *yaml.Node, t typesys.Type) (any, error) {
	if isNull(node) {
		return nil, nil
	}
	if p, ok := t.(*typesys.PrimitiveType); ok {
		return decodePrimitive(node, p)
	}
	if ct, ok := t.(*typesys.ClassType); ok && ct.IsEnum() {
		var name string
		if err := node.Decode(&name); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadValue, t.Name(), err)
		}
		return traceEnum{typ: ct, name: name}, nil
	}
	if node.Kind == yaml.MappingNode {
		return d.object(node, t)
	}
	// A scalar held by a variable of interface type.
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	return v, nil
}

func (d *valueDecoder) object(node *yaml.Node, t typesys.Type) (*traceObject, error) {
	var spec objectSpec
	if err := node.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadValue, t.Name(), err)
	}
	if spec.ID == "" {
		spec.ID = fmt.Sprintf("obj%d", len(d.objects))
	}
	if obj, ok := d.objects[spec.ID]; ok {
		return obj, nil
	}

	obj := &traceObject{
		id:           spec.ID,
		typ:          t,
		str:          spec.String,
		hash:         spec.Hash,
		equals:       make(map[string]bool, len(spec.Equals)),
		equalsNil:    spec.EqualsNil,
		compare:      spec.Compare,
		panics:       spec.Panics,
		observations: make(map[string]observation, len(spec.Observations)),
	}
	for _, id := range spec.Equals {
		obj.equals[id] = true
	}
	for opID, n := range spec.Observations {
		op, ok := d.ops[opID]
		if !ok {
			return nil, fmt.Errorf("object %s: observation: %w: %q", spec.ID, ErrUnknownOperation, opID)
		}
		obs, err := d.observation(&n, op.OutputType)
		if err != nil {
			return nil, fmt.Errorf("object %s: observation %s: %w", spec.ID, opID, err)
		}
		obj.observations[opID] = obs
	}
	d.objects[spec.ID] = obj
	return obj, nil
}

// observation decodes a recorded observer result. A mapping with a fault
// key records a fault.
func (d *valueDecoder) observation(node *yaml.Node, t typesys.Type) (observation, error) {
	if node.Kind == yaml.MappingNode {
		var rec struct {
			Fault *sequence.Fault `yaml:"fault"`
		}
		if err := node.Decode(&rec); err == nil && rec.Fault != nil {
			return observation{fault: rec.Fault}, nil
		}
	}
	v, err := d.decode(node, t)
	if err != nil {
		return observation{}, err
	}
	return observation{value: v}, nil
}

func decodePrimitive(node *yaml.Node, p *typesys.PrimitiveType) (any, error) {
	var (
		v   any
		err error
	)
	switch p.Name() {
	case "bool":
		v, err = decodeAs[bool](node)
	case "string":
		v, err = decodeAs[string](node)
	case "int":
		v, err = decodeAs[int](node)
	case "int8":
		v, err = decodeAs[int8](node)
	case "int16":
		v, err = decodeAs[int16](node)
	case "int32":
		v, err = decodeAs[int32](node)
	case "int64":
		v, err = decodeAs[int64](node)
	case "uint":
		v, err = decodeAs[uint](node)
	case "uint8":
		v, err = decodeAs[uint8](node)
	case "uint16":
		v, err = decodeAs[uint16](node)
	case "uint32":
		v, err = decodeAs[uint32](node)
	case "uint64":
		v, err = decodeAs[uint64](node)
	case "float32":
		v, err = decodeAs[float32](node)
	case "float64":
		v, err = decodeAs[float64](node)
	default:
		return nil, fmt.Errorf("%w: unsupported primitive %s", ErrBadValue, p.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadValue, p.Name(), err)
	}
	return v, nil
}

func decodeAs[T any](node *yaml.Node) (T, error) {
	var v T
	err := node.Decode(&v)
	return v, err
}
