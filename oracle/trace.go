package oracle

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/toracle/internal/contract"
	"github.com/gnolang/toracle/internal/generator"
	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/typesys"
)

var (
	ErrUnknownType        = errors.New("unknown type")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrDuplicate          = errors.New("duplicate declaration")
	ErrMissingObservation = errors.New("observation not recorded")
	ErrBadValue           = errors.New("value does not match its type")
)

// Trace is a parsed trace file.
type Trace struct {
	Sequences []NamedSequence
	// Observers are the operations marked as observers, with their results
	// replayed from the recorded observations of each object.
	Observers generator.Observers
}

// NamedSequence is an executed sequence of a trace.
type NamedSequence struct {
	Name string
	Exec *sequence.ExecutableSequence
}

type traceFile struct {
	Types      []typeSpec      `yaml:"types"`
	Operations []operationSpec `yaml:"operations"`
	Sequences  []sequenceSpec  `yaml:"sequences"`
}

type typeSpec struct {
	// Name is the package qualified name, e.g. "example.com/stack.Stack".
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Implements lists supertypes: declared types, universe types, the
	// protocols Equaler, Hasher and fmt.Stringer, and Comparable[T].
	Implements []string `yaml:"implements"`
}

type operationSpec struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Package        string   `yaml:"package"`
	Receiver       string   `yaml:"receiver"`
	Kind           string   `yaml:"kind"`
	Inputs         []string `yaml:"inputs"`
	Output         string   `yaml:"output"`
	AcceptedFaults []string `yaml:"accepted_faults"`
	Observer       bool     `yaml:"observer"`
}

type sequenceSpec struct {
	Name       string          `yaml:"name"`
	Statements []statementSpec `yaml:"statements"`
}

type statementSpec struct {
	Op          string                `yaml:"op"`
	Inputs      []int                 `yaml:"inputs"`
	Outcome     outcomeSpec           `yaml:"outcome"`
	Expectation *sequence.Expectation `yaml:"expectation"`
}

type outcomeSpec struct {
	// Kind is "normal", "exceptional" or "not-executed". It defaults to
	// exceptional when a fault is given and to normal otherwise.
	Kind string `yaml:"kind"`
	// Type is the runtime type of Value; defaults to the operation output.
	Type  string          `yaml:"type"`
	Value yaml.Node       `yaml:"value"`
	Fault *sequence.Fault `yaml:"fault"`
}

// LoadTrace reads and parses the trace file at path.
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trace, err := ParseTrace(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trace, nil
}

// ParseTrace parses a trace document.
func ParseTrace(data []byte) (*Trace, error) {
	var tf traceFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("error parsing trace: %w", err)
	}

	types, err := newTypeTable(tf.Types)
	if err != nil {
		return nil, err
	}
	ops, observers, err := buildOperations(tf.Operations, types)
	if err != nil {
		return nil, err
	}

	trace := &Trace{Observers: observers}
	for i, spec := range tf.Sequences {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("sequence-%d", i)
		}
		es, err := buildSequence(spec, types, ops)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", name, err)
		}
		trace.Sequences = append(trace.Sequences, NamedSequence{Name: name, Exec: es})
	}
	return trace, nil
}

// typeTable resolves type names against the declared types of a trace.
type typeTable struct {
	declared map[string]*typesys.ClassType
}

func newTypeTable(specs []typeSpec) (*typeTable, error) {
	t := &typeTable{declared: make(map[string]*typesys.ClassType, len(specs))}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("type without a name")
		}
		if _, dup := t.declared[s.Name]; dup {
			return nil, fmt.Errorf("%w: type %s", ErrDuplicate, s.Name)
		}
		kind, err := parseTypeKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", s.Name, err)
		}
		pkg, name := splitQualified(s.Name)
		t.declared[s.Name] = typesys.NewClassType(pkg, name, kind)
	}
	// Supertypes may refer to any declared type, so they are resolved once
	// every type exists.
	for _, s := range specs {
		ct := t.declared[s.Name]
		for _, super := range s.Implements {
			st, err := t.resolve(super)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", s.Name, err)
			}
			ct.AddSupertype(st)
		}
	}
	return t, nil
}

func (t *typeTable) resolve(name string) (typesys.Type, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "void" {
		return typesys.Void, nil
	}
	if ct, ok := t.declared[name]; ok {
		return ct, nil
	}
	if p, ok := contract.LookupProtocol(name); ok {
		return p, nil
	}
	if u, ok := typesys.LookupUniverse(name); ok {
		return u, nil
	}
	if i := strings.IndexByte(name, '['); i > 0 && strings.HasSuffix(name, "]") {
		g, ok := contract.LookupGenericProtocol(name[:i])
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		var args []typesys.Type
		for _, arg := range strings.Split(name[i+1:len(name)-1], ",") {
			at, err := t.resolve(arg)
			if err != nil {
				return nil, err
			}
			args = append(args, at)
		}
		inst, err := g.Instantiate(args...)
		if err != nil {
			return nil, err
		}
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func parseTypeKind(s string) (typesys.Kind, error) {
	switch s {
	case "", "struct":
		return typesys.KindStruct, nil
	case "interface":
		return typesys.KindInterface, nil
	case "enum":
		return typesys.KindEnum, nil
	}
	return 0, fmt.Errorf("unknown type kind %q", s)
}

func splitQualified(name string) (pkg, simple string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func buildOperations(
	specs []operationSpec,
	types *typeTable,
) (map[string]*sequence.Operation, generator.Observers, error) {
	ops := make(map[string]*sequence.Operation, len(specs))
	observers := generator.Observers{}
	for _, s := range specs {
		id := s.ID
		if id == "" {
			id = s.Name
		}
		if _, dup := ops[id]; dup {
			return nil, nil, fmt.Errorf("%w: operation %s", ErrDuplicate, id)
		}
		op, err := buildOperation(s, types)
		if err != nil {
			return nil, nil, fmt.Errorf("operation %s: %w", id, err)
		}
		if s.Observer {
			if len(op.InputTypes) != 1 || op.IsVoid() {
				return nil, nil, fmt.Errorf("operation %s: an observer takes one input and returns a value", id)
			}
			op.Invoke = replayObservation(id)
			observers.Add(op)
		}
		ops[id] = op
	}
	return ops, observers, nil
}

func buildOperation(s operationSpec, types *typeTable) (*sequence.Operation, error) {
	op := &sequence.Operation{
		Name:           s.Name,
		Package:        s.Package,
		Kind:           sequence.KindFunction,
		AcceptedFaults: s.AcceptedFaults,
	}
	if s.Receiver != "" {
		op.Kind = sequence.KindMethod
		recv, err := types.resolve(s.Receiver)
		if err != nil {
			return nil, err
		}
		op.Receiver = recv
		op.InputTypes = append(op.InputTypes, recv)
	}
	if s.Kind != "" {
		kind, err := sequence.ParseOperationKind(s.Kind)
		if err != nil {
			return nil, err
		}
		op.Kind = kind
	}
	for _, in := range s.Inputs {
		it, err := types.resolve(in)
		if err != nil {
			return nil, err
		}
		op.InputTypes = append(op.InputTypes, it)
	}
	out, err := types.resolve(s.Output)
	if err != nil {
		return nil, err
	}
	op.OutputType = out
	return op, nil
}

// replayObservation returns the recorded result of observer id on the
// object it is called with.
func replayObservation(id string) sequence.InvokeFunc {
	return func(args ...any) (any, error) {
		obj, ok := args[0].(*traceObject)
		if !ok {
			return nil, fmt.Errorf("%w: %s on a %T value", ErrMissingObservation, id, args[0])
		}
		obs, ok := obj.observations[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s on object %s", ErrMissingObservation, id, obj.id)
		}
		if obs.fault != nil {
			return nil, obs.fault
		}
		return obs.value, nil
	}
}

func buildSequence(
	spec sequenceSpec,
	types *typeTable,
	ops map[string]*sequence.Operation,
) (*sequence.ExecutableSequence, error) {
	stmts := make([]sequence.Statement, len(spec.Statements))
	for i, st := range spec.Statements {
		op, ok := ops[st.Op]
		if !ok {
			return nil, fmt.Errorf("statement %d: %w: %q", i, ErrUnknownOperation, st.Op)
		}
		stmts[i] = sequence.Statement{Op: op, Inputs: st.Inputs}
	}
	seq, err := sequence.NewSequence(stmts...)
	if err != nil {
		return nil, err
	}

	values := newValueDecoder(types, ops)
	outcomes := make([]sequence.Outcome, len(spec.Statements))
	expectations := make([]sequence.Expectation, len(spec.Statements))
	for i, st := range spec.Statements {
		outcome, err := values.outcome(st.Outcome, stmts[i].Op)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		outcomes[i] = outcome
		if st.Expectation != nil {
			expectations[i] = *st.Expectation
		}
	}

	es, err := sequence.NewExecutableSequence(seq, outcomes)
	if err != nil {
		return nil, err
	}
	return es.WithExpectations(expectations)
}
