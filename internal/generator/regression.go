package generator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/contract"
	"github.com/gnolang/toracle/internal/predicate"
	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/typesys"
)

// RegressionOptions configures regression capture.
type RegressionOptions struct {
	IncludeAssertions bool
	// StringMaxLen is the longest string captured. Zero disables the limit.
	StringMaxLen int
	// NondeterministicTypes names types whose values differ between runs.
	NondeterministicTypes []string
}

// RegressionCaptureGenerator records the current behavior of a sequence as
// regression assertions: the values it computes and the fault its final
// statement raises.
type RegressionCaptureGenerator struct {
	expected   *ExpectedExceptionCheckGen
	visibility predicate.Visibility
	omit       *predicate.Omit
	observers  Observers

	includeAssertions bool
	stringMaxLen      int
	nondeterministic  map[string]bool

	logger *zap.Logger
}

func NewRegressionCaptureGenerator(
	expected *ExpectedExceptionCheckGen,
	visibility predicate.Visibility,
	omit *predicate.Omit,
	opts RegressionOptions,
	logger *zap.Logger,
) *RegressionCaptureGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	nondeterministic := make(map[string]bool, len(opts.NondeterministicTypes))
	for _, name := range opts.NondeterministicTypes {
		nondeterministic[name] = true
	}
	return &RegressionCaptureGenerator{
		expected:          expected,
		visibility:        visibility,
		omit:              omit,
		includeAssertions: opts.IncludeAssertions,
		stringMaxLen:      opts.StringMaxLen,
		nondeterministic:  nondeterministic,
		logger:            logger,
	}
}

// WithObservers returns a copy of g that consults observers when capturing
// values of non-primitive types.
func (g *RegressionCaptureGenerator) WithObservers(observers Observers) *RegressionCaptureGenerator {
	c := *g
	c.observers = observers
	return &c
}

func (g *RegressionCaptureGenerator) Generate(es *sequence.ExecutableSequence) (check.TestChecks, error) {
	checks := check.NewRegressionChecks()
	last := es.LastIndex()
	for i := 0; i < es.Size(); i++ {
		switch out := es.Result(i).(type) {
		case sequence.NotExecuted:
			return nil, internalErrorf("regression", "statement %d was not executed", i)
		case sequence.ExceptionalExecution:
			if i != last {
				return nil, internalErrorf("regression", "statement %d raised %s before the final statement", i, out.Fault)
			}
			if err := checks.Add(g.expected.ExceptionCheck(es, i, out.Fault)); err != nil {
				return nil, internalError("regression", err)
			}
		case sequence.NormalExecution:
			if !g.includeAssertions {
				continue
			}
			if err := g.capture(es, i, out, checks); err != nil {
				return nil, err
			}
		}
	}
	return checks, nil
}

// capture adds the assertions describing the value of statement i.
func (g *RegressionCaptureGenerator) capture(
	es *sequence.ExecutableSequence,
	i int,
	out sequence.NormalExecution,
	checks *check.RegressionChecks,
) error {
	op := es.Sequence.Operation(i)
	// Literals are their own assertion.
	if op.IsLiteral() || op.IsVoid() {
		return nil
	}
	v := es.Sequence.Variable(i)
	value := out.Value

	if sequence.IsNil(value) {
		return g.add(checks, check.NewObjectCheck(contract.IsNull{}, v))
	}

	if isPrimitiveValue(value) {
		if s, ok := value.(string); ok && !g.textOK(s, i) {
			return nil
		}
		if g.nondeterministicSource(es, i) {
			g.logger.Debug("Skipping value computed from a nondeterministic source", zap.Int("index", i))
			return nil
		}
		mode := contract.CompareValue
		if v.Type != nil && v.Type.IsPrimitive() {
			mode = contract.CompareIdentity
		}
		return g.add(checks, check.NewObjectCheck(contract.PrimValue{Value: value, Mode: mode}, v))
	}

	if enum := g.enumValue(es.RuntimeType(i), value); enum != nil {
		return g.add(checks, check.NewObjectCheck(*enum, v))
	}

	if !op.IsConstructor() {
		if err := g.add(checks, check.NewObjectCheck(contract.IsNotNull{}, v)); err != nil {
			return err
		}
	}
	if v.Type == nil {
		return nil
	}
	for _, obs := range g.observers.For(v.Type.Name()) {
		if !g.isAssertable(obs) {
			continue
		}
		if err := g.observe(checks, obs, v, value); err != nil {
			return err
		}
	}
	return nil
}

func (g *RegressionCaptureGenerator) observe(
	checks *check.RegressionChecks,
	obs *sequence.Operation,
	v sequence.Variable,
	value any,
) error {
	var result any
	switch out := obs.Execute(value).(type) {
	case sequence.NormalExecution:
		result = out.Value
	case sequence.ExceptionalExecution:
		return internalErrorf("regression", "observer %s raised %s on %s", obs.Signature(), out.Fault, v)
	default:
		return internalErrorf("regression", "observer %s could not be invoked on %s", obs.Signature(), v)
	}
	if s, ok := result.(string); ok && !g.textOK(s, v.Index) {
		return nil
	}
	cond := contract.ObserverEqValue{Observer: obs, Value: result}
	if ct, ok := obs.OutputType.(*typesys.ClassType); ok && ct.IsEnum() {
		cond.Enum = g.enumValue(ct, result)
	}
	g.logger.Debug("Adding observer check",
		zap.String("observer", obs.Signature()),
		zap.String("var", v.Name()))
	return g.add(checks, check.NewObjectCheck(cond, v))
}

// isAssertable reports whether obs can be called in an assertion: it is
// visible, not omitted, takes only the observed value and returns a
// primitive, string or enumeration value.
func (g *RegressionCaptureGenerator) isAssertable(obs *sequence.Operation) bool {
	if g.omit.ShouldOmit(obs) || !g.visibility.IsVisibleOperation(obs) {
		return false
	}
	if len(obs.InputTypes) != 1 || obs.IsVoid() {
		return false
	}
	if obs.OutputType.IsPrimitive() {
		return true
	}
	ct, ok := obs.OutputType.(*typesys.ClassType)
	return ok && ct.IsEnum() && g.visibility.IsVisibleType(ct)
}

// enumValue returns the enumeration condition for value, or nil when t is
// not a visible enumeration type or value cannot name its constant.
func (g *RegressionCaptureGenerator) enumValue(t typesys.Type, value any) *contract.EnumValue {
	ct, ok := t.(*typesys.ClassType)
	if !ok || !ct.IsEnum() || !g.visibility.IsVisibleType(ct) {
		return nil
	}
	s, ok := value.(fmt.Stringer)
	if !ok {
		return nil
	}
	return &contract.EnumValue{Type: ct, Const: s.String(), Value: value}
}

// nondeterministicSource reports whether statement i computes its value from
// a single value of a nondeterministic type created in the sequence.
func (g *RegressionCaptureGenerator) nondeterministicSource(es *sequence.ExecutableSequence, i int) bool {
	inputs := es.Sequence.Inputs(i)
	if len(inputs) != 1 || inputs[0].Type == nil {
		return false
	}
	in := inputs[0]
	return g.nondeterministic[in.Type.Name()] && es.Sequence.Operation(in.Index).IsConstructor()
}

func (g *RegressionCaptureGenerator) textOK(s string, index int) bool {
	if sequence.LooksLikeObjectRendering(s) {
		g.logger.Debug("Skipping string that renders an object identity", zap.Int("index", index))
		return false
	}
	if !sequence.StringLengthOK(s, g.stringMaxLen) {
		g.logger.Debug("Skipping string longer than the limit",
			zap.Int("index", index),
			zap.Int("length", len(s)),
			zap.Int("limit", g.stringMaxLen))
		return false
	}
	return true
}

func (g *RegressionCaptureGenerator) add(checks *check.RegressionChecks, c check.Check) error {
	if err := checks.Add(c); err != nil {
		return internalError("regression", err)
	}
	return nil
}

// isPrimitiveValue reports whether v has a predeclared boolean, numeric or
// string type.
func isPrimitiveValue(v any) bool {
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
