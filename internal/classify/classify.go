// Package classify decides what a fault raised by the program under test
// means: an expected outcome, an error, or a sign of invalid inputs.
package classify

import (
	"fmt"

	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
)

// Classifier applies a fixed fault classification policy. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	expectedClasses map[sequence.FaultClass]bool
	expectedTypes   map[string]bool
	errorClasses    map[sequence.FaultClass]bool
	errorTypes      map[string]bool

	nilInputDereference tt.BehaviorType
	resourceExhaustion  tt.BehaviorType
}

// New builds a classifier from cfg.
func New(cfg tt.ClassifierConfig) (*Classifier, error) {
	expectedClasses, err := parseClasses(cfg.ExpectedClasses)
	if err != nil {
		return nil, fmt.Errorf("expected_classes: %w", err)
	}
	errorClasses, err := parseClasses(cfg.ErrorClasses)
	if err != nil {
		return nil, fmt.Errorf("error_classes: %w", err)
	}
	return &Classifier{
		expectedClasses:     expectedClasses,
		expectedTypes:       toSet(cfg.ExpectedTypes),
		errorClasses:        errorClasses,
		errorTypes:          toSet(cfg.ErrorTypes),
		nilInputDereference: cfg.NilInputDereference,
		resourceExhaustion:  cfg.ResourceExhaustion,
	}, nil
}

// Default returns the classifier for the default configuration.
func Default() *Classifier {
	c, err := New(tt.DefaultConfig().Classifier)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify classifies fault f raised by the statement at index of es. The
// policy, in order:
//
//  1. a fault documented for the operation, required for the call, or listed
//     as expected is EXPECTED
//  2. resource exhaustion gets the configured resource behavior
//  3. a nil dereference in a call that received a nil input gets the
//     configured nil input behavior
//  4. a fault listed as an error is ERROR
//  5. anything else is INVALID
func (c *Classifier) Classify(f *sequence.Fault, index int, es *sequence.ExecutableSequence) tt.BehaviorType {
	if c.isExpected(f, index, es) {
		return tt.BehaviorExpected
	}
	if f.Class.IsResourceExhaustion() {
		return c.resourceExhaustion
	}
	if f.Class == sequence.FaultNilDereference && inRange(es, index) && es.HasNilInput(index) {
		return c.nilInputDereference
	}
	if c.errorTypes[f.Type] || c.errorClasses[f.Class] {
		return tt.BehaviorError
	}
	return tt.BehaviorInvalid
}

// ClassifyOutcome classifies the outcome of the statement at index. ok is
// false when the statement did not raise a fault.
func (c *Classifier) ClassifyOutcome(es *sequence.ExecutableSequence, index int) (b tt.BehaviorType, ok bool) {
	exc, isExc := es.Result(index).(sequence.ExceptionalExecution)
	if !isExc {
		return 0, false
	}
	return c.Classify(exc.Fault, index, es), true
}

func (c *Classifier) isExpected(f *sequence.Fault, index int, es *sequence.ExecutableSequence) bool {
	if c.expectedTypes[f.Type] || c.expectedClasses[f.Class] {
		return true
	}
	if !inRange(es, index) {
		return false
	}
	return es.Sequence.Operation(index).Accepts(f) || es.Expectation(index).Requires(f)
}

// inRange reports whether index names a statement of es. Faults raised
// outside of any statement, such as by a contract, use a negative index.
func inRange(es *sequence.ExecutableSequence, index int) bool {
	return es != nil && index >= 0 && index < es.Size()
}

func parseClasses(names []string) (map[sequence.FaultClass]bool, error) {
	set := make(map[sequence.FaultClass]bool, len(names))
	for _, name := range names {
		class, err := sequence.ParseFaultClass(name)
		if err != nil {
			return nil, err
		}
		set[class] = true
	}
	return set, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
