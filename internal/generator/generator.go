// Package generator turns an executed sequence into test checks.
//
// Generators run in a fixed order: validity checking decides whether the
// sequence is usable at all, contract checking looks for error-revealing
// behavior, and regression capture records what the sequence currently
// does. The first generator that produces checks decides the result.
package generator

import (
	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/sequence"
)

// TestCheckGenerator produces the checks of an executed sequence. The
// sequence is not modified.
type TestCheckGenerator interface {
	Generate(es *sequence.ExecutableSequence) (check.TestChecks, error)
}

// ExtendGenerator runs its generators in order and returns the first result
// that has checks, or the result of the last generator.
type ExtendGenerator struct {
	generators []TestCheckGenerator
	logger     *zap.Logger
}

// Extend composes generators into an ExtendGenerator.
func Extend(logger *zap.Logger, generators ...TestCheckGenerator) *ExtendGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtendGenerator{generators: generators, logger: logger}
}

func (g *ExtendGenerator) Generate(es *sequence.ExecutableSequence) (check.TestChecks, error) {
	var result check.TestChecks
	for i, gen := range g.generators {
		var err error
		result, err = gen.Generate(es)
		if err != nil {
			return nil, err
		}
		if result.HasChecks() {
			g.logger.Debug("Generator decided classification",
				zap.Int("stage", i),
				zap.Int("checks", result.Count()))
			return result, nil
		}
	}
	if result == nil {
		return check.NewRegressionChecks(), nil
	}
	return result, nil
}

// Observers indexes side-effect free single-argument operations by the name
// of the type they apply to.
type Observers map[string][]*sequence.Operation

// Add registers op as an observer of values of its single input type.
func (o Observers) Add(op *sequence.Operation) {
	if len(op.InputTypes) != 1 {
		return
	}
	name := op.InputTypes[0].Name()
	o[name] = append(o[name], op)
}

// For returns the observers of the named type in registration order.
func (o Observers) For(typeName string) []*sequence.Operation {
	return o[typeName]
}
