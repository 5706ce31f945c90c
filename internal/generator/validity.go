package generator

import (
	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/classify"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
)

// ValidityCheckingGenerator decides whether an executed sequence is usable
// as a test. It returns empty InvalidChecks for usable sequences.
type ValidityCheckingGenerator struct {
	classifier  *classify.Classifier
	reportFlaky bool
	overwrite   bool
	logger      *zap.Logger
}

// NewValidityCheckingGenerator creates the generator. With reportFlaky set,
// a fault raised before the final statement is reported as a
// *SequenceError instead of making the sequence invalid.
func NewValidityCheckingGenerator(
	classifier *classify.Classifier,
	reportFlaky bool,
	overwrite bool,
	logger *zap.Logger,
) *ValidityCheckingGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidityCheckingGenerator{
		classifier:  classifier,
		reportFlaky: reportFlaky,
		overwrite:   overwrite,
		logger:      logger,
	}
}

func (g *ValidityCheckingGenerator) Generate(es *sequence.ExecutableSequence) (check.TestChecks, error) {
	checks := check.NewInvalidChecks(g.overwrite)
	last := es.LastIndex()
	for i := 0; i < es.Size(); i++ {
		switch out := es.Result(i).(type) {
		case sequence.NotExecuted:
			return nil, internalErrorf("validity", "statement %d of %d was not executed", i, es.Size())
		case sequence.ExceptionalExecution:
			fault := out.Fault
			if i != last {
				return g.nonFinalFault(es, checks, i, fault)
			}
			if g.classifier.Classify(fault, i, es) != tt.BehaviorInvalid {
				return checks, nil
			}
			if err := checks.Add(check.NewInvalidExceptionCheck(fault, i, fault.Type)); err != nil {
				return nil, internalError("validity", err)
			}
			return checks, nil
		}
	}
	return checks, nil
}

func (g *ValidityCheckingGenerator) nonFinalFault(
	es *sequence.ExecutableSequence,
	checks *check.InvalidChecks,
	index int,
	fault *sequence.Fault,
) (check.TestChecks, error) {
	if g.reportFlaky && !fault.Class.IsResourceExhaustion() {
		return nil, &SequenceError{Index: index, Fault: fault, Sequence: es.String()}
	}
	g.logger.Debug("Fault before final statement, sequence is invalid",
		zap.Int("index", index),
		zap.String("fault", fault.Type),
		zap.Stringer("class", fault.Class))
	if err := checks.Add(check.NewInvalidExceptionCheck(fault, index, fault.Type)); err != nil {
		return nil, internalError("validity", err)
	}
	return checks, nil
}
