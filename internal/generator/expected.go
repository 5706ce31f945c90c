package generator

import (
	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/classify"
	"github.com/gnolang/toracle/internal/predicate"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
)

// ExpectedExceptionCheckGen builds the exception check of a regression test
// whose final statement raised a fault.
type ExpectedExceptionCheckGen struct {
	visibility        predicate.Visibility
	classifier        *classify.Classifier
	includeAssertions bool
}

func NewExpectedExceptionCheckGen(
	visibility predicate.Visibility,
	classifier *classify.Classifier,
	includeAssertions bool,
) *ExpectedExceptionCheckGen {
	return &ExpectedExceptionCheckGen{
		visibility:        visibility,
		classifier:        classifier,
		includeAssertions: includeAssertions,
	}
}

// ExceptionCheck returns an ExpectedExceptionCheck when the fault is an
// expected outcome and assertions are enabled, an EmptyExceptionCheck
// otherwise.
func (g *ExpectedExceptionCheckGen) ExceptionCheck(
	es *sequence.ExecutableSequence,
	index int,
	fault *sequence.Fault,
) check.ExceptionCheck {
	catchType := g.CatchType(fault)
	if g.includeAssertions && g.classifier.Classify(fault, index, es) == tt.BehaviorExpected {
		return check.NewExpectedExceptionCheck(fault, index, catchType)
	}
	return check.NewEmptyExceptionCheck(fault, index, catchType)
}

// CatchType names the fault in test code: its own type when visible,
// otherwise error for returned errors and any for panics.
func (g *ExpectedExceptionCheckGen) CatchType(fault *sequence.Fault) string {
	if g.visibility.IsVisibleName(fault.Type) {
		return fault.Type
	}
	if fault.Class == sequence.FaultChecked {
		return check.CatchError
	}
	return check.CatchAny
}

// Generate returns RegressionChecks holding the exception check of the
// final statement, or no checks when it returned normally.
func (g *ExpectedExceptionCheckGen) Generate(es *sequence.ExecutableSequence) (check.TestChecks, error) {
	checks := check.NewRegressionChecks()
	last := es.LastIndex()
	exc, ok := es.Result(last).(sequence.ExceptionalExecution)
	if !ok {
		return checks, nil
	}
	if err := checks.Add(g.ExceptionCheck(es, last, exc.Fault)); err != nil {
		return nil, internalError("expected exception", err)
	}
	return checks, nil
}
