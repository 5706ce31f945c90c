package generator

import (
	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/classify"
	"github.com/gnolang/toracle/internal/contract"
	"github.com/gnolang/toracle/internal/sequence"
	"github.com/gnolang/toracle/internal/tuple"
	tt "github.com/gnolang/toracle/internal/types"
)

// ContractCheckingGenerator looks for behavior of the final statement that
// reveals an error: a fault classified as an error, a missing required
// fault, or a violated contract.
type ContractCheckingGenerator struct {
	contracts  *contract.Set
	classifier *classify.Classifier
	overwrite  bool
	logger     *zap.Logger
}

func NewContractCheckingGenerator(
	contracts *contract.Set,
	classifier *classify.Classifier,
	overwrite bool,
	logger *zap.Logger,
) *ContractCheckingGenerator {
	if contracts == nil {
		contracts = &contract.Set{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractCheckingGenerator{
		contracts:  contracts,
		classifier: classifier,
		overwrite:  overwrite,
		logger:     logger,
	}
}

func (g *ContractCheckingGenerator) Generate(es *sequence.ExecutableSequence) (check.TestChecks, error) {
	last := es.LastIndex()
	switch out := es.Result(last).(type) {
	case sequence.NotExecuted:
		return nil, internalErrorf("contracts", "final statement %d was not executed", last)
	case sequence.ExceptionalExecution:
		if g.classifier.Classify(out.Fault, last, es) == tt.BehaviorError {
			return g.singleton(check.NewNoExceptionCheck(last, out.Fault.Type))
		}
		return check.NewErrorRevealingChecks(), nil
	}

	exp := es.Expectation(last)
	switch {
	case len(exp.RequiredFaults) > 0:
		return g.singleton(check.NewMissingExceptionCheck(last, exp.RequiredFaults))
	case exp.PreconditionViolated:
		return g.singleton(check.NewInvalidValueCheck(last))
	}

	if g.contracts.IsEmpty() {
		return check.NewErrorRevealingChecks(), nil
	}

	lastValues := es.LastStatementValues()
	unary := tuple.NewSet[sequence.ReferenceValue]().Extend(lastValues)
	if checks, err := g.checkContracts(es, 1, unary); err != nil || checks.HasChecks() {
		return checks, err
	}

	inputValues := es.InputValues()
	binary := tuple.NewSet[sequence.ReferenceValue]().Extend(inputValues).Extend(inputValues)
	if checks, err := g.checkContracts(es, 2, binary); err != nil || checks.HasChecks() {
		return checks, err
	}

	ternary := binary.ExhaustivelyExtend(lastValues)
	return g.checkContracts(es, 3, ternary)
}

// checkContracts evaluates the contracts of the given arity over tuples. For
// each tuple in order, each contract is tried in catalog order; the first
// check produced is the result.
func (g *ContractCheckingGenerator) checkContracts(
	es *sequence.ExecutableSequence,
	arity int,
	tuples tuple.Set[sequence.ReferenceValue],
) (check.TestChecks, error) {
	contracts := g.contracts.WithArity(arity)
	if len(contracts) == 0 {
		return check.NewErrorRevealingChecks(), nil
	}
	for _, values := range tuples.Tuples() {
		if len(values) != arity {
			return nil, internalErrorf("contracts", "tuple of %d values for arity %d", len(values), arity)
		}
		for _, c := range contracts {
			if !contract.TypesMatch(c.InputTypes(), values) {
				continue
			}
			chk, err := contract.CheckContract(c, values, es, g.classifier)
			if err != nil {
				return nil, internalError("contracts", err)
			}
			if chk == nil {
				continue
			}
			g.logger.Debug("Contract produced a check",
				zap.String("contract", c.Name()),
				zap.Int("arity", arity),
				zap.String("check", chk.ID()))
			return g.singleton(chk)
		}
	}
	return check.NewErrorRevealingChecks(), nil
}

// singleton wraps c in the container matching its kind: invalid markers go
// to InvalidChecks, everything else reveals an error.
func (g *ContractCheckingGenerator) singleton(c check.Check) (check.TestChecks, error) {
	var checks check.TestChecks
	switch c.Kind() {
	case check.KindInvalidException, check.KindInvalidValue:
		checks = check.NewInvalidChecks(g.overwrite)
	default:
		checks = check.NewErrorRevealingChecks()
	}
	if err := checks.Add(c); err != nil {
		return nil, internalError("contracts", err)
	}
	return checks, nil
}
