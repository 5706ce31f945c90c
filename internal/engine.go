package internal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/classify"
	"github.com/gnolang/toracle/internal/contract"
	"github.com/gnolang/toracle/internal/generator"
	"github.com/gnolang/toracle/internal/predicate"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
)

// Engine classifies executed sequences. It is built once from a read-only
// configuration and may be shared between goroutines.
type Engine struct {
	config     tt.Config
	classifier *classify.Classifier
	contracts  *contract.Set
	visibility *predicate.PackageVisibility
	omit       *predicate.Omit
	logger     *zap.Logger

	validity   *generator.ValidityCheckingGenerator
	contract   *generator.ContractCheckingGenerator
	regression *generator.RegressionCaptureGenerator
}

// NewEngine validates cfg and assembles the generator pipeline.
func NewEngine(cfg tt.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	classifier, err := classify.New(cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	contracts, err := contract.NewSet(cfg.Contracts...)
	if err != nil {
		return nil, fmt.Errorf("contracts: %w", err)
	}
	omit, err := predicate.NewOmit(cfg.OmitOperations...)
	if err != nil {
		return nil, err
	}
	visibility := predicate.NewPackageVisibility(cfg.VisiblePackages...)

	e := &Engine{
		config:     cfg,
		classifier: classifier,
		contracts:  contracts,
		visibility: visibility,
		omit:       omit,
		logger:     logger,
	}
	e.validity = generator.NewValidityCheckingGenerator(
		classifier, cfg.ReportFlaky, cfg.InvalidChecksOverwrite, logger.Named("validity"))
	e.contract = generator.NewContractCheckingGenerator(
		contracts, classifier, cfg.InvalidChecksOverwrite, logger.Named("contracts"))
	expected := generator.NewExpectedExceptionCheckGen(visibility, classifier, cfg.IncludeAssertions)
	e.regression = generator.NewRegressionCaptureGenerator(expected, visibility, omit, generator.RegressionOptions{
		IncludeAssertions:     cfg.IncludeAssertions,
		StringMaxLen:          cfg.StringMaxLen,
		NondeterministicTypes: cfg.NondeterministicTypes,
	}, logger.Named("regression"))

	logger.Debug("Engine ready",
		zap.Int("contracts", contracts.Len()),
		zap.Bool("report_flaky", cfg.ReportFlaky),
		zap.Bool("include_assertions", cfg.IncludeAssertions))
	return e, nil
}

func (e *Engine) Config() tt.Config                { return e.config }
func (e *Engine) Classifier() *classify.Classifier { return e.classifier }
func (e *Engine) Contracts() *contract.Set         { return e.contracts }
func (e *Engine) Visibility() predicate.Visibility { return e.visibility }

// Pipeline returns the composed generator: validity, then contracts, then
// regression capture consulting observers.
func (e *Engine) Pipeline(observers generator.Observers) generator.TestCheckGenerator {
	return generator.Extend(e.logger,
		e.validity,
		e.contract,
		e.regression.WithObservers(observers),
	)
}

// Classify runs the pipeline over es.
func (e *Engine) Classify(es *sequence.ExecutableSequence, observers generator.Observers) (check.TestChecks, error) {
	if es == nil {
		return nil, sequence.ErrEmptySequence
	}
	return e.Pipeline(observers).Generate(es)
}

// Summarize classifies es and reduces the outcome to a Summary. Flaky
// sequences and harness defects are reported in the summary rather than
// returned, so that one bad sequence does not stop a batch.
func (e *Engine) Summarize(name string, es *sequence.ExecutableSequence, observers generator.Observers) tt.Summary {
	checks, err := e.Classify(es, observers)
	s := Summarize(checks, err)
	s.Sequence = name
	if es != nil {
		s.Source = es.String()
	}
	if err != nil {
		e.logger.Debug("Sequence not classified",
			zap.String("sequence", name),
			zap.Stringer("verdict", s.Verdict),
			zap.Error(err))
	}
	return s
}

// Summarize converts a classification result into a Summary.
func Summarize(checks check.TestChecks, err error) tt.Summary {
	var s tt.Summary
	if err != nil {
		var flaky *generator.SequenceError
		if errors.As(err, &flaky) {
			s.Verdict = tt.VerdictFlaky
		} else {
			s.Verdict = tt.VerdictInternalError
		}
		s.Error = err.Error()
		return s
	}
	switch {
	case checks.HasInvalidBehavior():
		s.Verdict = tt.VerdictInvalid
	case checks.HasErrorBehavior():
		s.Verdict = tt.VerdictErrorRevealing
	default:
		s.Verdict = tt.VerdictRegression
	}
	for _, r := range checks.Checks() {
		s.Checks = append(s.Checks, tt.CheckSummary{
			Kind:    r.Check.Kind().String(),
			ID:      r.Check.ID(),
			Passing: r.Passing,
			Pre:     r.Check.PreStatement(),
			Post:    r.Check.PostStatement(),
		})
	}
	return s
}
