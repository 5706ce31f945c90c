// Package internal provides the classification engine of toracle.
//
// The engine decides, for one executed sequence of operation calls, what the
// test derived from it should check. It runs three generators in order and
// keeps the first result that has checks:
//
// Validity: discards sequences whose faults were caused by ill-formed inputs
// or resource exhaustion, and reports faults before the last statement as
// flaky.
//
// Contracts: evaluates the contract catalog over the values the sequence
// produced and reports the first violation as error-revealing.
//
// Regression: captures the observed values of the final statement, and the
// fault it raised if any, as assertions of a regression test.
//
// The package also holds the summary cache used by the command line tool and
// the watcher that re-classifies trace files when they change.
//
// Usage:
//
//	engine, err := internal.NewEngine(types.DefaultConfig(), logger)
//	if err != nil {
//	    // handle error
//	}
//	summary := engine.Summarize("push-pop", es, observers)
package internal
