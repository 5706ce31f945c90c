package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/toracle/formatter"
	"github.com/gnolang/toracle/internal"
	"github.com/gnolang/toracle/oracle"
)

// ErrFailed is returned when a run reveals errors or cannot classify some
// sequence.
var ErrFailed = errors.New("classification found failures")

var (
	jsonOutput bool
	outPath    string
	cacheDir   string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [paths...]",
	Short: "Classify the sequences recorded in trace files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
		defer cancel()

		engine, err := newEngine(logger)
		if err != nil {
			return err
		}
		processor, err := newProcessor(logger, cacheDir)
		if err != nil {
			return err
		}

		report, err := runClassify(ctx, logger, engine, args, processor)
		if err != nil {
			return err
		}
		if err := printReport(cmd.OutOrStdout(), report, jsonOutput, outPath); err != nil {
			return err
		}
		if report.Failed() {
			return ErrFailed
		}
		return nil
	},
}

// commandContext is the context of cmd, or the background context when cmd
// is run directly by its parent.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newEngine builds an engine from the configuration file, falling back to
// the defaults when the file does not exist.
func newEngine(logger *zap.Logger) (*internal.Engine, error) {
	config, err := oracle.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return internal.NewEngine(config, logger)
}

// newProcessor returns the trace processor, cached when dir is set. The
// configuration file, when present, is a cache dependency.
func newProcessor(logger *zap.Logger, dir string) (oracle.Processor, error) {
	if dir == "" {
		return oracle.ProcessFile, nil
	}
	var deps []string
	if _, err := os.Stat(cfgFile); err == nil {
		deps = append(deps, cfgFile)
	}
	cache, err := internal.NewCache(dir, deps...)
	if err != nil {
		return nil, err
	}
	return oracle.Cached(cache, logger, oracle.ProcessFile), nil
}

func runClassify(
	ctx context.Context,
	logger *zap.Logger,
	engine oracle.ClassifyEngine,
	paths []string,
	processor oracle.Processor,
) (*oracle.Report, error) {
	report := oracle.NewReport()
	logger = logger.With(zap.Stringer("run_id", report.RunID))

	summaries, err := oracle.ProcessFiles(ctx, logger, engine, paths, processor)
	if err != nil {
		return nil, err
	}
	report.Add(summaries...)

	logger.Info("Classification finished",
		zap.Int("sequences", len(report.Summaries)),
		zap.Int("regression", report.Counts.Regression),
		zap.Int("error_revealing", report.Counts.ErrorRevealing),
		zap.Int("invalid", report.Counts.Invalid),
		zap.Int("flaky", report.Counts.Flaky),
		zap.Int("internal_error", report.Counts.InternalError))
	return report, nil
}

func printReport(w io.Writer, report *oracle.Report, isJSON bool, jsonPath string) error {
	if !isJSON {
		// text output
		fmt.Fprint(w, formatter.GenerateFormattedSummary(report.Summaries))
		fmt.Fprint(w, formatter.FormatTotals(report.Summaries))
		return nil
	}

	d, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("error marshalling report to JSON: %w", err)
	}
	if jsonPath == "" {
		fmt.Fprintln(w, string(d))
		return nil
	}
	if err := os.WriteFile(jsonPath, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
