// Package oracle classifies recorded executions of candidate tests.
//
// A trace file records the types and operations of a program under test,
// and sequences of operation calls together with what each call did. The
// oracle replays nothing: it decides, from the recorded outcomes alone,
// whether each sequence is invalid, reveals an error, or should become a
// regression test, and which checks that test asserts.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal"
	"github.com/gnolang/toracle/internal/generator"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
)

// ClassifyEngine classifies one executed sequence.
type ClassifyEngine interface {
	Summarize(name string, es *sequence.ExecutableSequence, observers generator.Observers) tt.Summary
}

// Processor classifies the trace file at path.
type Processor func(engine ClassifyEngine, path string) ([]tt.Summary, error)

// New creates an engine configured from the file at configurationPath.
func New(configurationPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(config, logger)
}

// ProcessFile loads a trace file and classifies each of its sequences.
func ProcessFile(engine ClassifyEngine, path string) ([]tt.Summary, error) {
	trace, err := LoadTrace(path)
	if err != nil {
		return nil, err
	}
	summaries := make([]tt.Summary, 0, len(trace.Sequences))
	for _, s := range trace.Sequences {
		summary := engine.Summarize(s.Name, s.Exec, trace.Observers)
		summary.Filename = path
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Cached wraps next so that summaries are served from cache while the trace
// file and the cache dependencies are unchanged.
func Cached(cache *internal.Cache, logger *zap.Logger, next Processor) Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(engine ClassifyEngine, path string) ([]tt.Summary, error) {
		if summaries, ok := cache.Get(path); ok {
			logger.Debug("Cache hit", zap.String("file", path))
			return summaries, nil
		}
		summaries, err := next(engine, path)
		if err != nil {
			return nil, err
		}
		if err := cache.Set(path, summaries); err != nil {
			logger.Warn("Failed to cache summaries", zap.String("file", path), zap.Error(err))
		}
		return summaries, nil
	}
}

// ProcessFiles processes each path in turn. It stops at the first path that
// fails and returns the summaries gathered so far together with the error.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine ClassifyEngine,
	paths []string,
	processor Processor,
) ([]tt.Summary, error) {
	var all []tt.Summary
	for _, path := range paths {
		summaries, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return append(all, summaries...), err
		}
		all = append(all, summaries...)
	}

	return all, nil
}

// ProcessPath classifies a trace file, or every trace file below a
// directory using a bounded number of workers. Summaries are returned in
// file name order. On cancellation the summaries of the files processed so
// far are returned with the context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine ClassifyEngine,
	path string,
	processor Processor,
) ([]tt.Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.IsTraceFile(path) {
			return []tt.Summary{}, nil
		}
		summaries, err := processor(engine, path)
		if err != nil {
			return []tt.Summary{}, err
		}
		return summaries, nil
	}

	files, err := collectTraceFiles(path)
	if err != nil {
		return nil, err
	}

	results := make([][]tt.Summary, len(files))
	errs := make([]error, len(files))

	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var wg sync.WaitGroup
	var ctxErr error
	for i, filePath := range files {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			summaries, err := processor(engine, fp)
			if err != nil {
				logger.Error("Error processing trace", zap.String("file", fp), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", fp, err)
			} else {
				results[i] = summaries
			}
			_ = bar.Add(1)
		}(i, filePath)
	}
	wg.Wait()
	_ = bar.Finish()

	summaries := []tt.Summary{}
	for _, r := range results {
		summaries = append(summaries, r...)
	}
	if ctxErr != nil {
		return summaries, ctxErr
	}
	return summaries, errors.Join(errs...)
}

func collectTraceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && internal.IsTraceFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
