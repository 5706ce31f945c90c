package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/toracle/formatter"
	"github.com/gnolang/toracle/internal"
	"github.com/gnolang/toracle/oracle"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-classify trace files whenever they are written",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine(logger)
		if err != nil {
			return err
		}
		processor, err := newProcessor(logger, cacheDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w, err := internal.NewWatcher(func(path string) {
			if err := classifyChanged(out, engine, processor, path); err != nil {
				logger.Error("Error classifying trace", zap.String("file", path), zap.Error(err))
			}
		}, logger, args...)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		logger.Info("Watching for trace changes", zap.Strings("dirs", args))
		<-ctx.Done()
		return nil
	},
}

func classifyChanged(w io.Writer, engine oracle.ClassifyEngine, processor oracle.Processor, path string) error {
	summaries, err := processor(engine, path)
	if err != nil {
		return err
	}
	fmt.Fprint(w, formatter.GenerateFormattedSummary(summaries))
	fmt.Fprint(w, formatter.FormatTotals(summaries))
	return nil
}
