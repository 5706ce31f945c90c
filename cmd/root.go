package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/toracle/oracle"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "toracle [paths...]",
	Short:            "toracle - classify executed test sequences and derive their oracles",
	Args:             cobra.ArbitraryArgs,
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: toracle [path1 path2 ...] => behaves like the classify subcommand
		return classifyCmd.RunE(classifyCmd, args)
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", oracle.DefaultConfigFile, "Path to the configuration file")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for the whole run")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")
	flags.BoolVar(&jsonOutput, "json", false, "Output the report in JSON format")
	flags.StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	flags.StringVar(&cacheDir, "cache-dir", "", "Directory caching summaries of unchanged trace files")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(contractsCmd)
	rootCmd.AddCommand(watchCmd)
}
