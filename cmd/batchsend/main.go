package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"batchsend/internal/config"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

type options struct {
	envFile    string
	file       string
	resultsDir string
	delay      time.Duration
	strict     bool
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("batchsend failed", "err", err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "batchsend",
		Short:         "Send the same contract call from every account in a spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	flags.StringVar(&opts.file, "file", "", "spreadsheet with address and privatekey columns (overrides EXCEL_FILE_PATH)")
	flags.StringVar(&opts.resultsDir, "results-dir", "", "directory for results-<timestamp>.json (overrides RESULTS_DIR)")
	flags.DurationVar(&opts.delay, "delay", 0, "pause between submissions, e.g. 2s (overrides TX_DELAY)")
	flags.BoolVar(&opts.strict, "strict", false, "exit 1 when any submission failed (same as STRICT_EXIT=true)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Submit the batch (default command)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBatch(cmd, opts)
			},
		},
		newSampleCmd(),
		newHistoryCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "batchsend %s (commit %s, built %s)\n", version, commit, buildTime)
			},
		},
	)
	return root
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.LoadFromEnv(opts.envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.InputFile = opts.file
	}
	if flags.Changed("results-dir") {
		cfg.ResultsDir = opts.resultsDir
	}
	if flags.Changed("delay") {
		if opts.delay < 0 {
			return config.Config{}, errors.New("config: --delay must not be negative")
		}
		cfg.TxDelay = opts.delay
	}
	if flags.Changed("strict") {
		cfg.StrictExit = opts.strict
	}
	return cfg, nil
}
