package main

import (
	"errors"
	"fmt"
	"os"

	"batchsend/internal/config"
	"batchsend/internal/domain"
	"batchsend/internal/infrastructure/sheet"
	"batchsend/internal/interfaces/report"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultSamplePath = "addresses_sample.xlsx"

func newSampleCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sample [path]",
		Short: "Write a sample spreadsheet showing the expected columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultSamplePath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := sheet.WriteSample(path); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sample spreadsheet created: %s\n", path)
			fmt.Fprintln(out, "Replace the placeholder rows with real addresses and private keys, then point EXCEL_FILE_PATH or --file at it.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <run-id>",
		Short: "Print the stored results of a previous run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.ResultsStore == config.StoreNone {
				return errors.New("history needs RESULTS_STORE=sqlite or RESULTS_STORE=mysql")
			}
			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.ResultsStore, err)
			}
			defer store.Close()

			runID := args[0]
			results, err := store.RunSubmissions(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no submissions stored for run %s", runID)
			}
			summary := domain.NewBatchSummary(runID, len(results))
			for _, result := range results {
				summary.Add(result)
			}
			report.NewConsole(cmd.OutOrStdout(), !color.NoColor).PrintSummary(summary)
			return nil
		},
	}
}
