package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/posting-parser/internal/observability"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Parse stored raw postings that have not been processed",
	Long:  "Parse and enrich unprocessed rows of raw_postings in parallel, save the results to parsed_postings and mark the raw rows processed.",
	RunE:  runProcess,
}

var (
	processLimit   int
	processWorkers int
)

func init() {
	processCmd.Flags().IntVarP(&processLimit, "limit", "n", 0, "Maximum postings to process (0 processes all)")
	processCmd.Flags().IntVarP(&processWorkers, "workers", "w", 0, "Postings processed in parallel (default from config)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	database, err := a.connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	start := time.Now()
	stats, err := a.processor(processWorkers, nil).ProcessPending(ctx, database, processLimit)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintRunSummary(stats.Processed, stats.Errors, time.Since(start))

	counts, err := database.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count postings: %w", err)
	}
	printer.PrintCounts(counts)
	return nil
}
