package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/posting-parser/internal/ingestion"
	"github.com/jonathan/posting-parser/internal/observability"
	"github.com/jonathan/posting-parser/internal/pipeline"
	"github.com/jonathan/posting-parser/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <postings.json>",
	Short: "Parse a JSON file of postings and write the results to a JSON file",
	Long: "Parse every posting in a JSON file (a list of objects or a single object) in parallel and " +
		"write the processed postings, in input order, to the output file. No database is used.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var (
	batchOut      string
	batchWorkers  int
	batchNoEnrich bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Path to output JSON file (required)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Postings processed in parallel (default from config)")
	batchCmd.Flags().BoolVar(&batchNoEnrich, "no-enrich", false, "Skip enrichment")

	_ = batchCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	batch, err := ingestion.LoadPostingsFile(args[0], ingestion.SourceFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, skipped := range batch.Skipped {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s\n", skipped)
	}

	processor := a.processor(batchWorkers, func(e pipeline.ProgressEvent) {
		a.log.Debug("batch progress", zap.Int("index", e.Index), zap.String("step", e.Step), zap.String("message", e.Message))
	})
	if batchNoEnrich {
		processor = processor.WithoutEnrichment()
	}

	start := time.Now()
	results, stats := processor.Process(ctx, batch.Postings)

	processed := make([]*types.ProcessedPosting, 0, stats.Processed)
	for i, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed posting %d (%s): %v\n", i, batch.Postings[i].Title, r.Err)
			continue
		}
		processed = append(processed, r.Posting)
	}

	if err := writeJSON(out, batchOut, processed); err != nil {
		return err
	}
	observability.NewPrinter(out).PrintRunSummary(stats.Processed, stats.Errors+len(batch.Skipped), time.Since(start))

	if stats.Processed == 0 && stats.Errors > 0 {
		return fmt.Errorf("all %d postings failed", stats.Errors)
	}
	return nil
}
