package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/posting-parser/internal/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <postings.json>",
	Short: "Store raw postings from a JSON file for later processing",
	Long: "Load postings from a JSON file and insert them into the raw_postings table. Postings whose " +
		"text is already stored are skipped. Run \"process\" to parse them.",
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	database, err := a.connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var inserted, duplicates int
	for _, p := range batch.Postings {
		id, isNew, err := database.InsertRawPosting(ctx, p, ingestion.ContentHash(p.Text))
		if err != nil {
			return fmt.Errorf("failed to insert posting %q: %w", p.Title, err)
		}
		if isNew {
			inserted++
		} else {
			duplicates++
			a.log.Debug("duplicate posting", zap.String("raw_posting_id", id.String()), zap.String("title", p.Title))
		}
	}
	for _, skipped := range batch.Skipped {
		a.log.Warn("skipped posting record", zap.Int("index", skipped.Index), zap.String("reason", skipped.Message))
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Inserted:   %d\n", inserted)
	_, _ = fmt.Fprintf(out, "Duplicates: %d\n", duplicates)
	_, _ = fmt.Fprintf(out, "Skipped:    %d\n", len(batch.Skipped))
	return nil
}
