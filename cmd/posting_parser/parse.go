package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/posting-parser/internal/ingestion"
	"github.com/jonathan/posting-parser/internal/observability"
	"github.com/jonathan/posting-parser/internal/schemas"
	"github.com/jonathan/posting-parser/internal/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse one job posting into structured JSON",
	Long: "Parse a job posting from a text or HTML file, a URL, or stdin (\"-\") and write the processed " +
		"posting as JSON. Use --pretty for a human-readable summary instead.",
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var (
	parseURL      string
	parseOut      string
	parseTextOut  string
	parseTitle    string
	parseCompany  string
	parseNoEnrich bool
	parsePretty   bool
	parseValidate bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseURL, "url", "u", "", "URL to fetch the job posting from")
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "Path to output JSON file (default stdout)")
	parseCmd.Flags().StringVar(&parseTextOut, "text-out", "", "Directory to write the cleaned text and metadata to")
	parseCmd.Flags().StringVar(&parseTitle, "title", "", "Job title (overrides the detected title)")
	parseCmd.Flags().StringVar(&parseCompany, "company", "", "Company name")
	parseCmd.Flags().BoolVar(&parseNoEnrich, "no-enrich", false, "Skip enrichment")
	parseCmd.Flags().BoolVar(&parsePretty, "pretty", false, "Print a human-readable summary instead of JSON")
	parseCmd.Flags().BoolVar(&parseValidate, "validate", false, "Validate the output against the processed posting schema")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && parseURL == "" {
		return fmt.Errorf("either a file argument or --url must be provided")
	}
	if len(args) > 0 && parseURL != "" {
		return fmt.Errorf("a file argument and --url are mutually exclusive; provide only one")
	}

	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	raw, metadata, err := readPosting(ctx, a, path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if parseTitle != "" {
		raw.Title = parseTitle
	}
	if parseCompany != "" {
		raw.Company = parseCompany
	}

	if parseTextOut != "" {
		if err := ingestion.WriteOutput(parseTextOut, raw.Text, metadata); err != nil {
			return fmt.Errorf("failed to write cleaned text: %w", err)
		}
	}

	processor := a.processor(1, nil)
	if parseNoEnrich {
		processor = processor.WithoutEnrichment()
	}
	posting, err := processor.ProcessOne(ctx, *raw)
	if err != nil {
		return fmt.Errorf("failed to parse posting: %w", err)
	}

	if parseValidate {
		if err := schemas.ValidateProcessedPosting(posting); err != nil {
			return fmt.Errorf("generated JSON does not validate against schema: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if parsePretty {
		printer := observability.NewPrinter(out)
		printer.PrintProcessedPosting(posting)
		printer.PrintEnrichment(posting.Enrichment)
		printer.PrintWarnings(posting.Warnings)
		return nil
	}

	return writeJSON(out, parseOut, posting)
}

// readPosting loads the posting from path ("-" for stdin) or from --url
func readPosting(ctx context.Context, a *app, path string, stdin io.Reader) (*types.RawPosting, *ingestion.Metadata, error) {
	switch {
	case parseURL != "":
		raw, metadata, err := ingestion.IngestFromURL(ctx, parseURL, a.urlOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to ingest from URL: %w", err)
		}
		return raw, metadata, nil
	case path == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		text := ingestion.Clean(string(content))
		metadata := ingestion.NewMetadata(text, "")
		metadata.Source = ingestion.SourceManual
		return &types.RawPosting{Text: text, Source: ingestion.SourceManual}, metadata, nil
	default:
		raw, metadata, err := ingestion.IngestFromFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to ingest from file: %w", err)
		}
		return raw, metadata, nil
	}
}

// writeJSON writes v as indented JSON to path, or to out when path is empty
func writeJSON(out io.Writer, path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if path == "" {
		_, err := fmt.Fprintf(out, "%s\n", jsonBytes)
		return err
	}

	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Output: %s\n", path)
	return nil
}
