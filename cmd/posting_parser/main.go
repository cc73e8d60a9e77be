// Package main provides the entry point for the posting parser CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "posting_parser",
	Short: "Rule-based structured job posting parser",
	Long: "posting_parser turns free-text job postings into structured records of required and bonus " +
		"qualifications, responsibilities and a summary, with optional keyword or LLM enrichment.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	jsonLogs   bool
	debugLogs  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
