package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/posting-parser/internal/server"
	"github.com/jonathan/posting-parser/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that parses postings on POST /parse and, when a database is
configured, stores results and serves them on GET /postings and GET /postings/{id}.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if servePort > 0 {
		port = servePort
	}

	cfg := server.Config{
		Port:       port,
		Processor:  a.processor(0, nil),
		URLOptions: a.urlOptions(),
		RateLimit:  ratelimit.NewConfig(a.cfg.RateLimit, a.cfg.RateBurst),
		Logger:     a.log,
	}

	if a.cfg.DatabaseURL != "" {
		database, err := a.connectDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
		cfg.Store = database
	} else {
		a.log.Warn("no database configured; parse results will not be stored")
	}

	return server.New(cfg).Start(ctx)
}
