package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/posting-parser/internal/config"
	"github.com/jonathan/posting-parser/internal/db"
	"github.com/jonathan/posting-parser/internal/enrich"
	"github.com/jonathan/posting-parser/internal/fetch"
	"github.com/jonathan/posting-parser/internal/ingestion"
	"github.com/jonathan/posting-parser/internal/llm"
	"github.com/jonathan/posting-parser/internal/logger"
	"github.com/jonathan/posting-parser/internal/parsing"
	"github.com/jonathan/posting-parser/internal/pipeline"
)

// app holds what every subcommand builds from configuration
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	parser    *parsing.Parser
	enricher  enrich.Enricher
	llmClient llm.Client
}

// loadApp reads configuration, applies the persistent flags and builds the
// logger, parser and enricher.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if jsonLogs {
		cfg.Log.JSON = true
	}
	if debugLogs {
		cfg.Log.Debug = true
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	parser, err := cfg.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	a := &app{cfg: cfg, log: log, parser: parser}

	if cfg.Enrichment == enrich.ModeLLM {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required for llm enrichment (set GEMINI_API_KEY or api_key)")
		}
		models, _ := cfg.LLMConfig()
		client, err := llm.NewClient(ctx, models, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.llmClient = client
	}

	a.enricher, err = enrich.New(cfg.Enrichment, a.llmClient, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if e, ok := a.enricher.(*enrich.LLMEnricher); ok {
		_, e.Tier = cfg.LLMConfig()
	}

	log.Debug("configuration loaded",
		zap.String("config", configPath),
		zap.String("enrichment", cfg.Enrichment),
		zap.String("action_verb_policy", cfg.ActionVerbPolicy),
		zap.Int("workers", cfg.Workers))
	return a, nil
}

// processor returns a pipeline processor over the app's parser and enricher
func (a *app) processor(workers int, onProgress pipeline.ProgressCallback) *pipeline.Processor {
	if workers <= 0 {
		workers = a.cfg.Workers
	}
	return pipeline.New(pipeline.Options{
		Parser:     a.parser,
		Enricher:   a.enricher,
		Workers:    workers,
		Logger:     a.log,
		OnProgress: onProgress,
	})
}

// urlOptions configures URL ingestion, with browser rendering when enabled
func (a *app) urlOptions() ingestion.URLOptions {
	opts := ingestion.URLOptions{Logger: a.log}
	if a.cfg.UseBrowser {
		opts.Renderer = fetch.NewBrowserRenderer(a.log)
	}
	return opts
}

// connectDB connects to the configured database and applies the schema
func (a *app) connectDB(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or database_url)")
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// Close releases the LLM client and flushes the logger
func (a *app) Close() {
	if a.llmClient != nil {
		if err := a.llmClient.Close(); err != nil {
			a.log.Warn("failed to close LLM client", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
