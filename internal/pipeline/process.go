// Package pipeline runs postings through parsing and enrichment, one at a time
// or in bounded parallel batches.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/posting-parser/internal/db"
	"github.com/jonathan/posting-parser/internal/enrich"
	"github.com/jonathan/posting-parser/internal/ingestion"
	"github.com/jonathan/posting-parser/internal/logger"
	"github.com/jonathan/posting-parser/internal/parsing"
	"github.com/jonathan/posting-parser/internal/types"
)

// DefaultWorkers is the batch parallelism used when Options.Workers is unset
const DefaultWorkers = 4

// Progress steps
const (
	StepParsed   = "parsed"
	StepFailed   = "failed"
	StepSaved    = "saved"
	StepComplete = "complete"
)

// ProgressEvent represents a progress update during batch processing
type ProgressEvent struct {
	Index     int    `json:"index"`
	Step      string `json:"step"`
	Message   string `json:"message"`
	PostingID string `json:"posting_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. It may be called
// from several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for a Processor
type Options struct {
	Parser     *parsing.Parser
	Enricher   enrich.Enricher // nil disables enrichment
	Workers    int
	Logger     *zap.Logger
	OnProgress ProgressCallback
}

// Processor parses and enriches postings. It is safe for concurrent use.
type Processor struct {
	parser     *parsing.Parser
	enricher   enrich.Enricher
	workers    int
	log        *zap.Logger
	onProgress ProgressCallback
	now        func() time.Time
}

// Result is the outcome for one posting of a batch
type Result struct {
	Posting *types.ProcessedPosting
	Err     error
}

// Stats counts batch outcomes
type Stats struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Store is the persistence used by ProcessPending
type Store interface {
	ListUnprocessed(ctx context.Context, limit int) ([]db.StoredRawPosting, error)
	SaveParsedPosting(ctx context.Context, rawID *uuid.UUID, p *types.ProcessedPosting) error
}

// New creates a Processor, filling unset options with defaults
func New(opts Options) *Processor {
	p := &Processor{
		parser:     opts.Parser,
		enricher:   opts.Enricher,
		workers:    opts.Workers,
		log:        opts.Logger,
		onProgress: opts.OnProgress,
		now:        func() time.Time { return time.Now().UTC() },
	}
	if p.parser == nil {
		p.parser = parsing.Default()
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkers
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p
}

// WithoutEnrichment returns a copy of p that skips enrichment
func (p *Processor) WithoutEnrichment() *Processor {
	cp := *p
	cp.enricher = nil
	return &cp
}

func (p *Processor) emit(event ProgressEvent) {
	if p.onProgress != nil {
		p.onProgress(event)
	}
}

// ProcessOne parses raw, enriches its text and returns the processed record.
// Parser warnings are logged and returned on the record; only enrichment
// failure or a done context produce an error.
func (p *Processor) ProcessOne(ctx context.Context, raw types.RawPosting) (*types.ProcessedPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New()
	analysis := p.parser.Analyze(raw.Text)

	out := &types.ProcessedPosting{
		ID:            id,
		Title:         raw.Title,
		Company:       raw.Company,
		Location:      raw.Location,
		URL:           raw.URL,
		PostedAt:      raw.PostedAt,
		ContentHash:   ingestion.ContentHash(raw.Text),
		Parsed:        analysis.Posting,
		Warnings:      analysis.Warnings,
		ParserVersion: parsing.ParserVersion,
		ProcessedAt:   p.now(),
	}

	if p.enricher != nil {
		enrichment, err := p.enricher.Enrich(ctx, raw.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to enrich posting %q: %w", raw.Title, err)
		}
		out.Enrichment = enrichment
	}

	logger.LogWarnings(p.log, id.String(), out.Warnings)
	p.log.Debug("parsed posting",
		zap.String("posting_id", id.String()),
		zap.String("title", raw.Title),
		zap.Int("required", len(out.Parsed.Required)),
		zap.Int("bonus", len(out.Parsed.Bonus)),
		zap.Int("responsibilities", len(out.Parsed.Responsibilities)),
	)
	return out, nil
}

// Process handles raws with at most Workers postings in flight. Results keep
// input order. Once ctx is done no further postings are started; those get
// ctx's error as their result.
func (p *Processor) Process(ctx context.Context, raws []types.RawPosting) ([]Result, Stats) {
	results := make([]Result, len(raws))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range raws {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			posting, err := p.ProcessOne(ctx, raws[i])
			results[i] = Result{Posting: posting, Err: err}
			if err != nil {
				p.log.Error("failed to process posting", zap.Int("index", i), zap.Error(err))
				p.emit(ProgressEvent{Index: i, Step: StepFailed, Message: err.Error()})
				return nil
			}
			p.emit(ProgressEvent{Index: i, Step: StepParsed, Message: raws[i].Title, PostingID: posting.ID.String()})
			return nil
		})
	}
	_ = g.Wait()

	var stats Stats
	for _, r := range results {
		if r.Err != nil {
			stats.Errors++
		} else {
			stats.Processed++
		}
	}
	p.emit(ProgressEvent{Index: len(raws), Step: StepComplete,
		Message: fmt.Sprintf("processed %d, errors %d", stats.Processed, stats.Errors)})
	return results, stats
}

// ProcessPending processes up to limit unprocessed postings from store and
// saves each result, marking its raw posting processed. A limit of zero or
// less processes everything pending.
func (p *Processor) ProcessPending(ctx context.Context, store Store, limit int) (Stats, error) {
	pending, err := store.ListUnprocessed(ctx, limit)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load unprocessed postings: %w", err)
	}
	if len(pending) == 0 {
		p.log.Info("no unprocessed postings")
		return Stats{}, nil
	}

	raws := make([]types.RawPosting, len(pending))
	for i, r := range pending {
		raws[i] = r.Posting
	}
	results, stats := p.Process(ctx, raws)

	for i, r := range results {
		if r.Err != nil {
			continue
		}
		rawID := pending[i].ID
		r.Posting.ContentHash = pending[i].ContentHash
		if err := store.SaveParsedPosting(ctx, &rawID, r.Posting); err != nil {
			p.log.Error("failed to save parsed posting",
				zap.String("raw_posting_id", rawID.String()), zap.Error(err))
			stats.Processed--
			stats.Errors++
			continue
		}
		p.emit(ProgressEvent{Index: i, Step: StepSaved, PostingID: r.Posting.ID.String()})
	}

	p.log.Info("processed pending postings",
		zap.Int("processed", stats.Processed), zap.Int("errors", stats.Errors))
	return stats, nil
}
