package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/posting-parser/internal/db"
	"github.com/jonathan/posting-parser/internal/enrich"
	"github.com/jonathan/posting-parser/internal/ingestion"
	"github.com/jonathan/posting-parser/internal/parsing"
	"github.com/jonathan/posting-parser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const headeredPosting = `Acme builds analytics tools for retailers.

Requirements:
- 3+ years of SQL experience
- Experience with Python

Responsibilities:
- Build dashboards in Tableau
- Partner with product managers`

type failingEnricher struct {
	failOn string
	calls  atomic.Int32
}

func (f *failingEnricher) Enrich(ctx context.Context, text string) (*types.Enrichment, error) {
	f.calls.Add(1)
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, &enrich.Error{Enricher: enrich.ModeLLM, Message: "quota exceeded"}
	}
	return &types.Enrichment{ExtractedSkills: []string{"SQL"}}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	pending []db.StoredRawPosting
	saved   map[uuid.UUID]*types.ProcessedPosting
	failOn  uuid.UUID
	listErr error
}

func (s *fakeStore) ListUnprocessed(_ context.Context, limit int) ([]db.StoredRawPosting, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit > 0 && limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) SaveParsedPosting(_ context.Context, rawID *uuid.UUID, p *types.ProcessedPosting) error {
	if *rawID == s.failOn {
		return errors.New("connection reset")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[uuid.UUID]*types.ProcessedPosting{}
	}
	s.saved[*rawID] = p
	return nil
}

func TestProcessOne(t *testing.T) {
	p := New(Options{Enricher: enrich.NewDefaultKeywordEnricher()})

	raw := types.RawPosting{Text: headeredPosting, Title: "Data Analyst", Company: "Acme"}
	got, err := p.ProcessOne(context.Background(), raw)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Data Analyst", got.Title)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, ingestion.ContentHash(headeredPosting), got.ContentHash)
	assert.Equal(t, parsing.ParserVersion, got.ParserVersion)
	assert.False(t, got.ProcessedAt.IsZero())

	require.Len(t, got.Parsed.Required, 2)
	require.Len(t, got.Parsed.Responsibilities, 2)
	assert.Contains(t, got.Parsed.Summary, "Acme builds analytics tools")

	require.NotNil(t, got.Enrichment)
	assert.Contains(t, got.Enrichment.ExtractedSkills, "SQL")
	assert.Contains(t, got.Enrichment.ExtractedSkills, "Tableau")
}

func TestProcessOne_NoEnricher(t *testing.T) {
	p := New(Options{})

	got, err := p.ProcessOne(context.Background(), types.RawPosting{Text: headeredPosting})
	require.NoError(t, err)
	assert.Nil(t, got.Enrichment)
}

func TestProcessOne_EmptyTextLogsWarning(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	p := New(Options{Logger: zap.New(core)})

	got, err := p.ProcessOne(context.Background(), types.RawPosting{Text: "  \n "})
	require.NoError(t, err)

	require.Len(t, got.Warnings, 1)
	assert.Equal(t, parsing.WarnEmptyInput, got.Warnings[0].Kind)
	assert.Empty(t, got.Parsed.Required)

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, got.ID.String(), entries[0].ContextMap()["posting_id"])
	assert.Equal(t, parsing.WarnEmptyInput, entries[0].ContextMap()["kind"])
}

func TestProcessOne_EnrichmentError(t *testing.T) {
	p := New(Options{Enricher: &failingEnricher{failOn: "SQL"}})

	_, err := p.ProcessOne(context.Background(), types.RawPosting{Text: headeredPosting, Title: "Analyst"})
	require.Error(t, err)

	var enrichErr *enrich.Error
	assert.ErrorAs(t, err, &enrichErr)
	assert.Contains(t, err.Error(), `"Analyst"`)
}

func TestProcess_KeepsOrderAndCountsErrors(t *testing.T) {
	enricher := &failingEnricher{failOn: "FAIL"}
	var events sync.Map
	p := New(Options{
		Enricher: enricher,
		Workers:  3,
		OnProgress: func(e ProgressEvent) {
			events.Store(fmt.Sprintf("%s-%d", e.Step, e.Index), e)
		},
	})

	raws := make([]types.RawPosting, 10)
	for i := range raws {
		raws[i] = types.RawPosting{Title: fmt.Sprintf("posting-%d", i), Text: fmt.Sprintf("Requirements:\n- Skill number %d", i)}
	}
	raws[4].Text += "\nFAIL"

	results, stats := p.Process(context.Background(), raws)
	require.Len(t, results, 10)

	assert.Equal(t, Stats{Processed: 9, Errors: 1}, stats)
	assert.Equal(t, int32(10), enricher.calls.Load())
	for i, r := range results {
		if i == 4 {
			assert.Error(t, r.Err)
			assert.Nil(t, r.Posting)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("posting-%d", i), r.Posting.Title)
	}

	_, ok := events.Load("failed-4")
	assert.True(t, ok)
	_, ok = events.Load("complete-10")
	assert.True(t, ok)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Options{})
	results, stats := p.Process(ctx, []types.RawPosting{{Text: "a"}, {Text: "b"}})

	assert.Equal(t, Stats{Errors: 2}, stats)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	p := New(Options{Workers: 8})

	raws := make([]types.RawPosting, 20)
	for i := range raws {
		raws[i] = types.RawPosting{Text: headeredPosting}
	}

	results, _ := p.Process(context.Background(), raws)
	for _, r := range results[1:] {
		require.NoError(t, r.Err)
		assert.Equal(t, results[0].Posting.Parsed, r.Posting.Parsed)
	}
}

func TestProcessPending(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	store := &fakeStore{failOn: ids[2]}
	for i, id := range ids {
		store.pending = append(store.pending, db.StoredRawPosting{
			ID:          id,
			Posting:     types.RawPosting{Title: fmt.Sprintf("p%d", i), Text: headeredPosting},
			ContentHash: fmt.Sprintf("hash-%d", i),
			CreatedAt:   time.Now(),
		})
	}

	p := New(Options{Enricher: enrich.NewDefaultKeywordEnricher()})
	stats, err := p.ProcessPending(context.Background(), store, 0)
	require.NoError(t, err)

	assert.Equal(t, Stats{Processed: 2, Errors: 1}, stats)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "hash-0", store.saved[ids[0]].ContentHash)
	assert.Equal(t, "p1", store.saved[ids[1]].Title)
}

func TestProcessPending_Empty(t *testing.T) {
	stats, err := New(Options{}).ProcessPending(context.Background(), &fakeStore{}, 10)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestProcessPending_ListError(t *testing.T) {
	_, err := New(Options{}).ProcessPending(context.Background(), &fakeStore{listErr: errors.New("db down")}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load unprocessed postings")
}

func TestWithoutEnrichment(t *testing.T) {
	enricher := &failingEnricher{}
	p := New(Options{Enricher: enricher})

	got, err := p.WithoutEnrichment().ProcessOne(context.Background(), types.RawPosting{Text: headeredPosting})
	require.NoError(t, err)
	assert.Nil(t, got.Enrichment)
	assert.Equal(t, int32(0), enricher.calls.Load())

	got, err = p.ProcessOne(context.Background(), types.RawPosting{Text: headeredPosting})
	require.NoError(t, err)
	assert.NotNil(t, got.Enrichment)
}
