package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/posting-parser/internal/db"
	"github.com/jonathan/posting-parser/internal/ingestion"
	"github.com/jonathan/posting-parser/internal/parsing"
	"github.com/jonathan/posting-parser/internal/types"
)

const (
	maxRequestBytes = 2 << 20
	healthTimeout   = 2 * time.Second
)

// ListPostingsResponse is the response for GET /postings
type ListPostingsResponse struct {
	Postings []types.ProcessedPosting `json:"postings"`
	Count    int                      `json:"count"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

// handleParse parses one posting given as text, HTML or a URL to fetch.
// The result is saved when the server has a store.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req types.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.handleError(w, validationError(err))
		return
	}

	raw, err := s.rawFromRequest(r.Context(), &req)
	if err != nil {
		s.handleError(w, err)
		return
	}

	processor := s.processor
	if !req.WantsEnrichment() {
		processor = processor.WithoutEnrichment()
	}
	posting, err := processor.ProcessOne(r.Context(), *raw)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to process posting: %w", err))
		return
	}

	if s.store != nil {
		if err := s.save(r.Context(), raw, posting); err != nil {
			s.handleError(w, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, posting)
}

// rawFromRequest resolves the request's posting text and metadata
func (s *Server) rawFromRequest(ctx context.Context, req *types.ParseRequest) (*types.RawPosting, error) {
	raw := &types.RawPosting{Source: ingestion.SourceAPI, URL: req.URL}

	switch {
	case req.Text != "":
		raw.Text = ingestion.Normalize(req.Text)
	case req.HTML != "":
		text, err := ingestion.StripHTML(req.HTML)
		if err != nil {
			return nil, &ErrValidation{Field: "html", Message: err.Error()}
		}
		raw.Text = ingestion.Normalize(text)
	default:
		fetched, _, err := ingestion.IngestFromURL(ctx, req.URL, s.urlOptions)
		if err != nil {
			return nil, err
		}
		raw = fetched
	}

	if req.Title != "" {
		raw.Title = req.Title
	}
	if req.Company != "" {
		raw.Company = req.Company
	}
	if req.Location != "" {
		raw.Location = req.Location
	}
	if req.PostedAt != nil {
		raw.PostedAt = req.PostedAt
	}
	return raw, nil
}

// save records raw and its parse result, reusing the stored rows when the
// same text was parsed before.
func (s *Server) save(ctx context.Context, raw *types.RawPosting, posting *types.ProcessedPosting) error {
	rawID, inserted, err := s.store.InsertRawPosting(ctx, *raw, posting.ContentHash)
	if err != nil {
		return fmt.Errorf("failed to save raw posting: %w", err)
	}
	if err := s.store.SaveParsedPosting(ctx, &rawID, posting); err != nil {
		return fmt.Errorf("failed to save parsed posting: %w", err)
	}
	s.log.Debug("saved posting",
		zap.String("posting_id", posting.ID.String()),
		zap.Bool("new", inserted))
	return nil
}

// handleListPostings lists parsed postings, newest first
func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, &ErrStorageUnavailable{})
		return
	}

	filters, err := listFilters(r.URL.Query())
	if err != nil {
		s.handleError(w, err)
		return
	}

	postings, err := s.store.ListParsedPostings(r.Context(), filters)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to list postings: %w", err))
		return
	}
	if postings == nil {
		postings = []types.ProcessedPosting{}
	}

	s.jsonResponse(w, http.StatusOK, ListPostingsResponse{
		Postings: postings,
		Count:    len(postings),
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	})
}

// listFilters reads company, title, limit and offset query parameters
func listFilters(q url.Values) (db.PostingFilters, error) {
	filters := db.PostingFilters{
		Company: q.Get("company"),
		Title:   q.Get("title"),
		Limit:   db.DefaultListLimit,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filters, &ErrValidation{Field: "limit", Message: "must be a positive integer"}
		}
		filters.Limit = min(n, db.MaxListLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filters, &ErrValidation{Field: "offset", Message: "must be a non-negative integer"}
		}
		filters.Offset = n
	}
	return filters, nil
}

// handleGetPosting returns one parsed posting by ID
func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, &ErrStorageUnavailable{})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.handleError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	posting, err := s.store.GetParsedPosting(r.Context(), id)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to get posting: %w", err))
		return
	}
	if posting == nil {
		s.handleError(w, &ErrPostingNotFound{ID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, posting)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":         "ok",
		"parser_version": parsing.ParserVersion,
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.log.Warn("database ping failed", zap.Error(err))
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			s.jsonResponse(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "ok"
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
