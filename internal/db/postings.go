package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/posting-parser/internal/types"
)

// -----------------------------------------------------------------------------
// Raw Posting Methods
// -----------------------------------------------------------------------------

// InsertRawPosting stores p unless a posting with the same content hash exists.
// It returns the row ID and whether a new row was written.
func (db *DB) InsertRawPosting(ctx context.Context, p types.RawPosting, contentHash string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO raw_postings (title, company, location, url, description,
		        salary_range, job_type, source, posted_at, content_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (content_hash) DO NOTHING
		 RETURNING id`,
		p.Title, p.Company, p.Location, p.URL, p.Text,
		p.SalaryRange, p.JobType, p.Source, p.PostedAt, contentHash,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("failed to insert raw posting: %w", err)
	}

	// Duplicate content: report the existing row
	err = db.pool.QueryRow(ctx,
		`SELECT id FROM raw_postings WHERE content_hash = $1`, contentHash,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up duplicate raw posting: %w", err)
	}
	return id, false, nil
}

// ListUnprocessed returns up to limit raw postings not yet parsed, oldest first.
// A limit of zero or less returns all of them.
func (db *DB) ListUnprocessed(ctx context.Context, limit int) ([]StoredRawPosting, error) {
	query := `SELECT id, title, company, location, url, description, salary_range,
	                 job_type, source, posted_at, content_hash, processed, created_at
	          FROM raw_postings WHERE NOT processed ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed postings: %w", err)
	}
	defer rows.Close()

	var postings []StoredRawPosting
	for rows.Next() {
		var r StoredRawPosting
		p := &r.Posting
		if err := rows.Scan(&r.ID, &p.Title, &p.Company, &p.Location, &p.URL, &p.Text,
			&p.SalaryRange, &p.JobType, &p.Source, &p.PostedAt, &r.ContentHash,
			&r.Processed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw posting: %w", err)
		}
		postings = append(postings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raw postings: %w", err)
	}
	return postings, nil
}

// -----------------------------------------------------------------------------
// Parsed Posting Methods
// -----------------------------------------------------------------------------

var parsedColumns = []string{
	"id", "title", "company", "location", "url", "posted_at", "content_hash",
	"parsed", "enrichment", "warnings", "parser_version", "processed_at",
}

// SaveParsedPosting upserts p by content hash and, when rawID is non-nil, marks
// the raw posting processed in the same transaction. p.ID is updated to the
// stored row's ID.
func (db *DB) SaveParsedPosting(ctx context.Context, rawID *uuid.UUID, p *types.ProcessedPosting) error {
	parsedJSON, err := json.Marshal(p.Parsed)
	if err != nil {
		return fmt.Errorf("failed to marshal parsed posting: %w", err)
	}
	var enrichmentJSON []byte
	if p.Enrichment != nil {
		if enrichmentJSON, err = json.Marshal(p.Enrichment); err != nil {
			return fmt.Errorf("failed to marshal enrichment: %w", err)
		}
	}
	warnings := p.Warnings
	if warnings == nil {
		warnings = []types.Warning{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = time.Now().UTC()
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO parsed_postings (id, raw_posting_id, title, company, location, url,
		        posted_at, content_hash, parsed, enrichment, warnings, parser_version, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (content_hash) DO UPDATE SET
		        raw_posting_id = COALESCE(EXCLUDED.raw_posting_id, parsed_postings.raw_posting_id),
		        title = EXCLUDED.title, company = EXCLUDED.company,
		        location = EXCLUDED.location, url = EXCLUDED.url, posted_at = EXCLUDED.posted_at,
		        parsed = EXCLUDED.parsed, enrichment = EXCLUDED.enrichment,
		        warnings = EXCLUDED.warnings, parser_version = EXCLUDED.parser_version,
		        processed_at = EXCLUDED.processed_at
		 RETURNING id`,
		p.ID, rawID, p.Title, p.Company, p.Location, p.URL,
		p.PostedAt, p.ContentHash, parsedJSON, enrichmentJSON, warningsJSON,
		p.ParserVersion, p.ProcessedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to save parsed posting: %w", err)
	}

	if rawID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE raw_postings SET processed = TRUE WHERE id = $1`, *rawID,
		); err != nil {
			return fmt.Errorf("failed to mark raw posting processed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit parsed posting: %w", err)
	}
	return nil
}

// GetParsedPosting retrieves a parsed posting by ID. It returns nil, nil when
// no row matches.
func (db *DB) GetParsedPosting(ctx context.Context, id uuid.UUID) (*types.ProcessedPosting, error) {
	query, args, err := sq.Select(parsedColumns...).
		From("parsed_postings").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	p, err := scanParsed(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get parsed posting: %w", err)
	}
	return p, nil
}

// ListParsedPostings returns parsed postings matching filters, newest first
func (db *DB) ListParsedPostings(ctx context.Context, filters PostingFilters) ([]types.ProcessedPosting, error) {
	query, args, err := buildListQuery(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parsed postings: %w", err)
	}
	defer rows.Close()

	postings := []types.ProcessedPosting{}
	for rows.Next() {
		p, err := scanParsed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parsed posting: %w", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parsed postings: %w", err)
	}
	return postings, nil
}

// Counts reports raw, processed, unprocessed and parsed posting totals
func (db *DB) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	err := db.pool.QueryRow(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM raw_postings),
		    (SELECT COUNT(*) FROM raw_postings WHERE processed),
		    (SELECT COUNT(*) FROM raw_postings WHERE NOT processed),
		    (SELECT COUNT(*) FROM parsed_postings)`,
	).Scan(&c.Raw, &c.Processed, &c.Unprocessed, &c.Parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to count postings: %w", err)
	}
	return &c, nil
}

// buildListQuery renders the filtered, paginated parsed posting query
func buildListQuery(filters PostingFilters) (string, []any, error) {
	q := sq.Select(parsedColumns...).
		From("parsed_postings").
		PlaceholderFormat(sq.Dollar)

	if filters.Company != "" {
		q = q.Where(sq.ILike{"company": "%" + filters.Company + "%"})
	}
	if filters.Title != "" {
		q = q.Where(sq.ILike{"title": "%" + filters.Title + "%"})
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	q = q.OrderBy("processed_at DESC", "id").Limit(uint64(limit))
	if filters.Offset > 0 {
		q = q.Offset(uint64(filters.Offset))
	}
	return q.ToSql()
}

func scanParsed(row pgx.Row) (*types.ProcessedPosting, error) {
	var p types.ProcessedPosting
	var parsedJSON, enrichmentJSON, warningsJSON []byte

	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.URL, &p.PostedAt,
		&p.ContentHash, &parsedJSON, &enrichmentJSON, &warningsJSON,
		&p.ParserVersion, &p.ProcessedAt)
	if err != nil {
		return nil, err
	}

	// Parse JSONB fields
	p.Parsed = types.NewParsedPosting()
	if err := json.Unmarshal(parsedJSON, p.Parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed column: %w", err)
	}
	if enrichmentJSON != nil {
		p.Enrichment = &types.Enrichment{}
		if err := json.Unmarshal(enrichmentJSON, p.Enrichment); err != nil {
			return nil, fmt.Errorf("failed to decode enrichment column: %w", err)
		}
	}
	if warningsJSON != nil {
		_ = json.Unmarshal(warningsJSON, &p.Warnings)
	}
	return &p, nil
}
