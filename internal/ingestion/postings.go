package ingestion

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/posting-parser/internal/types"
)

// Defaults for postings that omit identifying fields
const (
	DefaultTitle   = "Unknown Title"
	DefaultCompany = "Unknown Company"
)

// Field name variants accepted in posting JSON, in priority order
var (
	titleFields       = []string{"job_title", "title", "position"}
	companyFields     = []string{"company", "company_name"}
	locationFields    = []string{"location", "job_location"}
	descriptionFields = []string{"job_description", "description", "job_details"}
	urlFields         = []string{"job_url", "url", "link"}
	salaryFields      = []string{"salary_range", "salary"}
	jobTypeFields     = []string{"job_type", "employment_type"}
	dateFields        = []string{"date_posted", "posted_date"}
)

// dateLayouts are tried in order for string dates
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RecordError describes a posting record that could not be loaded
type RecordError struct {
	Index   int
	Title   string
	Message string
}

func (e *RecordError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.Title, e.Message)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Message)
}

// Batch is the result of loading a posting file. Invalid records are skipped
// and reported rather than failing the whole batch.
type Batch struct {
	Postings []types.RawPosting
	Skipped  []*RecordError
}

// LoadPostingsFile loads postings from a JSON file
func LoadPostingsFile(path string, source string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	batch, err := LoadPostings(f, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return batch, nil
}

// LoadPostings decodes a JSON array of posting objects, or a single object,
// mapping the accepted field name variants onto RawPosting. Descriptions are
// cleaned with Clean.
func LoadPostings(r io.Reader, source string) (*Batch, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read postings: %w", err)
	}

	var elems []json.RawMessage
	dec := json.NewDecoder(br)
	switch first {
	case '[':
		if err := dec.Decode(&elems); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case '{':
		var elem json.RawMessage
		if err := dec.Decode(&elem); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		elems = []json.RawMessage{elem}
	default:
		return nil, fmt.Errorf("invalid JSON: expected an object or an array of objects")
	}

	batch := &Batch{Postings: make([]types.RawPosting, 0, len(elems))}
	for i, elem := range elems {
		posting, recErr := decodeRecord(elem, source)
		if recErr != nil {
			recErr.Index = i
			batch.Skipped = append(batch.Skipped, recErr)
			continue
		}
		batch.Postings = append(batch.Postings, *posting)
	}
	return batch, nil
}

// decodeRecord decodes one array element and normalizes it. Elements that
// are not objects are rejected.
func decodeRecord(elem json.RawMessage, source string) (*types.RawPosting, *RecordError) {
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, &RecordError{Message: "record is not a JSON object"}
	}
	return NormalizeRecord(record, source)
}

// NormalizeRecord maps one decoded JSON object onto a RawPosting. A record
// without a description is rejected.
func NormalizeRecord(record map[string]any, source string) (*types.RawPosting, *RecordError) {
	if record == nil {
		return nil, &RecordError{Message: "record is null"}
	}

	title := firstString(record, titleFields)
	text := Clean(firstString(record, descriptionFields))
	if text == "" {
		return nil, &RecordError{Title: title, Message: "job description is required"}
	}

	if title == "" {
		title = DefaultTitle
	}
	company := firstString(record, companyFields)
	if company == "" {
		company = DefaultCompany
	}
	if source == "" {
		source = SourceManual
	}

	return &types.RawPosting{
		Text:        text,
		Title:       title,
		Company:     company,
		Location:    firstString(record, locationFields),
		URL:         firstString(record, urlFields),
		PostedAt:    parsePostedAt(firstValue(record, dateFields)),
		Source:      source,
		SalaryRange: firstString(record, salaryFields),
		JobType:     firstString(record, jobTypeFields),
	}, nil
}

// firstValue returns the first non-empty value among keys
func firstValue(record map[string]any, keys []string) any {
	for _, key := range keys {
		v, ok := record[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(record map[string]any, keys []string) string {
	switch v := firstValue(record, keys).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// parsePostedAt accepts unix milliseconds or an ISO-8601 string. Unparseable
// values yield nil.
func parsePostedAt(v any) *time.Time {
	switch d := v.(type) {
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			f, ferr := d.Float64()
			if ferr != nil {
				return nil
			}
			ms = int64(f)
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if strings.IndexByte(" \t\r\n", b) < 0 {
			return b, br.UnreadByte()
		}
	}
}
