package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/posting-parser/internal/types"
)

// List limits for parsed posting queries
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// StoredRawPosting is a raw posting row awaiting or past processing
type StoredRawPosting struct {
	ID          uuid.UUID        `json:"id"`
	Posting     types.RawPosting `json:"posting"`
	ContentHash string           `json:"content_hash"`
	Processed   bool             `json:"processed"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PostingFilters narrows ListParsedPostings. Company and Title match
// case-insensitive substrings.
type PostingFilters struct {
	Company string
	Title   string
	Limit   int
	Offset  int
}

// Counts summarizes the stored postings
type Counts struct {
	Raw         int `json:"raw"`
	Processed   int `json:"processed"`
	Unprocessed int `json:"unprocessed"`
	Parsed      int `json:"parsed"`
}
