package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ParseRequest is the body of a parse request. Posting text comes from Text,
// then HTML, then URL, whichever is set first.
type ParseRequest struct {
	Text     string     `json:"text,omitempty" validate:"required_without_all=HTML URL"`
	HTML     string     `json:"html,omitempty"`
	URL      string     `json:"url,omitempty" validate:"omitempty,http_url"`
	Title    string     `json:"title,omitempty" validate:"max=300"`
	Company  string     `json:"company,omitempty" validate:"max=300"`
	Location string     `json:"location,omitempty" validate:"max=300"`
	PostedAt *time.Time `json:"posted_at,omitempty"`
	Enrich   *bool      `json:"enrich,omitempty"`
}

// Validate validates the ParseRequest using the validator.
func (r *ParseRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// WantsEnrichment reports whether the caller asked for enrichment. It
// defaults to true.
func (r *ParseRequest) WantsEnrichment() bool {
	return r.Enrich == nil || *r.Enrich
}
