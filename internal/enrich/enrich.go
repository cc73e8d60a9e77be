// Package enrich extracts NLP features (skills, entities, action verbs and
// domain tags) from cleaned posting text.
package enrich

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/posting-parser/internal/llm"
	"github.com/jonathan/posting-parser/internal/types"
	"go.uber.org/zap"
)

// Enrichment modes accepted in configuration
const (
	ModeKeywords = "keywords"
	ModeLLM      = "llm"
	ModeNone     = "none"
)

// Enricher extracts enrichment features from the full cleaned text of a posting
type Enricher interface {
	Enrich(ctx context.Context, text string) (*types.Enrichment, error)
}

// Error reports a failed enrichment
type Error struct {
	Enricher string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s enrichment failed: %s: %v", e.Enricher, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s enrichment failed: %s", e.Enricher, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns the enricher for mode. ModeNone returns a nil Enricher. ModeLLM
// requires a client.
func New(mode string, client llm.Client, logger *zap.Logger) (Enricher, error) {
	switch mode {
	case ModeKeywords, "":
		return NewDefaultKeywordEnricher(), nil
	case ModeLLM:
		if client == nil {
			return nil, &Error{Enricher: ModeLLM, Message: "no client configured"}
		}
		return NewLLMEnricher(client, logger), nil
	case ModeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown enrichment mode %q", mode)
	}
}

// newEnrichment returns an Enrichment whose collections marshal as empty
func newEnrichment() *types.Enrichment {
	return &types.Enrichment{
		ExtractedSkills: []string{},
		Entities:        map[string][]string{},
		ActionVerbs:     []string{},
		DomainTags:      []string{},
	}
}

// sortedSet trims, drops empties, deduplicates case-insensitively (first
// spelling wins) and sorts.
func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

// finalize canonicalises an Enrichment in place: skills are normalized and
// every collection becomes a sorted set.
func finalize(e *types.Enrichment) *types.Enrichment {
	out := newEnrichment()
	if e == nil {
		return out
	}

	skills := make([]string, 0, len(e.ExtractedSkills))
	for _, s := range e.ExtractedSkills {
		skills = append(skills, NormalizeSkillName(s))
	}
	out.ExtractedSkills = sortedSet(skills)

	for kind, values := range e.Entities {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}
		if set := sortedSet(values); len(set) > 0 {
			out.Entities[kind] = set
		}
	}

	verbs := make([]string, 0, len(e.ActionVerbs))
	for _, v := range e.ActionVerbs {
		verbs = append(verbs, strings.ToLower(v))
	}
	out.ActionVerbs = sortedSet(verbs)
	out.DomainTags = sortedSet(e.DomainTags)
	return out
}
