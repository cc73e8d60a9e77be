// Package parsing turns normalized job-posting text into a structured record of
// required and bonus qualifications, responsibilities and a narrative summary.
//
// Parsing is deterministic and rule-based. Header sections decide an item's
// category; lexical signals only set its confidence, except in text with no
// recognised headers, where they pick the category.
package parsing

import (
	"fmt"
	"sort"

	"github.com/jonathan/posting-parser/internal/types"
)

// ParserVersion identifies the rule and arbitration behaviour of this package
const ParserVersion = "1.0.0"

// Parser is an immutable, concurrency-safe posting parser
type Parser struct {
	rules *Ruleset
	opts  Options
}

// New returns a Parser using rules and opts. A nil rules uses DefaultRuleset.
func New(rules *Ruleset, opts Options) (*Parser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = DefaultRuleset()
	}
	return &Parser{rules: rules, opts: opts}, nil
}

// Default returns a Parser with the built-in rules and default options
func Default() *Parser {
	return &Parser{rules: DefaultRuleset(), opts: DefaultOptions()}
}

// Analysis is the full trace of one parse
type Analysis struct {
	Text         string               `json:"-"`
	Sections     []Section            `json:"sections"`
	Headers      []Header             `json:"headers"`
	Boilerplate  []Span               `json:"boilerplate"`
	Excluded     []Span               `json:"excluded"`
	Candidates   []CandidateItem      `json:"candidates"`
	Items        []ClassifiedItem     `json:"items"`
	SummarySpans []Span               `json:"summary_spans"`
	Warnings     []Warning            `json:"warnings"`
	Posting      *types.ParsedPosting `json:"posting"`
}

// Fallback reports whether no header was recognised and the whole text was
// classified from lexical signals alone
func (a *Analysis) Fallback() bool {
	return len(a.Sections) == 1 && a.Sections[0].Type == types.SectionUnclassified
}

// Parse returns the structured record for raw. raw is not modified.
func (p *Parser) Parse(raw types.RawPosting) *types.ParsedPosting {
	return p.Analyze(raw.Text).Posting
}

// Analyze parses text and returns every intermediate result
func (p *Parser) Analyze(text string) *Analysis {
	a := &Analysis{Text: text, Posting: types.NewParsedPosting()}
	if trimSpan(text, Span{Start: 0, End: len(text)}).Len() == 0 {
		a.Warnings = append(a.Warnings, Warning{Kind: WarnEmptyInput, Message: "posting text is empty"})
		return a
	}

	rs := p.rules
	a.Headers = FindHeaders(text, rs)
	a.Sections = sectionsFromHeaders(text, a.Headers)
	a.Boilerplate = FindBoilerplate(text, rs, a.Headers)

	excluded := make([]Span, 0, len(a.Headers)+len(a.Boilerplate))
	for _, h := range a.Headers {
		excluded = append(excluded, h.Span())
	}
	excluded = append(excluded, a.Boilerplate...)
	a.Excluded = mergeSpans(excluded)

	if a.Fallback() {
		a.Warnings = append(a.Warnings, Warning{
			Kind:    WarnStructuralAmbiguity,
			Message: "no section headers found; items classified from content alone",
		})
	}

	claimed := append([]Span{}, a.Excluded...)
	for i, section := range a.Sections {
		for _, item := range ExtractItems(text, section, i, rs, a.Excluded) {
			a.Candidates = append(a.Candidates, item)
			classified := Arbitrate(item, section, Validate(item.Text, rs), rs, p.opts)
			a.Items = append(a.Items, classified)
			if p.collect(a, classified) {
				claimed = append(claimed, item.Span())
			}
		}
	}

	a.Posting.Summary, a.SummarySpans = BuildSummary(text, claimed)
	a.Posting.SectionsFound = sectionsFound(a.Sections)
	return a
}

// collect adds classified to the posting and reports whether it claimed its span
func (p *Parser) collect(a *Analysis, item ClassifiedItem) bool {
	switch item.Category {
	case CategoryRequired, CategoryBonus:
		q := types.Qualification{
			Text:          item.Text,
			SkillType:     item.SkillType,
			Confidence:    item.Confidence,
			LowConfidence: item.LowConfidence,
			Flagged:       item.Flagged,
			FlagReason:    item.FlagReason,
		}
		if item.Category == CategoryRequired {
			a.Posting.Required = append(a.Posting.Required, q)
		} else {
			a.Posting.Bonus = append(a.Posting.Bonus, q)
		}
	case CategoryResponsibility:
		a.Posting.Responsibilities = append(a.Posting.Responsibilities, types.Responsibility{
			Activity:       item.Text,
			OwnershipLevel: item.OwnershipLevel,
			Frequency:      item.Frequency,
			ActivityType:   item.ActivityType,
			Confidence:     item.Confidence,
			LowConfidence:  item.LowConfidence,
		})
	case CategoryUnclassified:
		return false
	}

	if item.LowConfidence {
		a.Warnings = append(a.Warnings, Warning{
			Kind:    WarnLowConfidenceClassification,
			Message: fmt.Sprintf("%s classified with confidence %.2f", item.Category, item.Confidence),
			Item:    item.Text,
		})
	}
	if item.Flagged {
		a.Warnings = append(a.Warnings, Warning{
			Kind:    WarnImperativeUnderQualification,
			Message: "action-verb-led item under a qualification header",
			Item:    item.Text,
		})
	}
	return true
}

func sectionsFound(sections []Section) []types.SectionType {
	seen := map[types.SectionType]bool{}
	found := []types.SectionType{}
	for _, s := range sections {
		if s.Type == types.SectionUnclassified || seen[s.Type] {
			continue
		}
		seen[s.Type] = true
		found = append(found, s.Type)
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found
}
