package parsing

import (
	"strings"

	"github.com/jonathan/posting-parser/internal/types"
)

// maxHeaderLen bounds the trimmed length of a line that may act as a header
const maxHeaderLen = 80

// maxLabelLen and maxLabelWords bound generic "Label:" lines
const (
	maxLabelLen   = 60
	maxLabelWords = 6
)

// Hint is a required/preferred cue carried by a header or label line
type Hint string

const (
	HintNone      Hint = ""
	HintRequired  Hint = "required"
	HintPreferred Hint = "preferred"
)

// HeaderKind is the family a structural line belongs to
type HeaderKind string

const (
	HeaderQualification  HeaderKind = "qualification"
	HeaderResponsibility HeaderKind = "responsibility"
	HeaderTerminator     HeaderKind = "terminator"
	HeaderHint           HeaderKind = "hint"
	HeaderLabel          HeaderKind = "label"
)

// Header is a structural line. Start and End cover the trimmed line content;
// LineEnd is the offset just past the line break.
type Header struct {
	Kind    HeaderKind `json:"kind"`
	Text    string     `json:"text"`
	Hint    Hint       `json:"hint,omitempty"`
	Start   int        `json:"start"`
	End     int        `json:"end"`
	LineEnd int        `json:"line_end"`
}

// Span returns the excluded range of the header line
func (h Header) Span() Span {
	return Span{Start: h.Start, End: h.End, Rule: string(h.Kind)}
}

// Subsection is a labelled run inside a qualification section
type Subsection struct {
	Hint     Hint `json:"hint"`
	Start    int  `json:"start"`
	LabelEnd int  `json:"label_end"`
	End      int  `json:"end"`
}

// Section is a typed span of the text introduced by a header
type Section struct {
	Type           types.SectionType `json:"type"`
	Start          int               `json:"start"`
	HeaderEnd      int               `json:"header_end"`
	End            int               `json:"end"`
	MatchedPattern string            `json:"matched_pattern,omitempty"`
	Hint           Hint              `json:"hint,omitempty"`
	Subsections    []Subsection      `json:"subsections,omitempty"`
}

// Body returns the section content after its header line
func (s Section) Body() Span {
	return Span{Start: s.HeaderEnd, End: s.End}
}

// HintAt returns the hint in force at offset
func (s Section) HintAt(offset int) Hint {
	for _, sub := range s.Subsections {
		if offset >= sub.Start && offset < sub.End {
			return sub.Hint
		}
	}
	return s.Hint
}

// FindHeaders classifies every line of text that acts as a header or label
func FindHeaders(text string, rs *Ruleset) []Header {
	var headers []Header
	forEachLine(text, func(start, end, next int) {
		line := trimSpan(text, Span{Start: start, End: end})
		if line.Len() == 0 || line.Len() > maxHeaderLen {
			return
		}
		raw := text[line.Start:line.End]
		if _, _, ok := matchMarker(raw); ok {
			return
		}
		norm, colon := normalizeHeader(raw)
		if norm == "" {
			return
		}
		h := Header{Text: norm, Start: line.Start, End: line.End, LineEnd: next}
		switch {
		case rs.hintHeader != nil && rs.hintHeader.MatchString(norm):
			h.Kind = HeaderHint
			h.Hint = HintRequired
			if rs.preferredHint != nil && rs.preferredHint.MatchString(norm) {
				h.Hint = HintPreferred
			}
		case rs.qualificationHeader.MatchString(norm):
			h.Kind = HeaderQualification
		case rs.responsibilityHeader.MatchString(norm):
			h.Kind = HeaderResponsibility
		case rs.terminatorHeader != nil && rs.terminatorHeader.MatchString(norm):
			h.Kind = HeaderTerminator
		case colon && line.Len() <= maxLabelLen && len(strings.Fields(norm)) <= maxLabelWords:
			h.Kind = HeaderLabel
		default:
			return
		}
		headers = append(headers, h)
	})
	return headers
}

// DetectSections splits text into typed sections. Text with no qualification
// or responsibility header yields a single unclassified section covering the
// whole text; header lines inside it are excluded from items by the caller.
func DetectSections(text string, rs *Ruleset) []Section {
	return sectionsFromHeaders(text, FindHeaders(text, rs))
}

func sectionsFromHeaders(text string, headers []Header) []Section {
	var sections []Section
	open := -1
	closeOpen := func(at int) {
		if open < 0 {
			return
		}
		s := &sections[open]
		s.End = at
		if n := len(s.Subsections); n > 0 {
			s.Subsections[n-1].End = at
		}
		open = -1
	}
	openSection := func(t types.SectionType, h Header, hint Hint) {
		closeOpen(h.Start)
		sections = append(sections, Section{
			Type:           t,
			Start:          h.Start,
			HeaderEnd:      h.LineEnd,
			End:            len(text),
			MatchedPattern: h.Text,
			Hint:           hint,
		})
		open = len(sections) - 1
	}

	for _, h := range headers {
		switch h.Kind {
		case HeaderQualification:
			openSection(types.SectionQualification, h, HintNone)
		case HeaderResponsibility:
			openSection(types.SectionResponsibility, h, HintNone)
		case HeaderHint:
			if open >= 0 && sections[open].Type == types.SectionQualification {
				s := &sections[open]
				if n := len(s.Subsections); n > 0 {
					s.Subsections[n-1].End = h.Start
				}
				s.Subsections = append(s.Subsections, Subsection{Hint: h.Hint, Start: h.Start, LabelEnd: h.LineEnd, End: len(text)})
				continue
			}
			openSection(types.SectionQualification, h, h.Hint)
		case HeaderTerminator:
			closeOpen(h.Start)
		case HeaderLabel:
		}
	}
	closeOpen(len(text))

	if len(sections) == 0 {
		return []Section{{Type: types.SectionUnclassified, Start: 0, HeaderEnd: 0, End: len(text)}}
	}
	return sections
}

// normalizeHeader strips markdown decoration, a trailing colon and curly
// apostrophes, and lowercases the line. colon reports a trailing colon.
func normalizeHeader(line string) (norm string, colon bool) {
	s := strings.TrimLeft(line, "#*_= \t")
	s = strings.TrimRight(s, "*_ \t")
	if strings.HasSuffix(s, ":") {
		colon = true
		s = strings.TrimRight(strings.TrimSuffix(s, ":"), "*_ \t")
	}
	s = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " ")), colon
}

// forEachLine calls fn with the bounds of each line, excluding the line
// break, and the offset of the following line.
func forEachLine(text string, fn func(start, end, next int)) {
	start := 0
	for start < len(text) {
		idx := strings.IndexByte(text[start:], '\n')
		if idx < 0 {
			fn(start, len(text), len(text))
			return
		}
		fn(start, start+idx, start+idx+1)
		start += idx + 1
	}
}
