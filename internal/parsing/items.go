package parsing

import (
	"regexp"
	"strings"
)

// MarkerKind is the list-marker family that introduced an item
type MarkerKind string

const (
	MarkerGlyph    MarkerKind = "glyph"
	MarkerNumbered MarkerKind = "numbered"
	MarkerLettered MarkerKind = "lettered"
	MarkerSentence MarkerKind = "sentence"
)

var markerRe = regexp.MustCompile(`^[ \t]*(?:([•\-\*–·▪◦●○■➤►])|(\d{1,3}[.)])|([a-zA-Z][.)]))[ \t]+`)

// CandidateItem is one extracted unit of text awaiting classification.
// Section indexes the analysed section list; Start and End include any marker.
type CandidateItem struct {
	Text    string     `json:"text"`
	Section int        `json:"section"`
	Start   int        `json:"start"`
	End     int        `json:"end"`
	Hint    Hint       `json:"hint,omitempty"`
	Marker  MarkerKind `json:"marker"`
}

// Span returns the source range of the item
func (c CandidateItem) Span() Span {
	return Span{Start: c.Start, End: c.End}
}

// matchMarker reports the marker family leading line and the offset of the
// item content after it
func matchMarker(line string) (MarkerKind, int, bool) {
	loc := markerRe.FindStringSubmatchIndex(line)
	if loc == nil || loc[1] >= len(line) || isSpace(line[loc[1]]) {
		return "", 0, false
	}
	switch {
	case loc[2] >= 0:
		return MarkerGlyph, loc[1], true
	case loc[4] >= 0:
		return MarkerNumbered, loc[1], true
	default:
		return MarkerLettered, loc[1], true
	}
}

// ExtractItems splits the body of section into candidate items, skipping the
// merged excluded spans. Marker-led lines open items, unmarked lines continue
// the open item, blank lines close it, and remaining prose is split into
// sentences.
func ExtractItems(text string, section Section, index int, rs *Ruleset, excluded []Span) []CandidateItem {
	x := &extractor{text: text, section: section, index: index, rs: rs}
	for _, region := range subtractSpans(section.HeaderEnd, section.End, excluded) {
		x.region(region)
	}
	return x.items
}

type openItem struct {
	start, end int
	marker     MarkerKind
	parts      []string
}

type extractor struct {
	text    string
	section Section
	index   int
	rs      *Ruleset
	items   []CandidateItem

	open  *openItem
	prose *Span
}

func (x *extractor) region(r Span) {
	pos := r.Start
	for pos < r.End {
		end := r.End
		next := r.End
		if idx := strings.IndexByte(x.text[pos:r.End], '\n'); idx >= 0 {
			end = pos + idx
			next = end + 1
		}
		x.line(pos, end)
		pos = next
	}
	x.closeItem()
	x.flushProse()
}

func (x *extractor) line(start, end int) {
	t := trimSpan(x.text, Span{Start: start, End: end})
	if t.Len() == 0 {
		x.closeItem()
		return
	}
	atLineStart := start == 0 || x.text[start-1] == '\n'
	if atLineStart {
		if kind, offset, ok := matchMarker(x.text[start:end]); ok {
			x.closeItem()
			x.flushProse()
			x.open = &openItem{
				start:  t.Start,
				end:    t.End,
				marker: kind,
				parts:  []string{x.text[start+offset : t.End]},
			}
			return
		}
	}
	if x.open != nil {
		x.open.end = t.End
		x.open.parts = append(x.open.parts, x.text[t.Start:t.End])
		return
	}
	if x.prose == nil {
		x.prose = &Span{Start: t.Start, End: t.End}
		return
	}
	x.prose.End = t.End
}

func (x *extractor) closeItem() {
	if x.open == nil {
		return
	}
	x.emit(x.open.start, x.open.end, strings.Join(x.open.parts, " "), x.open.marker)
	x.open = nil
}

func (x *extractor) flushProse() {
	if x.prose == nil {
		return
	}
	for _, s := range splitSentences(x.text, *x.prose, x.rs) {
		x.emit(s.Start, s.End, x.text[s.Start:s.End], MarkerSentence)
	}
	x.prose = nil
}

func (x *extractor) emit(start, end int, raw string, marker MarkerKind) {
	x.items = append(x.items, CandidateItem{
		Text:    collapseSpace(raw),
		Section: x.index,
		Start:   start,
		End:     end,
		Hint:    x.section.HintAt(start),
		Marker:  marker,
	})
}

// splitSentences cuts span at sentence breaks and trims each piece
func splitSentences(text string, span Span, rs *Ruleset) []Span {
	var out []Span
	start := span.Start
	for p := span.Start + 1; p < span.End; p++ {
		if !sentenceBreak(text, p, rs) {
			continue
		}
		if s := trimSpan(text, Span{Start: start, End: p}); s.Len() > 0 {
			out = append(out, s)
		}
		start = p
	}
	if s := trimSpan(text, Span{Start: start, End: span.End}); s.Len() > 0 {
		out = append(out, s)
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
