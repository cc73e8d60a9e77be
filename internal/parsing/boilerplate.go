package parsing

import "strings"

// softWrapWidth is the line length under which a line break is treated as a
// sentence break rather than a wrapped line
const softWrapWidth = 60

// FindBoilerplate returns the merged spans of text matched by boilerplate rules.
// Sentence rules grow a keyword match to its enclosing sentence within the
// rule window; block rules cover a matching header line and what follows it up
// to the next header or the window, rounded to a line end.
func FindBoilerplate(text string, rs *Ruleset, headers []Header) []Span {
	var spans []Span
	for _, rule := range rs.boilerplate {
		switch rule.kind {
		case BoilerplateSentence:
			for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
				s := Span{
					Start: sentenceStart(text, loc[0], max(0, loc[0]-rule.window), rs),
					End:   sentenceEnd(text, loc[1], min(len(text), loc[1]+rule.window), rs),
				}
				if s = trimSpan(text, s); s.Len() > 0 {
					s.Rule = rule.name
					spans = append(spans, s)
				}
			}
		case BoilerplateBlock:
			for i, h := range headers {
				if !rule.pattern.MatchString(h.Text) {
					continue
				}
				end := blockEnd(text, headers[i+1:], h.Start+rule.window)
				if s := trimSpan(text, Span{Start: h.Start, End: end}); s.Len() > 0 {
					s.Rule = rule.name
					spans = append(spans, s)
				}
			}
		}
	}
	return mergeSpans(spans)
}

// blockEnd finds where a block that may run to limit stops: the next
// non-label header, or the end of the line containing limit.
func blockEnd(text string, following []Header, limit int) int {
	stop := len(text)
	for _, h := range following {
		if h.Kind != HeaderLabel {
			stop = h.Start
			break
		}
	}
	if limit >= stop {
		return stop
	}
	if idx := strings.IndexByte(text[limit:], '\n'); idx >= 0 && limit+idx < stop {
		return limit + idx
	}
	return stop
}

func sentenceStart(text string, pos, floor int, rs *Ruleset) int {
	for p := pos; p > floor; p-- {
		if sentenceBreak(text, p, rs) {
			return p
		}
	}
	return floor
}

func sentenceEnd(text string, pos, ceil int, rs *Ruleset) int {
	for p := pos; p < ceil; p++ {
		if sentenceBreak(text, p, rs) {
			return p
		}
	}
	return ceil
}

// sentenceBreak reports whether a new sentence starts at p. Breaks only fall
// on non-space bytes, after terminal punctuation followed by spaces, or after
// a line break that ends a short, blank or punctuated line or precedes a
// list marker.
func sentenceBreak(text string, p int, rs *Ruleset) bool {
	if p <= 0 || p >= len(text) || isSpace(text[p]) {
		return false
	}
	q := p
	for q > 0 && (text[q-1] == ' ' || text[q-1] == '\t') {
		q--
	}
	if q > 0 && text[q-1] == '\n' {
		lineEnd := q - 1
		lineStart := strings.LastIndexByte(text[:lineEnd], '\n') + 1
		prev := trimSpan(text, Span{Start: lineStart, End: lineEnd})
		if prev.Len() == 0 || prev.Len() < softWrapWidth {
			return true
		}
		if strings.IndexByte(".!?:;", text[prev.End-1]) >= 0 {
			return true
		}
		next := strings.IndexByte(text[p:], '\n')
		if next < 0 {
			next = len(text) - p
		}
		_, _, ok := matchMarker(text[p : p+next])
		return ok
	}
	if q == p || q == 0 {
		return false
	}
	k := q - 1
	for k > 0 && strings.IndexByte(`)"'`, text[k]) >= 0 {
		k--
	}
	switch text[k] {
	case '!', '?':
		return true
	case '.':
		return !isAbbreviation(text, k, rs)
	}
	return false
}

// isAbbreviation reports whether the period at dot ends a known abbreviation
// or a single-letter initial
func isAbbreviation(text string, dot int, rs *Ruleset) bool {
	start := dot
	for start > 0 {
		c := text[start-1]
		if c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			start--
			continue
		}
		break
	}
	token := strings.ToLower(strings.Trim(text[start:dot], "."))
	if token == "" {
		return false
	}
	if dot-start == 1 && text[start] >= 'A' && text[start] <= 'Z' && (start == 0 || isSpace(text[start-1])) {
		return true
	}
	_, ok := rs.abbreviations[token]
	return ok
}
