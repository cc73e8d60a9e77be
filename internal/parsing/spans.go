package parsing

import "sort"

// Span is a half-open byte range [Start, End) of the normalized text
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Rule  string `json:"rule,omitempty"`
}

// Len returns the number of bytes in the span
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset lies inside the span
func (s Span) Contains(offset int) bool { return offset >= s.Start && offset < s.End }

// mergeSpans sorts spans and merges overlapping or touching ranges.
// Rule names of merged spans are dropped in favour of the first one.
func mergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.End > s.Start {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []Span
	for _, s := range sorted {
		if n := len(out); n > 0 && s.Start <= out[n-1].End {
			if s.End > out[n-1].End {
				out[n-1].End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// subtractSpans returns the parts of [start, end) not covered by the merged exclusions
func subtractSpans(start, end int, excluded []Span) []Span {
	var out []Span
	cur := start
	for _, ex := range excluded {
		if ex.End <= cur {
			continue
		}
		if ex.Start >= end {
			break
		}
		if ex.Start > cur {
			out = append(out, Span{Start: cur, End: ex.Start})
		}
		if ex.End > cur {
			cur = ex.End
		}
	}
	if cur < end {
		out = append(out, Span{Start: cur, End: end})
	}
	return out
}

// trimSpan shrinks a span so it starts and ends on non-whitespace bytes.
// The returned span is empty when the range holds only whitespace.
func trimSpan(text string, s Span) Span {
	for s.Start < s.End && isSpace(text[s.Start]) {
		s.Start++
	}
	for s.End > s.Start && isSpace(text[s.End-1]) {
		s.End--
	}
	return s
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
