package parsing

import "strings"

// BuildSummary joins the text not covered by claimed spans, in source order,
// with single spaces. It returns the summary and the trimmed residual spans
// that contributed to it.
func BuildSummary(text string, claimed []Span) (string, []Span) {
	var parts []string
	var spans []Span
	for _, gap := range subtractSpans(0, len(text), mergeSpans(claimed)) {
		s := trimSpan(text, gap)
		if s.Len() == 0 {
			continue
		}
		spans = append(spans, s)
		if part := collapseSpace(text[s.Start:s.End]); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " "), spans
}
