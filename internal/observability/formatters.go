// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/posting-parser/internal/db"
	"github.com/jonathan/posting-parser/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, shorten(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// shorten truncates s to n runes, ending in "..." when cut
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintProcessedPosting outputs a human-readable summary of a parsed posting.
func (p *Printer) PrintProcessedPosting(posting *types.ProcessedPosting) {
	if posting == nil || posting.Parsed == nil {
		return
	}
	parsed := posting.Parsed

	var sb strings.Builder
	if posting.Title != "" {
		fmt.Fprintf(&sb, "Title:    %s\n", posting.Title)
	}
	if posting.Company != "" {
		fmt.Fprintf(&sb, "Company:  %s\n", posting.Company)
	}
	fmt.Fprintf(&sb, "Sections: %s\n", joinSections(parsed.SectionsFound))
	sb.WriteString("\n")

	writeQualifications(&sb, "Required", parsed.Required)
	writeQualifications(&sb, "Bonus", parsed.Bonus)

	if len(parsed.Responsibilities) > 0 {
		fmt.Fprintf(&sb, "Responsibilities (%d):\n", len(parsed.Responsibilities))
		count := min(len(parsed.Responsibilities), maxItemsToShow)
		for _, r := range parsed.Responsibilities[:count] {
			fmt.Fprintf(&sb, "  • %s\n", r.Activity)
			if tags := joinNonEmpty(r.OwnershipLevel, r.Frequency, r.ActivityType); tags != "" {
				fmt.Fprintf(&sb, "    [%s]\n", tags)
			}
		}
		if len(parsed.Responsibilities) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(parsed.Responsibilities)-maxItemsToShow)
		}
		sb.WriteString("\n")
	}

	if parsed.Summary != "" {
		sb.WriteString("Summary:\n")
		fmt.Fprintf(&sb, "  %s\n", shorten(parsed.Summary, boxWidth-6))
	}

	p.printBox("PARSED POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

func writeQualifications(sb *strings.Builder, label string, items []types.Qualification) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s (%d):\n", label, len(items))
	count := min(len(items), maxItemsToShow)
	for _, q := range items[:count] {
		marker := "•"
		if q.Flagged || q.LowConfidence {
			marker = "?"
		}
		fmt.Fprintf(sb, "  %s %s (%s, %.2f)\n", marker, q.Text, q.SkillType, q.Confidence)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
	sb.WriteString("\n")
}

// PrintEnrichment outputs extracted skills, entities and tags.
func (p *Printer) PrintEnrichment(e *types.Enrichment) {
	if e == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Skills:  %s\n", joinOrNone(e.ExtractedSkills))
	fmt.Fprintf(&sb, "Verbs:   %s\n", joinOrNone(e.ActionVerbs))
	fmt.Fprintf(&sb, "Domains: %s\n", joinOrNone(e.DomainTags))

	if len(e.Entities) > 0 {
		sb.WriteString("\nEntities:\n")
		kinds := make([]string, 0, len(e.Entities))
		for k := range e.Entities {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&sb, "  %s: %s\n", k, strings.Join(e.Entities[k], ", "))
		}
	}

	p.printBox("ENRICHMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWarnings outputs parser warnings.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []types.Warning) {
	if len(warnings) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO WARNINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d warnings:\n\n", len(warnings))
	for i, w := range warnings {
		fmt.Fprintf(&sb, "⚠ %s\n", w.Kind)
		fmt.Fprintf(&sb, "  %s\n", w.Message)
		if w.Item != "" {
			fmt.Fprintf(&sb, "  %q\n", shorten(w.Item, 45))
		}
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PARSER WARNINGS", sb.String())
}

// PrintRunSummary outputs batch totals.
func (p *Printer) PrintRunSummary(processed, errors int, elapsed time.Duration) {
	content := fmt.Sprintf("Processed: %d\nErrors:    %d\nElapsed:   %s",
		processed, errors, elapsed.Round(time.Millisecond))
	p.printBox("RUN SUMMARY", content)
}

// PrintCounts outputs stored posting totals.
func (p *Printer) PrintCounts(c *db.Counts) {
	if c == nil {
		return
	}
	content := fmt.Sprintf("Raw postings:  %d\n  processed:   %d\n  unprocessed: %d\nParsed:        %d",
		c.Raw, c.Processed, c.Unprocessed, c.Parsed)
	p.printBox("STORED POSTINGS", content)
}

func joinSections(sections []types.SectionType) string {
	if len(sections) == 0 {
		return "(none)"
	}
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

func joinNonEmpty(values ...string) string {
	var parts []string
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
