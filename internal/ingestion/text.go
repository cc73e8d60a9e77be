package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonathan/posting-parser/internal/fetch"
	"github.com/jonathan/posting-parser/internal/types"
)

// invisibleReplacer maps layout-only code points to their plain equivalents
var invisibleReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
	"\u00a0", " ", // no-break space
	"\u2007", " ",
	"\u202f", " ",
	"\u2028", "\n",
	"\u2029", "\n\n",
	"\u200b", "", // zero-width space
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

var (
	spaceRunRe   = regexp.MustCompile(` {2,}`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	htmlMarkupRe = regexp.MustCompile(`(?i)<(?:p|div|br|li|ul|ol|h[1-6]|span|strong|b|em|table|section)\b[^>]*>`)
)

// Normalize cleans text content while preserving line structure. Line endings
// become LF, invisible characters are dropped, every line is trimmed with its
// inner space runs collapsed, and runs of blank lines shrink to one.
// Normalize is idempotent.
func Normalize(content string) string {
	if content == "" {
		return ""
	}

	content = invisibleReplacer.Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	result := strings.Join(lines, "\n")

	result = removeExcessiveBlankLines(result)
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses internal spaces
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return spaceRunRe.ReplaceAllString(line, " ")
}

// removeExcessiveBlankLines reduces consecutive blank lines to one
func removeExcessiveBlankLines(content string) string {
	return blankRunRe.ReplaceAllString(content, "\n\n")
}

// LooksLikeHTML reports whether text carries block-level markup
func LooksLikeHTML(text string) bool {
	return htmlMarkupRe.MatchString(text)
}

// StripHTML renders an HTML document or fragment to text, keeping list items
// as "- " lines and block elements on their own lines.
func StripHTML(html string) (string, error) {
	text, err := fetch.ExtractMainText(html, nil)
	if err != nil {
		return "", fmt.Errorf("failed to strip HTML: %w", err)
	}
	return text, nil
}

// Clean strips markup when present and normalizes the result.
func Clean(content string) string {
	if LooksLikeHTML(content) {
		if text, err := StripHTML(content); err == nil {
			content = text
		}
	}
	return Normalize(content)
}

// IngestFromFile reads a text or HTML file and returns it as a raw posting
// with metadata. HTML is detected by extension or content.
func IngestFromFile(path string) (*types.RawPosting, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	raw := string(content)
	posting := &types.RawPosting{Source: SourceFile}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" || LooksLikeHTML(raw) {
		text, err := StripHTML(raw)
		if err != nil {
			return nil, nil, err
		}
		posting.Title = fetch.ExtractTitle(raw)
		raw = text
	}

	posting.Text = Normalize(raw)
	if posting.Text == "" {
		return nil, nil, fmt.Errorf("file %s has no text content", path)
	}

	metadata := NewMetadata(posting.Text, "")
	metadata.Source = SourceFile
	return posting, metadata, nil
}

// WriteOutput writes the normalized text and metadata to outDir
func WriteOutput(outDir string, text string, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, "posting.cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaPath := filepath.Join(outDir, "posting.meta.json")
	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
