package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"line endings", "Line 1\r\nLine 2\rLine 3\nLine 4", "Line 1\nLine 2\nLine 3\nLine 4"},
		{"collapse spaces", "Line    with    multiple    spaces", "Line with multiple spaces"},
		{"tabs", "Go\tand\t\tSQL", "Go and SQL"},
		{"trim lines", "   indented line   \n\ttabbed", "indented line\ntabbed"},
		{"blank runs", "Line 1\n\n\n\n\nLine 2", "Line 1\n\nLine 2"},
		{"whitespace-only lines count as blank", "A\n   \n \t \nB", "A\n\nB"},
		{"no-break space", "5+\u00a0years of\u00a0Go", "5+ years of Go"},
		{"zero-width characters", "Kuber\u200bnetes\ufeff", "Kubernetes"},
		{"bullets kept", "- Item 1\n* Item 2\n• Item 3", "- Item 1\n* Item 2\n• Item 3"},
		{"unicode kept", "Test with émojis 🚀 and spéciàl chàracters", "Test with émojis 🚀 and spéciàl chàracters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Test content   with   spaces\n\n\nMultiple   blank   lines",
		" Requirements: - Go\r\n\r\n\r\n- SQL  ",
		"   ",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<p>Hello</p>"))
	assert.True(t, LooksLikeHTML("Intro<BR/>more"))
	assert.True(t, LooksLikeHTML(`<div class="x">a</div>`))
	assert.False(t, LooksLikeHTML("Salary < 100k and > 50k"))
	assert.False(t, LooksLikeHTML("Use <placeholder> values"))
}

func TestStripHTML(t *testing.T) {
	text, err := StripHTML("<p>Requirements:</p><ul><li>3+ years of SQL</li><li>Airflow</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "Requirements:\n- 3+ years of SQL\n- Airflow", text)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Plain text", Clean("  Plain   text  "))
	assert.Equal(t, "Title\nBody &amp; more", Clean("Title\nBody &amp; more"))
	assert.Equal(t, "Body & more", Clean("<p>Body &amp; more</p>"))
}

func TestIngestFromFile_Text(t *testing.T) {
	posting, metadata, err := IngestFromFile("testdata/sample_posting.txt")
	require.NoError(t, err)

	expected := "Data Engineer\n\n" +
		"Acme builds logistics software for regional carriers.\n\n" +
		"Responsibilities:\n" +
		"- Design and build batch pipelines in Python\n" +
		"- Maintain our Airflow deployment\n\n" +
		"Requirements:\n" +
		"- 3+ years of experience with SQL\n" +
		"- Bachelor's degree in Computer Science"
	assert.Equal(t, expected, posting.Text)
	assert.Empty(t, posting.Title)
	assert.Equal(t, SourceFile, posting.Source)

	require.NotNil(t, metadata)
	assert.Equal(t, ContentHash(posting.Text), metadata.Hash)
	assert.NotEmpty(t, metadata.Timestamp)
}

func TestIngestFromFile_HTML(t *testing.T) {
	posting, _, err := IngestFromFile("testdata/sample_posting.html")
	require.NoError(t, err)

	assert.Equal(t, "Data Engineer", posting.Title)
	assert.Contains(t, posting.Text, "Responsibilities\n- Design and build batch pipelines in Python\n- Maintain our Airflow deployment")
	assert.Contains(t, posting.Text, "- 3+ years of experience with SQL")
	assert.NotContains(t, posting.Text, "Navigation")
	assert.NotContains(t, posting.Text, "Footer")
	assert.NotContains(t, posting.Text, "alert")
	assert.NotContains(t, posting.Text, "color: red")
}

func TestIngestFromFile_FileNotFound(t *testing.T) {
	_, _, err := IngestFromFile("/nonexistent/file.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestIngestFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte(" \n\n \t"), 0644))

	_, _, err := IngestFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestIngestFromFile_HashUniqueness(t *testing.T) {
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "a.txt")
	file2 := filepath.Join(tmpDir, "b.txt")
	require.NoError(t, os.WriteFile(file1, []byte("Content A"), 0644))
	require.NoError(t, os.WriteFile(file2, []byte("Content B"), 0644))

	_, meta1, err := IngestFromFile(file1)
	require.NoError(t, err)
	_, meta2, err := IngestFromFile(file2)
	require.NoError(t, err)

	assert.NotEqual(t, meta1.Hash, meta2.Hash)
}

func TestWriteOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	metadata := NewMetadata("text", "https://example.com/job")

	require.NoError(t, WriteOutput(outDir, "text", metadata))

	cleaned, err := os.ReadFile(filepath.Join(outDir, "posting.cleaned.txt"))
	require.NoError(t, err)
	assert.Equal(t, "text", string(cleaned))

	meta, err := os.ReadFile(filepath.Join(outDir, "posting.meta.json"))
	require.NoError(t, err)
	assert.Contains(t, string(meta), `"url": "https://example.com/job"`)
}
