package ingestion

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPostingsFile(t *testing.T) {
	batch, err := LoadPostingsFile("testdata/postings.json", "jobspy")
	require.NoError(t, err)
	require.Len(t, batch.Postings, 2)
	require.Len(t, batch.Skipped, 1)

	first := batch.Postings[0]
	assert.Equal(t, "Data Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Remote", first.Location)
	assert.Equal(t, "https://example.com/jobs/1", first.URL)
	assert.Equal(t, "120000", first.SalaryRange)
	assert.Equal(t, "fulltime", first.JobType)
	assert.Equal(t, "jobspy", first.Source)
	assert.Equal(t, "Requirements:\n- 3+ years of SQL\n- Experience with Airflow", first.Text)
	require.NotNil(t, first.PostedAt)
	assert.True(t, time.UnixMilli(1700000000000).Equal(*first.PostedAt))

	second := batch.Postings[1]
	assert.Equal(t, "Analyst", second.Title)
	assert.Equal(t, "Globex", second.Company)
	assert.Equal(t, "Responsibilities:\n- Build dashboards in Tableau", second.Text)
	require.NotNil(t, second.PostedAt)
	assert.True(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Equal(*second.PostedAt))

	skipped := batch.Skipped[0]
	assert.Equal(t, 2, skipped.Index)
	assert.Equal(t, "Ghost Role", skipped.Title)
	assert.Equal(t, "record 2 (Ghost Role): job description is required", skipped.Error())
}

func TestLoadPostingsFile_NotFound(t *testing.T) {
	_, err := LoadPostingsFile("testdata/missing.json", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLoadPostings_SingleObject(t *testing.T) {
	input := `  {"title": "SRE", "description": "Own on-call rotation"}`

	batch, err := LoadPostings(strings.NewReader(input), "")
	require.NoError(t, err)
	require.Len(t, batch.Postings, 1)
	assert.Empty(t, batch.Skipped)

	posting := batch.Postings[0]
	assert.Equal(t, "SRE", posting.Title)
	assert.Equal(t, DefaultCompany, posting.Company)
	assert.Equal(t, SourceManual, posting.Source)
	assert.Nil(t, posting.PostedAt)
}

func TestLoadPostings_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"truncated array", `[{"title": "x"`},
		{"scalar", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPostings(strings.NewReader(tt.input), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadPostings_NullRecord(t *testing.T) {
	batch, err := LoadPostings(strings.NewReader(`[null, {"description": "Write Go"}]`), "")
	require.NoError(t, err)
	require.Len(t, batch.Postings, 1)
	require.Len(t, batch.Skipped, 1)
	assert.Equal(t, 0, batch.Skipped[0].Index)
	assert.Equal(t, DefaultTitle, batch.Postings[0].Title)
}

func TestLoadPostings_NonObjectRecords(t *testing.T) {
	input := `[1, {"description": "Write Go"}, "text", [], {"title": "No body"}]`
	batch, err := LoadPostings(strings.NewReader(input), "")
	require.NoError(t, err)

	require.Len(t, batch.Postings, 1)
	assert.Equal(t, "Write Go", batch.Postings[0].Text)

	require.Len(t, batch.Skipped, 4)
	indexes := make([]int, 0, len(batch.Skipped))
	for _, s := range batch.Skipped {
		indexes = append(indexes, s.Index)
	}
	assert.Equal(t, []int{0, 2, 3, 4}, indexes)
	assert.Equal(t, "record is not a JSON object", batch.Skipped[0].Message)
	assert.Equal(t, "No body", batch.Skipped[3].Title)
}

func TestNormalizeRecord_FieldPriority(t *testing.T) {
	record := map[string]any{
		"job_title":       "Primary",
		"title":           "Secondary",
		"job_description": "  ",
		"description":     "Fallback description",
		"job_url":         "",
		"url":             "https://example.com/a",
	}

	posting, recErr := NormalizeRecord(record, "manual")
	require.Nil(t, recErr)
	assert.Equal(t, "Primary", posting.Title)
	assert.Equal(t, "Fallback description", posting.Text)
	assert.Equal(t, "https://example.com/a", posting.URL)
}

func TestParsePostedAt(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected *time.Time
	}{
		{"unix millis", json.Number("1700000000000"), ptr(time.UnixMilli(1700000000000).UTC())},
		{"fractional millis", json.Number("1700000000000.0"), ptr(time.UnixMilli(1700000000000).UTC())},
		{"rfc3339 with Z", "2024-03-01T12:00:00Z", ptr(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))},
		{"rfc3339 with offset", "2024-03-01T14:00:00+02:00", ptr(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))},
		{"date only", "2024-03-01", ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{"garbage", "last tuesday", nil},
		{"missing", nil, nil},
		{"wrong type", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePostedAt(tt.value)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "got %v", *got)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
