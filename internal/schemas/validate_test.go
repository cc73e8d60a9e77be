package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/posting-parser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosting() *types.ProcessedPosting {
	parsed := types.NewParsedPosting()
	parsed.Required = append(parsed.Required, types.Qualification{Text: "3+ years of SQL", SkillType: types.SkillHard, Confidence: 0.8})
	parsed.Bonus = append(parsed.Bonus, types.Qualification{Text: "Tableau is a plus", SkillType: types.SkillHard, Confidence: 0.6})
	parsed.Responsibilities = append(parsed.Responsibilities, types.Responsibility{Activity: "Build dashboards", ActivityType: "Data Visualization", Confidence: 0.7})
	parsed.Summary = "We are a growing analytics team."
	parsed.SectionsFound = []types.SectionType{types.SectionQualification, types.SectionResponsibility}

	return &types.ProcessedPosting{
		ID:            uuid.New(),
		Title:         "Data Analyst",
		ContentHash:   "abc123",
		Parsed:        parsed,
		Enrichment:    &types.Enrichment{ExtractedSkills: []string{"SQL"}, Entities: map[string][]string{"LANGUAGE": {"SQL"}}},
		Warnings:      []types.Warning{{Kind: "low_confidence_classification", Message: "x"}},
		ParserVersion: "1.0.0",
		ProcessedAt:   time.Now().UTC(),
	}
}

func TestProcessedPostingSchema_ValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(ProcessedPostingSchema()), &v))
	assert.Equal(t, "ProcessedPosting", v["title"])
}

func TestValidateProcessedPosting(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *types.ProcessedPosting)
		wantError bool
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(p *types.ProcessedPosting) {},
		},
		{
			name:   "empty parse",
			mutate: func(p *types.ProcessedPosting) { p.Parsed = types.NewParsedPosting(); p.Enrichment = nil; p.Warnings = nil },
		},
		{
			name:      "missing parsed",
			mutate:    func(p *types.ProcessedPosting) { p.Parsed = nil },
			wantError: true,
			wantField: "parsed",
		},
		{
			name:      "confidence out of range",
			mutate:    func(p *types.ProcessedPosting) { p.Parsed.Required[0].Confidence = 1.5 },
			wantError: true,
			wantField: "parsed.required.0.confidence",
		},
		{
			name:      "unknown skill type",
			mutate:    func(p *types.ProcessedPosting) { p.Parsed.Bonus[0].SkillType = "Other" },
			wantError: true,
			wantField: "parsed.bonus.0.skill_type",
		},
		{
			name:      "unclassified is not a found section",
			mutate:    func(p *types.ProcessedPosting) { p.Parsed.SectionsFound = []types.SectionType{types.SectionUnclassified} },
			wantError: true,
			wantField: "parsed.sections_found.0",
		},
		{
			name:      "unknown warning kind",
			mutate:    func(p *types.ProcessedPosting) { p.Warnings[0].Kind = "bogus" },
			wantError: true,
			wantField: "warnings.0.kind",
		},
		{
			name:      "empty content hash",
			mutate:    func(p *types.ProcessedPosting) { p.ContentHash = "" },
			wantError: true,
			wantField: "content_hash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPosting()
			tt.mutate(p)

			err := ValidateProcessedPosting(p)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)

			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidateProcessedPostingJSON_Malformed(t *testing.T) {
	err := ValidateProcessedPostingJSON([]byte("{ invalid json }"))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateFile(t *testing.T) {
	tmpDir := t.TempDir()

	data, err := json.Marshal(validPosting())
	require.NoError(t, err)
	path := filepath.Join(tmpDir, "posting.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	assert.NoError(t, ValidateFile(path))

	err = ValidateFile(filepath.Join(tmpDir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_Files(t *testing.T) {
	tmpDir := t.TempDir()
	schemaPath := filepath.Join(tmpDir, "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object","required":["name"]}`), 0644))

	valid := filepath.Join(tmpDir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"name":"x"}`), 0644))
	invalid := filepath.Join(tmpDir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{}`), 0644))

	assert.NoError(t, ValidateJSON(schemaPath, valid))

	err := ValidateJSON(schemaPath, invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	err = ValidateJSON(filepath.Join(tmpDir, "nope.json"), valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","properties":{"n":{"type":"integer"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"n": 1}`))

	err := ValidateJSONString(schema, `{"n": "one"}`)
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "n", validationErr.Errors[0].Field)
}
