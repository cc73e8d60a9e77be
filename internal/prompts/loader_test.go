package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		key      string
		wantErr  string
		contains string
	}{
		{"preamble", "enrichment.json", "enrichment-preamble", "", "job posting analyst"},
		{"retry", "enrichment.json", "enrichment-retry", "", "{{.Name}}"},
		{"missing file", "nonexistent.json", "x", "prompt file nonexistent.json not found", ""},
		{"missing key", "enrichment.json", "nonexistent-key", "not found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := Get(tt.file, tt.key)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet("enrichment.json", "enrichment-preamble"))
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{"fills placeholders", "Hello {{.Name}}, welcome to {{.Company}}!", map[string]string{"Name": "Alice", "Company": "Acme Corp"}, "Hello Alice, welcome to Acme Corp!"},
		{"no placeholders", "No placeholders here", map[string]string{"Key": "Value"}, "No placeholders here"},
		{"empty data", "Hello {{.Name}}", nil, "Hello {{.Name}}"},
		{"repeated", "{{.X}}-{{.X}}", map[string]string{"X": "a"}, "a-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestList(t *testing.T) {
	keys, err := List("enrichment.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"enrichment-preamble", "enrichment-retry"}, keys)
}
