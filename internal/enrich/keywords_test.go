package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enrichSample = `Requirements:
- 3+ years of Python and SQL
- Experience with R or Scala
- Build dashboards in Power BI
We value R&D and REST APIs on AWS.
You will rest easy and excel at golang.`

func TestKeywordEnricher_Enrich(t *testing.T) {
	e := NewDefaultKeywordEnricher()

	got, err := e.Enrich(context.Background(), enrichSample)
	require.NoError(t, err)

	assert.Equal(t, []string{"API", "AWS", "Go", "Power BI", "Python", "R", "REST", "Scala", "SQL"}, got.ExtractedSkills)
	assert.Equal(t, map[string][]string{
		EntityLanguage: {"Go", "Python", "R", "Scala", "SQL"},
		EntityBITool:   {"Power BI"},
		EntityCloud:    {"AWS"},
		EntityConcept:  {"API", "REST"},
	}, got.Entities)
	assert.Equal(t, []string{"build"}, got.ActionVerbs)
	assert.Equal(t, []string{"Business Intelligence", "Cloud Computing", "Data Visualization", "Database Management"}, got.DomainTags)
}

func TestKeywordEnricher_SymbolTerms(t *testing.T) {
	e := NewDefaultKeywordEnricher()

	got, err := e.Enrich(context.Background(), "Strong C++ and C# skills. Deploy on k8s.")
	require.NoError(t, err)

	assert.Equal(t, []string{"C#", "C++", "Kubernetes"}, got.ExtractedSkills)
	assert.Equal(t, []string{"deploy"}, got.ActionVerbs)
}

func TestKeywordEnricher_VerbForms(t *testing.T) {
	e := NewDefaultKeywordEnricher()

	got, err := e.Enrich(context.Background(), "Manages vendors, mentoring analysts and writing docs. Manage budgets.")
	require.NoError(t, err)
	assert.Equal(t, []string{"manage", "mentor", "write"}, got.ActionVerbs)
}

func TestKeywordEnricher_Empty(t *testing.T) {
	e := NewDefaultKeywordEnricher()

	got, err := e.Enrich(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got.ExtractedSkills)
	assert.Empty(t, got.ExtractedSkills)
	assert.Empty(t, got.Entities)
	assert.Empty(t, got.ActionVerbs)
	assert.Empty(t, got.DomainTags)
}

func TestKeywordEnricher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultKeywordEnricher().Enrich(ctx, enrichSample)
	require.Error(t, err)

	var enrichErr *Error
	assert.ErrorAs(t, err, &enrichErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTermPattern(t *testing.T) {
	tests := []struct {
		name          string
		aliases       []string
		caseSensitive bool
		text          string
		want          bool
	}{
		{"word boundary", []string{"java"}, false, "JavaScript developer", false},
		{"word match", []string{"java"}, false, "Java 17", true},
		{"multi-word spacing", []string{"machine learning"}, false, "machine\n learning", true},
		{"symbol suffix", []string{"c++"}, false, "C++17", false},
		{"symbol suffix at end", []string{"c++"}, false, "write C++", true},
		{"case sensitive", []string{"AI"}, true, "said it again", false},
		{"single letter R&D", []string{"R"}, true, "R&D team", false},
		{"single letter end", []string{"R"}, true, "Python or R", true},
		{"no aliases", nil, false, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, termPattern(tt.aliases, tt.caseSensitive).MatchString(tt.text))
		})
	}
}
