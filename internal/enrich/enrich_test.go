package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		client  bool
		want    any
		wantErr string
	}{
		{name: "keywords", mode: ModeKeywords, want: &KeywordEnricher{}},
		{name: "default", mode: "", want: &KeywordEnricher{}},
		{name: "llm", mode: ModeLLM, client: true, want: &LLMEnricher{}},
		{name: "llm without client", mode: ModeLLM, wantErr: "no client configured"},
		{name: "none", mode: ModeNone, want: nil},
		{name: "unknown", mode: "spacy", wantErr: "unknown enrichment mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var client *fakeClient
			if tt.client {
				client = &fakeClient{}
			}

			var got Enricher
			var err error
			if client != nil {
				got, err = New(tt.mode, client, nil)
			} else {
				got, err = New(tt.mode, nil, nil)
			}

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestSortedSet(t *testing.T) {
	got := sortedSet([]string{" sql ", "Python", "SQL", "", "aws"})
	assert.Equal(t, []string{"aws", "Python", "sql"}, got)
}
