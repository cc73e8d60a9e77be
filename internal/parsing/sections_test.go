package parsing

import (
	"testing"

	"github.com/jonathan/posting-parser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindHeaders_Variants(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind HeaderKind
		hint Hint
	}{
		{"upper case", "WHAT YOU BRING", HeaderQualification, HintNone},
		{"trailing colon", "Requirements:", HeaderQualification, HintNone},
		{"markdown heading", "## What You'll Do", HeaderResponsibility, HintNone},
		{"curly apostrophe", "What You’ll Need", HeaderQualification, HintNone},
		{"bold markdown", "**Responsibilities**", HeaderResponsibility, HintNone},
		{"preferred hint", "Preferred Qualifications:", HeaderHint, HintPreferred},
		{"required hint", "Required:", HeaderHint, HintRequired},
		{"nice to have", "Nice-to-have", HeaderHint, HintPreferred},
		{"terminator", "About Us", HeaderTerminator, HintNone},
		{"generic label", "Our stack:", HeaderLabel, HintNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := FindHeaders(tt.line+"\nbody text", DefaultRuleset())
			require.Len(t, headers, 1)
			assert.Equal(t, tt.kind, headers[0].Kind)
			assert.Equal(t, tt.hint, headers[0].Hint)
			assert.Equal(t, 0, headers[0].Start)
			assert.Equal(t, len(tt.line), headers[0].End)
		})
	}
}

func TestFindHeaders_IgnoresNonHeaders(t *testing.T) {
	text := "- Requirements\nWe list our requirements below\nThe role involves a lot of travel and this line is long enough\nPython"
	assert.Empty(t, FindHeaders(text, DefaultRuleset()))
}

func TestDetectSections_Headered(t *testing.T) {
	text := "Intro line.\nWhat You Bring\n- Go\nWhat You'll Do\n- Build things\nAbout Us\nWe are nice."
	sections := DetectSections(text, DefaultRuleset())
	require.Len(t, sections, 2)

	assert.Equal(t, types.SectionQualification, sections[0].Type)
	assert.Equal(t, "what you bring", sections[0].MatchedPattern)
	assert.Equal(t, "- Go\n", text[sections[0].HeaderEnd:sections[0].End])

	assert.Equal(t, types.SectionResponsibility, sections[1].Type)
	assert.Equal(t, "- Build things\n", text[sections[1].HeaderEnd:sections[1].End])
	assert.Equal(t, sections[0].End, sections[1].Start)
}

func TestDetectSections_Subsections(t *testing.T) {
	text := "Qualifications\nRequired:\n- Go\nPreferred:\n- Rust\nResponsibilities\n- Ship"
	sections := DetectSections(text, DefaultRuleset())
	require.Len(t, sections, 2)

	q := sections[0]
	require.Len(t, q.Subsections, 2)
	assert.Equal(t, HintRequired, q.Subsections[0].Hint)
	assert.Equal(t, HintPreferred, q.Subsections[1].Hint)
	assert.Equal(t, q.Subsections[1].Start, q.Subsections[0].End)
	assert.Equal(t, q.End, q.Subsections[1].End)

	rustAt := len("Qualifications\nRequired:\n- Go\nPreferred:\n- ")
	assert.Equal(t, HintPreferred, q.HintAt(rustAt))
	assert.Equal(t, HintRequired, q.HintAt(len("Qualifications\nRequired:\n- ")))
}

func TestDetectSections_HintOpensSection(t *testing.T) {
	text := "Responsibilities\n- Ship code\nNice to have\n- Kubernetes"
	sections := DetectSections(text, DefaultRuleset())
	require.Len(t, sections, 2)
	assert.Equal(t, types.SectionQualification, sections[1].Type)
	assert.Equal(t, HintPreferred, sections[1].Hint)
}

func TestDetectSections_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantEnd int
	}{
		{"no headers", "Plain prose about a job.", len("Plain prose about a job.")},
		{"empty", "", 0},
		{"terminator only", "We build rockets.\nBenefits\nFree lunch.", len("We build rockets.\nBenefits\nFree lunch.")},
		{"leading terminator", "About the role\nYou will build pipelines.", len("About the role\nYou will build pipelines.")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := DetectSections(tt.text, DefaultRuleset())
			require.Len(t, sections, 1)
			assert.Equal(t, types.SectionUnclassified, sections[0].Type)
			assert.Equal(t, 0, sections[0].Start)
			assert.Equal(t, tt.wantEnd, sections[0].End)
		})
	}
}
