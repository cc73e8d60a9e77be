package parsing

import (
	"errors"
	"testing"

	"github.com/jonathan/posting-parser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arbitrate(t *testing.T, text string, sectionType types.SectionType, hint Hint, opts Options) ClassifiedItem {
	t.Helper()
	rs := DefaultRuleset()
	item := CandidateItem{Text: text, Hint: hint, End: len(text)}
	return Arbitrate(item, Section{Type: sectionType}, Validate(text, rs), rs, opts)
}

func TestArbitrate_SectionTrust(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		section types.SectionType
		want    Category
	}{
		{"duty phrasing under qualifications", "Design, build, and optimize data pipelines", types.SectionQualification, CategoryRequired},
		{"qualification phrasing under responsibilities", "5+ years of Python experience", types.SectionResponsibility, CategoryResponsibility},
		{"future framing under qualifications", "You will need to know SQL", types.SectionQualification, CategoryRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := arbitrate(t, tt.text, tt.section, HintNone, DefaultOptions())
			assert.Equal(t, tt.want, got.Category)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestArbitrate_SectionTrustConfidence(t *testing.T) {
	got := arbitrate(t, "Design, build, and optimize data pipelines", types.SectionQualification, HintNone, DefaultOptions())
	assert.Equal(t, 0.0, got.Confidence)
	assert.True(t, got.LowConfidence)
	assert.False(t, got.Flagged)
}

func TestArbitrate_Fallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		{"zero affinity goes to responsibility", "Acme is a fintech company.", CategoryResponsibility},
		{"balanced affinity goes to responsibility", "Build on your knowledge of Kafka", CategoryResponsibility},
		{"qualification signal wins", "We need someone with 5+ years SQL experience.", CategoryRequired},
		{"responsibility signal wins", "You will build ETL pipelines daily.", CategoryResponsibility},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := arbitrate(t, tt.text, types.SectionUnclassified, HintNone, DefaultOptions())
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestArbitrate_RequiredOrBonus(t *testing.T) {
	bonusDefault := DefaultOptions()
	bonusDefault.UnmarkedQualification = CategoryBonus

	tests := []struct {
		name string
		text string
		hint Hint
		opts Options
		want Category
	}{
		{"no cue defaults to required", "Experience with Kafka", HintNone, DefaultOptions(), CategoryRequired},
		{"preferred hint", "Experience with Kafka", HintPreferred, DefaultOptions(), CategoryBonus},
		{"bonus keyword", "Kafka experience is a plus", HintNone, DefaultOptions(), CategoryBonus},
		{"nice to have keyword", "Terraform would be nice to have", HintNone, DefaultOptions(), CategoryBonus},
		{"plus in a duration is not bonus", "5 plus years of Java", HintNone, DefaultOptions(), CategoryRequired},
		{"bare plus", "Go is plus", HintNone, DefaultOptions(), CategoryBonus},
		{"bare asset", "Asset: Docker", HintNone, DefaultOptions(), CategoryBonus},
		{"plus after a duration", "5+ years of Java, Go a plus", HintNone, DefaultOptions(), CategoryBonus},
		{"plus beside a number", "10 plus yrs building APIs", HintNone, DefaultOptions(), CategoryRequired},
		{"keyword beats required hint", "Go preferred", HintRequired, DefaultOptions(), CategoryBonus},
		{"configured default", "Experience with Kafka", HintNone, bonusDefault, CategoryBonus},
		{"required hint beats configured default", "Experience with Kafka", HintRequired, bonusDefault, CategoryRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := arbitrate(t, tt.text, types.SectionQualification, tt.hint, tt.opts)
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestArbitrate_ActionVerbPolicy(t *testing.T) {
	dutyItem := "Design, build, and optimize data pipelines"
	balanced := "Build on your knowledge of Kafka"

	tests := []struct {
		name        string
		policy      ActionVerbPolicy
		text        string
		wantCat     Category
		wantFlagged bool
	}{
		{"trust section keeps category", PolicyTrustSection, dutyItem, CategoryRequired, false},
		{"flag keeps category and flags", PolicyFlag, dutyItem, CategoryRequired, true},
		{"reclassify moves duty item", PolicyReclassify, dutyItem, CategoryResponsibility, false},
		{"reclassify needs strictly higher responsibility", PolicyReclassify, balanced, CategoryRequired, false},
		{"flag needs strictly higher responsibility", PolicyFlag, balanced, CategoryRequired, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.ActionVerbPolicy = tt.policy
			got := arbitrate(t, tt.text, types.SectionQualification, HintNone, opts)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantFlagged, got.Flagged)
			if tt.wantFlagged {
				assert.Equal(t, FlagImperativeUnderQualifications, got.FlagReason)
			}
		})
	}
}

func TestArbitrate_Tags(t *testing.T) {
	resp := arbitrate(t, "Lead the design of daily data pipelines", types.SectionResponsibility, HintNone, DefaultOptions())
	assert.Equal(t, "manage", resp.OwnershipLevel)
	assert.Equal(t, "daily", resp.Frequency)
	assert.Equal(t, "Data Engineering", resp.ActivityType)
	assert.Empty(t, resp.SkillType)

	plain := arbitrate(t, "Travel to customer sites", types.SectionResponsibility, HintNone, DefaultOptions())
	assert.Empty(t, plain.OwnershipLevel)
	assert.Empty(t, plain.Frequency)
	assert.Empty(t, plain.ActivityType)

	soft := arbitrate(t, "Excellent written communication", types.SectionQualification, HintNone, DefaultOptions())
	assert.Equal(t, types.SkillSoft, soft.SkillType)

	hard := arbitrate(t, "Experience with Terraform", types.SectionQualification, HintNone, DefaultOptions())
	assert.Equal(t, types.SkillHard, hard.SkillType)
}

func TestArbitrate_NoContentIsUnclassified(t *testing.T) {
	got := arbitrate(t, "—", types.SectionQualification, HintNone, DefaultOptions())
	assert.Equal(t, CategoryUnclassified, got.Category)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"defaults", func(*Options) {}, ""},
		{"threshold too high", func(o *Options) { o.LowConfidenceThreshold = 1.5 }, "low_confidence_threshold"},
		{"unknown policy", func(o *Options) { o.ActionVerbPolicy = "guess" }, "action_verb_policy"},
		{"responsibility default", func(o *Options) { o.UnmarkedQualification = CategoryResponsibility }, "unmarked_qualification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var optErr *OptionError
			require.True(t, errors.As(err, &optErr))
			assert.Equal(t, tt.field, optErr.Field)
		})
	}
}
