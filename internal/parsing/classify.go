package parsing

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jonathan/posting-parser/internal/types"
)

// Category is the final label of a classified item
type Category string

const (
	CategoryRequired       Category = "required_qualification"
	CategoryBonus          Category = "bonus_qualification"
	CategoryResponsibility Category = "responsibility"
	// CategoryUnclassified marks items with no classifiable content; their
	// text is returned to the summary.
	CategoryUnclassified Category = "unclassified"
)

// ActionVerbPolicy decides what happens to action-verb-led items found under
// a qualification header
type ActionVerbPolicy string

const (
	// PolicyTrustSection keeps the section category unchanged
	PolicyTrustSection ActionVerbPolicy = "trust_section"
	// PolicyFlag keeps the category and flags the item for review
	PolicyFlag ActionVerbPolicy = "flag"
	// PolicyReclassify moves the item to responsibilities when the verb lead
	// matched and responsibility affinity is strictly higher
	PolicyReclassify ActionVerbPolicy = "reclassify"
)

// FlagImperativeUnderQualifications is the flag reason for duty-phrased qualification items
const FlagImperativeUnderQualifications = "imperative_under_qualifications"

// DefaultLowConfidenceThreshold is the confidence below which items are marked low confidence
const DefaultLowConfidenceThreshold = 0.3

// Options tunes the arbiter
type Options struct {
	LowConfidenceThreshold float64
	ActionVerbPolicy       ActionVerbPolicy
	// UnmarkedQualification is the category of a qualification with no
	// required/bonus cue: CategoryRequired or CategoryBonus
	UnmarkedQualification Category
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		LowConfidenceThreshold: DefaultLowConfidenceThreshold,
		ActionVerbPolicy:       PolicyTrustSection,
		UnmarkedQualification:  CategoryRequired,
	}
}

// Validate checks the option values
func (o Options) Validate() error {
	if o.LowConfidenceThreshold < 0 || o.LowConfidenceThreshold > 1 {
		return &OptionError{Field: "low_confidence_threshold", Message: fmt.Sprintf("must be within [0,1], got %v", o.LowConfidenceThreshold)}
	}
	switch o.ActionVerbPolicy {
	case PolicyTrustSection, PolicyFlag, PolicyReclassify:
	default:
		return &OptionError{Field: "action_verb_policy", Message: fmt.Sprintf("unknown policy %q", o.ActionVerbPolicy)}
	}
	switch o.UnmarkedQualification {
	case CategoryRequired, CategoryBonus:
	default:
		return &OptionError{Field: "unmarked_qualification", Message: fmt.Sprintf("must be %q or %q, got %q", CategoryRequired, CategoryBonus, o.UnmarkedQualification)}
	}
	return nil
}

// ClassifiedItem is the final, immutable output unit
type ClassifiedItem struct {
	Text           string          `json:"text"`
	Category       Category        `json:"category"`
	Confidence     float64         `json:"confidence"`
	LowConfidence  bool            `json:"low_confidence,omitempty"`
	OwnershipLevel string          `json:"ownership_level,omitempty"`
	Frequency      string          `json:"frequency,omitempty"`
	ActivityType   string          `json:"activity_type,omitempty"`
	SkillType      types.SkillType `json:"skill_type,omitempty"`
	Flagged        bool            `json:"flagged,omitempty"`
	FlagReason     string          `json:"flag_reason,omitempty"`
	Start          int             `json:"start"`
	End            int             `json:"end"`
	Score          ValidationScore `json:"score"`
}

// Arbitrate assigns the final category of item. A definite section type
// decides the category and the score only sets confidence; in unclassified
// sections the higher affinity wins and ties go to responsibility.
func Arbitrate(item CandidateItem, section Section, score ValidationScore, rs *Ruleset, opts Options) ClassifiedItem {
	out := ClassifiedItem{Text: item.Text, Start: item.Start, End: item.End, Score: score}

	if !hasAlphanumeric(item.Text) {
		out.Category = CategoryUnclassified
		return out
	}

	qualification := false
	switch section.Type {
	case types.SectionQualification:
		qualification = true
		if score.Has(SignalImperativeLead) && score.ResponsibilityAffinity > score.QualificationAffinity {
			switch opts.ActionVerbPolicy {
			case PolicyFlag:
				out.Flagged = true
				out.FlagReason = FlagImperativeUnderQualifications
			case PolicyReclassify:
				qualification = false
			case PolicyTrustSection:
			}
		}
	case types.SectionResponsibility:
		qualification = false
	case types.SectionUnclassified:
		qualification = score.QualificationAffinity > score.ResponsibilityAffinity
	}

	if qualification {
		out.Category = rs.requiredOrBonus(item, opts)
		out.Confidence = clip(score.QualificationAffinity, 0, 1)
		out.SkillType = rs.skillType(item.Text)
	} else {
		out.Category = CategoryResponsibility
		out.Confidence = clip(score.ResponsibilityAffinity, 0, 1)
		out.OwnershipLevel, out.Frequency, out.ActivityType = rs.responsibilityTags(item.Text)
	}
	out.LowConfidence = out.Confidence < opts.LowConfidenceThreshold
	return out
}

func (rs *Ruleset) requiredOrBonus(item CandidateItem, opts Options) Category {
	switch {
	case item.Hint == HintPreferred:
		return CategoryBonus
	case rs.hasBonusKeyword(item.Text):
		return CategoryBonus
	case item.Hint == HintRequired:
		return CategoryRequired
	default:
		return opts.UnmarkedQualification
	}
}

// hasBonusKeyword reports a bonus keyword in text. A keyword that directly
// follows a number, as in "5 plus years", is a quantity and does not count.
func (rs *Ruleset) hasBonusKeyword(text string) bool {
	if rs.bonus == nil {
		return false
	}
	for _, m := range rs.bonus.FindAllStringIndex(text, -1) {
		before := strings.TrimRight(text[:m[0]], " \t")
		if before != "" && (isDigit(before[len(before)-1]) || before[len(before)-1] == '+') {
			continue
		}
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
