package parsing

import "github.com/jonathan/posting-parser/internal/types"

// responsibilityTags returns the first matching ownership level, frequency
// and activity type for text. Unmatched tags are empty.
func (rs *Ruleset) responsibilityTags(text string) (ownership, frequency, activity string) {
	return firstTag(rs.ownership, text), firstTag(rs.frequency, text), firstTag(rs.activityTypes, text)
}

// skillType is Soft when a soft-skill term appears in text
func (rs *Ruleset) skillType(text string) types.SkillType {
	if rs.softSkills != nil && rs.softSkills.MatchString(text) {
		return types.SkillSoft
	}
	return types.SkillHard
}

func firstTag(tags []compiledTag, text string) string {
	for _, t := range tags {
		if t.pattern.MatchString(text) {
			return t.label
		}
	}
	return ""
}
