package parsing

import (
	"sort"
	"strings"
)

// SignalImperativeLead is the name of the leading-action-verb signal
const SignalImperativeLead = "imperative_lead"

// imperativeLeadWeight is the responsibility weight of a leading action verb.
// It matches one possession signal so a bare verb cannot outweigh a real
// qualification cue.
const imperativeLeadWeight = 0.5

// ValidationScore is the advisory lexical fit of an item
type ValidationScore struct {
	QualificationAffinity  float64  `json:"qualification_affinity"`
	ResponsibilityAffinity float64  `json:"responsibility_affinity"`
	Signals                []string `json:"signals"`
}

// Has reports whether the named signal matched
func (v ValidationScore) Has(signal string) bool {
	i := sort.SearchStrings(v.Signals, signal)
	return i < len(v.Signals) && v.Signals[i] == signal
}

// Validate scores text against the qualification and responsibility signals.
// Each matched signal adds its weight once; the two sums are clipped to [0,1]
// and each affinity is the clipped difference.
func Validate(text string, rs *Ruleset) ValidationScore {
	var q, r float64
	matched := map[string]struct{}{}
	for _, s := range rs.signals {
		if !s.pattern.MatchString(text) {
			continue
		}
		if _, dup := matched[s.name]; dup {
			continue
		}
		matched[s.name] = struct{}{}
		switch s.kind {
		case SignalQualification:
			q += s.weight
		case SignalResponsibility:
			r += s.weight
		}
	}
	if rs.leadsWithActionVerb(text) {
		matched[SignalImperativeLead] = struct{}{}
		r += imperativeLeadWeight
	}

	q, r = clip(q, 0, 1), clip(r, 0, 1)
	signals := make([]string, 0, len(matched))
	for name := range matched {
		signals = append(signals, name)
	}
	sort.Strings(signals)

	return ValidationScore{
		QualificationAffinity:  clip(q-r, -1, 1),
		ResponsibilityAffinity: clip(r-q, -1, 1),
		Signals:                signals,
	}
}

// leadsWithActionVerb reports whether the first word is an action verb,
// accepting third-person and -ing forms
func (rs *Ruleset) leadsWithActionVerb(text string) bool {
	_, ok := rs.ActionVerbLemma(firstWord(text))
	return ok
}

// ActionVerbLemma returns the base form of word when it is a configured
// action verb in base, third-person or -ing form.
func (rs *Ruleset) ActionVerbLemma(word string) (string, bool) {
	word = strings.ToLower(word)
	if word == "" {
		return "", false
	}
	for _, candidate := range verbStems(word) {
		if _, ok := rs.actionVerbs[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func firstWord(text string) string {
	text = strings.TrimLeft(text, " \t\"'(")
	end := 0
	for end < len(text) {
		c := text[end]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			end++
			continue
		}
		break
	}
	return strings.ToLower(text[:end])
}

func verbStems(word string) []string {
	stems := []string{word}
	switch {
	case strings.HasSuffix(word, "ing") && len(word) > 5:
		base := strings.TrimSuffix(word, "ing")
		stems = append(stems, base, base+"e")
		if n := len(base); n > 2 && base[n-1] == base[n-2] {
			stems = append(stems, base[:n-1])
		}
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		stems = append(stems, strings.TrimSuffix(word, "ies")+"y")
	case strings.HasSuffix(word, "es") && len(word) > 3:
		stems = append(stems, strings.TrimSuffix(word, "es"), strings.TrimSuffix(word, "s"))
	case strings.HasSuffix(word, "s") && len(word) > 2:
		stems = append(stems, strings.TrimSuffix(word, "s"))
	}
	return stems
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
