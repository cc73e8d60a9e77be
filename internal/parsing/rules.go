package parsing

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// SignalKind says which affinity a validator signal feeds
type SignalKind string

const (
	SignalQualification  SignalKind = "qualification"
	SignalResponsibility SignalKind = "responsibility"
)

// BoilerplateKind controls how far a boilerplate match extends
type BoilerplateKind string

const (
	// BoilerplateSentence extends a keyword match to its enclosing sentence
	BoilerplateSentence BoilerplateKind = "sentence"
	// BoilerplateBlock extends a header-line match to the next header
	BoilerplateBlock BoilerplateKind = "block"
)

// SignalRule is a weighted lexical signal used by the content validator
type SignalRule struct {
	Name    string     `yaml:"name"`
	Kind    SignalKind `yaml:"kind"`
	Pattern string     `yaml:"pattern"`
	Weight  float64    `yaml:"weight"`
}

// BoilerplateRule matches recurring non-substantive text
type BoilerplateRule struct {
	Name    string          `yaml:"name"`
	Kind    BoilerplateKind `yaml:"kind"`
	Pattern string          `yaml:"pattern"`
	Window  int             `yaml:"window"`
}

// TagRule maps a label to the keywords that select it
type TagRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Rules is the serialisable pattern table. Header entries are regular
// expression fragments matched against a whole normalised header line;
// keyword entries are literal words matched on word boundaries.
type Rules struct {
	QualificationHeaders  []string          `yaml:"qualification_headers"`
	ResponsibilityHeaders []string          `yaml:"responsibility_headers"`
	TerminatorHeaders     []string          `yaml:"terminator_headers"`
	PreferredHints        []string          `yaml:"preferred_hints"`
	RequiredHints         []string          `yaml:"required_hints"`
	HintSuffixes          []string          `yaml:"hint_suffixes"`
	Boilerplate           []BoilerplateRule `yaml:"boilerplate"`
	BonusKeywords         []string          `yaml:"bonus_keywords"`
	Signals               []SignalRule      `yaml:"signals"`
	ActionVerbs           []string          `yaml:"action_verbs"`
	Ownership             []TagRule         `yaml:"ownership"`
	Frequency             []TagRule         `yaml:"frequency"`
	ActivityTypes         []TagRule         `yaml:"activity_types"`
	SoftSkills            []string          `yaml:"soft_skills"`
	Abbreviations         []string          `yaml:"abbreviations"`
}

// DefaultRules returns the built-in pattern table
func DefaultRules() Rules {
	return Rules{
		QualificationHeaders: []string{
			`what you(?:'ll| will)? bring(?: to the (?:table|team|role))?`,
			`what you(?:'ll| will)? need(?: to succeed)?`,
			`what we(?:'re| are) looking for`,
			`what we need`,
			`(?:job |role |position )?requirements`,
			`requirements (?:and|&) qualifications`,
			`qualifications(?: (?:and|&) (?:requirements|skills|experience))?`,
			`(?:skills|experience) (?:and|&) qualifications`,
			`skills(?: (?:and|&) (?:experience|abilities))?`,
			`must[- ]haves?`,
			`who you are`,
			`about you`,
			`you have`,
			`you bring`,
			`your (?:background|profile|experience|qualifications|skills)`,
			`knowledge,? skills,? (?:and|&) abilities`,
		},
		ResponsibilityHeaders: []string{
			`(?:key |main |core |primary |job |role )?responsibilities`,
			`responsibilities (?:and|&) duties`,
			`duties(?: (?:and|&) responsibilities)?`,
			`what you(?:'ll| will) do`,
			`what you(?:'ll| will) be doing`,
			`what you(?:'ll| will) work on`,
			`in this role,? you(?:'ll| will)`,
			`you(?:'ll| will)`,
			`your (?:role|responsibilities|impact|mission)`,
			`(?:your )?day[- ]to[- ]day(?: responsibilities)?`,
			`a day in the life`,
			`daily tasks`,
			`the role`,
			`what the (?:job|role) involves`,
		},
		TerminatorHeaders: []string{
			`about (?:us|the (?:company|team|role|job|position)|our (?:company|team))`,
			`who we are`,
			`(?:company|our company|position|role|job) overview`,
			`overview`,
			`(?:our )?benefits(?: (?:and|&) perks)?`,
			`perks(?: (?:and|&) benefits)?`,
			`what we offer`,
			`compensation(?: (?:and|&) benefits)?`,
			`salary(?: range)?`,
			`pay (?:range|transparency)`,
			`how to apply`,
			`application process`,
			`equal (?:employment )?opportunity(?: employer| statement)?`,
			`eeo(?: statement)?`,
			`diversity(?:,? equity)?(?:,? (?:and|&) inclusion)?`,
			`why (?:join us|work (?:here|with us)|you'll love working here)`,
			`location`,
			`additional information`,
			`(?:our|the) team`,
		},
		PreferredHints: []string{
			"preferred", "bonus", "bonus points", "nice to have", "nice-to-have", "nice to haves",
			"nice-to-haves", "desired", "desirable", "pluses", "a plus", "extra credit", "ideally",
		},
		RequiredHints: []string{
			"required", "minimum", "basic", "must have", "must haves", "essential", "mandatory",
		},
		HintSuffixes: []string{
			"qualifications", "skills", "requirements", "experience", "skills and experience",
			"skills & experience", "if you have",
		},
		Boilerplate: []BoilerplateRule{
			{Name: "equal_opportunity", Kind: BoilerplateSentence, Pattern: `\bequal (?:employment )?opportunit(?:y|ies)\b`, Window: 400},
			{Name: "equal_opportunity", Kind: BoilerplateSentence, Pattern: `\bwithout regard to (?:race|color|religion|sex|age|gender)`, Window: 400},
			{Name: "equal_opportunity", Kind: BoilerplateSentence, Pattern: `\b(?:committed to|celebrate|embrace|value) (?:building a )?(?:diversity|diverse|an inclusive|inclusion)`, Window: 300},
			{Name: "equal_opportunity", Kind: BoilerplateSentence, Pattern: `\breasonable accommodations?\b`, Window: 300},
			{Name: "equal_opportunity", Kind: BoilerplateSentence, Pattern: `\be-verify\b`, Window: 200},
			{Name: "application_process", Kind: BoilerplateSentence, Pattern: `\b(?:how|ready|interested|want) to apply\b`, Window: 250},
			{Name: "application_process", Kind: BoilerplateSentence, Pattern: `\bto apply,? (?:please|send|submit|visit|click)\b`, Window: 250},
			{Name: "application_process", Kind: BoilerplateSentence, Pattern: `\bapply (?:now|today|online|here)\b`, Window: 250},
			{Name: "application_process", Kind: BoilerplateSentence, Pattern: `\bsubmit (?:your|a) (?:resume|cv|application|cover letter)\b`, Window: 250},
			{Name: "application_process", Kind: BoilerplateSentence, Pattern: `\bclick (?:the )?["']?apply\b`, Window: 200},
			{Name: "application_process", Kind: BoilerplateSentence, Pattern: `\bonly (?:shortlisted|selected) candidates will be contacted\b`, Window: 200},
			{Name: "benefits", Kind: BoilerplateSentence, Pattern: `\b(?:salary|pay|compensation|base pay) range\b`, Window: 300},
			{Name: "benefits", Kind: BoilerplateSentence, Pattern: `\bbenefits (?:include|package)\b`, Window: 400},
			{Name: "benefits", Kind: BoilerplateSentence, Pattern: `\b(?:401\(?k\)?|paid time off|health, dental,? (?:and|&) vision)`, Window: 300},
			{Name: "benefits", Kind: BoilerplateBlock, Pattern: `^(?:(?:our )?benefits(?: (?:and|&) perks)?|perks(?: (?:and|&) benefits)?|what we offer|compensation(?: (?:and|&) benefits)?)$`, Window: 1500},
			{Name: "application_process", Kind: BoilerplateBlock, Pattern: `^(?:how to apply|application process)$`, Window: 800},
			{Name: "equal_opportunity", Kind: BoilerplateBlock, Pattern: `^(?:equal (?:employment )?opportunity(?: employer| statement)?|eeo(?: statement)?|diversity(?:,? equity)?(?:,? (?:and|&) inclusion)?)$`, Window: 1200},
		},
		BonusKeywords: []string{
			"preferred", "nice to have", "nice-to-have", "bonus", "a plus", "big plus", "pluses", "plus",
			"an asset", "assets", "asset", "desired", "desirable", "ideally", "advantageous",
		},
		Signals: []SignalRule{
			{Name: "experience_duration", Kind: SignalQualification, Pattern: `\b\d{1,2}\s*(?:\+|plus)?\s*(?:(?:-|–|to)\s*\d{1,2}\s*\+?\s*)?(?:years?|yrs?)\b`, Weight: 0.8},
			{Name: "credential", Kind: SignalQualification, Pattern: `\b(?:degree|diploma|certifications?|certificates?|certified|bachelor'?s?|master'?s?|ph\.?d|mba|licen[cs]e[ds]?|accreditation)\b`, Weight: 0.6},
			{Name: "possession", Kind: SignalQualification, Pattern: `\b(?:experience (?:with|in|using|building)|knowledge (?:of|in)|proficien(?:cy|t) (?:in|with)|familiar(?:ity)? with|understanding of|expertise (?:in|with)|background in|skilled in|fluen(?:cy|t) in|ability to|track record)\b`, Weight: 0.5},
			{Name: "requirement_phrase", Kind: SignalQualification, Pattern: `\b(?:must have|must be|required|you have|you are|strong)\b`, Weight: 0.4},
			{Name: "future_framing", Kind: SignalResponsibility, Pattern: `\b(?:you(?:'ll| will)(?: be)?|responsible for|in this role)\b`, Weight: 0.7},
			{Name: "cadence", Kind: SignalResponsibility, Pattern: `\b(?:daily|weekly|monthly|day[- ]to[- ]day|on a regular basis)\b`, Weight: 0.2},
		},
		ActionVerbs: []string{
			"analyze", "architect", "assist", "automate", "build", "champion", "coach", "collaborate",
			"communicate", "conduct", "contribute", "coordinate", "create", "define", "deliver", "deploy",
			"design", "develop", "direct", "document", "drive", "ensure", "establish", "evaluate",
			"execute", "help", "identify", "implement", "improve", "integrate", "investigate", "lead",
			"maintain", "manage", "mentor", "monitor", "optimize", "oversee", "own", "partner",
			"participate", "perform", "plan", "prepare", "present", "prioritize", "provide", "research",
			"review", "run", "scale", "ship", "support", "test", "track", "train", "translate",
			"troubleshoot", "work", "write",
		},
		Ownership: []TagRule{
			{Label: "manage", Keywords: []string{"manage", "manages", "managing", "lead", "leads", "leading", "drive", "drives", "driving", "own", "owns", "owning", "direct", "directs", "oversee", "oversees"}},
			{Label: "lead", Keywords: []string{"develop", "develops", "developing", "build", "builds", "building", "create", "creates", "creating", "design", "designs", "designing", "implement", "implements", "implementing", "establish", "establishes"}},
			{Label: "support", Keywords: []string{"support", "supports", "supporting", "assist", "assists", "help", "helps", "contribute", "contributes", "collaborate", "collaborates", "collaborating"}},
			{Label: "assist", Keywords: []string{"maintain", "maintains", "maintaining", "monitor", "monitors", "monitoring", "review", "reviews", "reviewing", "participate", "participates"}},
		},
		Frequency: []TagRule{
			{Label: "daily", Keywords: []string{"daily", "day-to-day", "day to day", "routine", "ongoing"}},
			{Label: "weekly", Keywords: []string{"weekly", "bi-weekly", "biweekly"}},
			{Label: "regularly", Keywords: []string{"regularly", "frequently", "often", "continuous", "continuously"}},
			{Label: "ad-hoc", Keywords: []string{"ad-hoc", "ad hoc", "as needed", "occasional", "occasionally", "periodic", "from time to time"}},
		},
		ActivityTypes: []TagRule{
			{Label: "Data Engineering", Keywords: []string{"pipeline", "pipelines", "etl", "elt", "ingest", "ingestion", "data warehouse", "data lake", "spark", "airflow"}},
			{Label: "Data Visualization", Keywords: []string{"dashboard", "dashboards", "visualization", "visualizations", "power bi", "tableau", "report", "reports", "reporting"}},
			{Label: "Analytics", Keywords: []string{"analysis", "analyze", "analyses", "metric", "metrics", "kpi", "kpis", "insight", "insights", "trend", "trends", "statistical"}},
			{Label: "Data Science", Keywords: []string{"machine learning", "model", "models", "algorithm", "algorithms", "prediction", "predictive", "ml", "ai"}},
			{Label: "Database Management", Keywords: []string{"database", "databases", "sql", "query", "queries", "schema", "schemas", "index", "indexes"}},
			{Label: "Data Governance", Keywords: []string{"data quality", "governance", "compliance", "security", "privacy", "gdpr"}},
			{Label: "Software Engineering", Keywords: []string{"api", "apis", "service", "services", "microservices", "backend", "frontend", "code", "codebase", "deploy", "deployment"}},
			{Label: "Leadership", Keywords: []string{"mentor", "mentoring", "coach", "coaching", "hire", "hiring", "team lead"}},
		},
		SoftSkills: []string{
			"communication", "leadership", "teamwork", "collaboration", "problem solving", "problem-solving",
			"critical thinking", "analytical", "detail-oriented", "detail oriented", "organized",
			"self-motivated", "self-starter", "interpersonal", "presentation", "written", "verbal",
			"adaptability", "time management",
		},
		Abbreviations: []string{
			"e.g", "i.e", "etc", "vs", "inc", "ltd", "co", "corp", "sr", "jr", "dr", "mr", "mrs", "ms",
			"st", "no", "approx", "dept", "u.s", "u.k", "e.u", "ph.d", "b.s", "b.a", "m.s", "m.a",
		},
	}
}

// Ruleset is a compiled, immutable Rules table. It is safe for concurrent use.
type Ruleset struct {
	hintHeader           *regexp.Regexp
	qualificationHeader  *regexp.Regexp
	responsibilityHeader *regexp.Regexp
	terminatorHeader     *regexp.Regexp
	preferredHint        *regexp.Regexp
	boilerplate          []compiledBoilerplate
	bonus                *regexp.Regexp
	signals              []compiledSignal
	actionVerbs          map[string]struct{}
	ownership            []compiledTag
	frequency            []compiledTag
	activityTypes        []compiledTag
	softSkills           *regexp.Regexp
	abbreviations        map[string]struct{}
}

type compiledBoilerplate struct {
	name    string
	kind    BoilerplateKind
	pattern *regexp.Regexp
	window  int
}

type compiledSignal struct {
	name    string
	kind    SignalKind
	pattern *regexp.Regexp
	weight  float64
}

type compiledTag struct {
	label   string
	pattern *regexp.Regexp
}

// Compile validates and compiles a Rules table
func Compile(r Rules) (*Ruleset, error) {
	if len(r.QualificationHeaders) == 0 || len(r.ResponsibilityHeaders) == 0 {
		return nil, &RuleError{Rule: "headers", Message: "qualification and responsibility header families are required"}
	}

	rs := &Ruleset{
		actionVerbs:   wordSet(r.ActionVerbs),
		abbreviations: wordSet(r.Abbreviations),
	}

	var err error
	if rs.qualificationHeader, err = compileAnchored("qualification_headers", r.QualificationHeaders); err != nil {
		return nil, err
	}
	if rs.responsibilityHeader, err = compileAnchored("responsibility_headers", r.ResponsibilityHeaders); err != nil {
		return nil, err
	}
	if len(r.TerminatorHeaders) > 0 {
		if rs.terminatorHeader, err = compileAnchored("terminator_headers", r.TerminatorHeaders); err != nil {
			return nil, err
		}
	}

	hints := append(append([]string{}, r.PreferredHints...), r.RequiredHints...)
	if len(hints) > 0 {
		expr := `^(?:` + literalAlternation(hints) + `)`
		if len(r.HintSuffixes) > 0 {
			expr += `(?:\s+(?:` + literalAlternation(r.HintSuffixes) + `))?`
		}
		if rs.hintHeader, err = compileRule("hints", expr+`$`); err != nil {
			return nil, err
		}
	}
	if len(r.PreferredHints) > 0 {
		if rs.preferredHint, err = compileRule("preferred_hints", `^(?:`+literalAlternation(r.PreferredHints)+`)\b`); err != nil {
			return nil, err
		}
	}

	for _, b := range r.Boilerplate {
		if b.Kind != BoilerplateSentence && b.Kind != BoilerplateBlock {
			return nil, &RuleError{Rule: b.Name, Message: fmt.Sprintf("unknown boilerplate kind %q", b.Kind)}
		}
		if b.Window <= 0 {
			return nil, &RuleError{Rule: b.Name, Message: "window must be positive"}
		}
		re, err := compileRule(b.Name, b.Pattern)
		if err != nil {
			return nil, err
		}
		rs.boilerplate = append(rs.boilerplate, compiledBoilerplate{name: b.Name, kind: b.Kind, pattern: re, window: b.Window})
	}

	if rs.bonus, err = compileKeywords("bonus_keywords", r.BonusKeywords); err != nil {
		return nil, err
	}

	for _, s := range r.Signals {
		if s.Kind != SignalQualification && s.Kind != SignalResponsibility {
			return nil, &RuleError{Rule: s.Name, Message: fmt.Sprintf("unknown signal kind %q", s.Kind)}
		}
		re, err := compileRule(s.Name, s.Pattern)
		if err != nil {
			return nil, err
		}
		rs.signals = append(rs.signals, compiledSignal{name: s.Name, kind: s.Kind, pattern: re, weight: s.Weight})
	}

	if rs.ownership, err = compileTags("ownership", r.Ownership); err != nil {
		return nil, err
	}
	if rs.frequency, err = compileTags("frequency", r.Frequency); err != nil {
		return nil, err
	}
	if rs.activityTypes, err = compileTags("activity_types", r.ActivityTypes); err != nil {
		return nil, err
	}
	if rs.softSkills, err = compileKeywords("soft_skills", r.SoftSkills); err != nil {
		return nil, err
	}

	return rs, nil
}

var defaultRuleset = sync.OnceValue(func() *Ruleset {
	rs, err := Compile(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default rules do not compile: %v", err))
	}
	return rs
})

// DefaultRuleset returns the compiled built-in rules, compiled once per process
func DefaultRuleset() *Ruleset {
	return defaultRuleset()
}

// LoadRules reads a YAML rule table. Keys absent from the file keep their default values.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

func compileRule(name, expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return nil, &RuleError{Rule: name, Message: "invalid pattern", Cause: err}
	}
	return re, nil
}

// compileAnchored joins header fragments into one expression matching a whole header line
func compileAnchored(name string, fragments []string) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if _, err := regexp.Compile(f); err != nil {
			return nil, &RuleError{Rule: name, Message: fmt.Sprintf("invalid header fragment %q", f), Cause: err}
		}
		parts = append(parts, `(?:`+f+`)`)
	}
	return compileRule(name, `^(?:`+strings.Join(parts, "|")+`)$`)
}

func compileKeywords(name string, words []string) (*regexp.Regexp, error) {
	if len(words) == 0 {
		return nil, nil
	}
	return compileRule(name, keywordAlternation(words))
}

func compileTags(name string, tags []TagRule) ([]compiledTag, error) {
	out := make([]compiledTag, 0, len(tags))
	for _, t := range tags {
		if len(t.Keywords) == 0 {
			continue
		}
		re, err := compileRule(name+"."+t.Label, keywordAlternation(t.Keywords))
		if err != nil {
			return nil, err
		}
		out = append(out, compiledTag{label: t.Label, pattern: re})
	}
	return out, nil
}

// literalAlternation quotes words and orders them longest first
func literalAlternation(words []string) string {
	sorted := append([]string{}, words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`))
	}
	return strings.Join(quoted, "|")
}

// keywordAlternation builds a word-boundary alternation; a boundary is only
// asserted next to word characters so keywords like "c++" still match.
func keywordAlternation(words []string) string {
	sorted := append([]string{}, words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		expr := strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
		if isWordByte(w[0]) {
			expr = `\b` + expr
		}
		if isWordByte(w[len(w)-1]) {
			expr += `\b`
		}
		parts = append(parts, expr)
	}
	return `(?:` + strings.Join(parts, "|") + `)`
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
