package enrich

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/posting-parser/internal/parsing"
	"github.com/jonathan/posting-parser/internal/types"
)

// Entity categories produced by the keyword enricher
const (
	EntityLanguage     = "LANGUAGE"
	EntityCloud        = "CLOUD"
	EntityBITool       = "BI_TOOL"
	EntityDataPlatform = "DATA_PLATFORM"
	EntityMLLibrary    = "ML_LIBRARY"
	EntityDevOps       = "DEVOPS"
	EntityConcept      = "CONCEPT"
)

// Term is a catalogue entry: a canonical skill name with the spellings that
// identify it in text.
type Term struct {
	Name          string
	Category      string
	Aliases       []string
	CaseSensitive bool
}

// DefaultTerms is the technology catalogue
func DefaultTerms() []Term {
	return []Term{
		{Name: "Python", Category: EntityLanguage, Aliases: []string{"python"}},
		{Name: "SQL", Category: EntityLanguage, Aliases: []string{"sql"}},
		{Name: "R", Category: EntityLanguage, Aliases: []string{"R"}, CaseSensitive: true},
		{Name: "Java", Category: EntityLanguage, Aliases: []string{"java"}},
		{Name: "JavaScript", Category: EntityLanguage, Aliases: []string{"javascript"}},
		{Name: "TypeScript", Category: EntityLanguage, Aliases: []string{"typescript"}},
		{Name: "C#", Category: EntityLanguage, Aliases: []string{"c#"}},
		{Name: "C++", Category: EntityLanguage, Aliases: []string{"c++"}},
		{Name: "Go", Category: EntityLanguage, Aliases: []string{"golang"}},
		{Name: "Scala", Category: EntityLanguage, Aliases: []string{"scala"}},

		{Name: "Power BI", Category: EntityBITool, Aliases: []string{"power bi", "powerbi"}},
		{Name: "Tableau", Category: EntityBITool, Aliases: []string{"tableau"}},
		{Name: "Excel", Category: EntityBITool, Aliases: []string{"excel"}, CaseSensitive: true},
		{Name: "Looker", Category: EntityBITool, Aliases: []string{"looker"}},
		{Name: "Qlik", Category: EntityBITool, Aliases: []string{"qlik"}},

		{Name: "Azure", Category: EntityCloud, Aliases: []string{"azure"}},
		{Name: "AWS", Category: EntityCloud, Aliases: []string{"aws", "amazon web services"}},
		{Name: "GCP", Category: EntityCloud, Aliases: []string{"gcp", "google cloud"}},

		{Name: "Spark", Category: EntityDataPlatform, Aliases: []string{"spark", "pyspark"}},
		{Name: "Hadoop", Category: EntityDataPlatform, Aliases: []string{"hadoop"}},
		{Name: "Kafka", Category: EntityDataPlatform, Aliases: []string{"kafka"}},
		{Name: "Airflow", Category: EntityDataPlatform, Aliases: []string{"airflow"}},
		{Name: "Snowflake", Category: EntityDataPlatform, Aliases: []string{"Snowflake"}, CaseSensitive: true},
		{Name: "PostgreSQL", Category: EntityDataPlatform, Aliases: []string{"postgresql", "postgres"}},

		{Name: "pandas", Category: EntityMLLibrary, Aliases: []string{"pandas"}},
		{Name: "NumPy", Category: EntityMLLibrary, Aliases: []string{"numpy"}},
		{Name: "scikit-learn", Category: EntityMLLibrary, Aliases: []string{"scikit-learn", "sklearn"}},
		{Name: "TensorFlow", Category: EntityMLLibrary, Aliases: []string{"tensorflow"}},
		{Name: "PyTorch", Category: EntityMLLibrary, Aliases: []string{"pytorch"}},

		{Name: "Git", Category: EntityDevOps, Aliases: []string{"git"}},
		{Name: "Docker", Category: EntityDevOps, Aliases: []string{"docker"}},
		{Name: "Kubernetes", Category: EntityDevOps, Aliases: []string{"kubernetes", "k8s"}},

		{Name: "ETL", Category: EntityConcept, Aliases: []string{"etl"}},
		{Name: "ELT", Category: EntityConcept, Aliases: []string{"elt"}},
		{Name: "API", Category: EntityConcept, Aliases: []string{"api", "apis"}},
		{Name: "REST", Category: EntityConcept, Aliases: []string{"REST", "RESTful"}, CaseSensitive: true},
		{Name: "Machine Learning", Category: EntityConcept, Aliases: []string{"machine learning"}},
		{Name: "Deep Learning", Category: EntityConcept, Aliases: []string{"deep learning"}},
		{Name: "NLP", Category: EntityConcept, Aliases: []string{"nlp", "natural language processing"}},
		{Name: "AI", Category: EntityConcept, Aliases: []string{"AI"}, CaseSensitive: true},
		{Name: "Cloud", Category: EntityConcept, Aliases: []string{"cloud"}},
		{Name: "Statistics", Category: EntityConcept, Aliases: []string{"statistics", "statistical"}},
		{Name: "Mathematics", Category: EntityConcept, Aliases: []string{"mathematics", "math"}},
		{Name: "Modeling", Category: EntityConcept, Aliases: []string{"modeling", "modelling"}},
	}
}

// DomainRule tags a posting with Domain when any keyword appears
type DomainRule struct {
	Domain   string
	Keywords []string
}

// DefaultDomains is the domain tag table
func DefaultDomains() []DomainRule {
	return []DomainRule{
		{Domain: "Data Engineering", Keywords: []string{"pipeline", "pipelines", "etl", "elt", "ingest", "ingestion", "data warehouse", "data lake", "spark", "airflow"}},
		{Domain: "Data Visualization", Keywords: []string{"dashboard", "dashboards", "visualization", "visualizations", "power bi", "tableau", "report", "reports", "visual"}},
		{Domain: "Analytics", Keywords: []string{"analysis", "analyses", "analyze", "analyzing", "metric", "metrics", "kpi", "kpis", "insight", "insights", "trend", "trends", "statistical"}},
		{Domain: "Data Science", Keywords: []string{"machine learning", "model", "models", "algorithm", "algorithms", "prediction", "predictive", "ml", "ai", "deep learning"}},
		{Domain: "Database Management", Keywords: []string{"database", "databases", "sql", "query", "queries", "query optimization", "schema", "schemas", "index", "indexes", "rdbms"}},
		{Domain: "Data Governance", Keywords: []string{"data quality", "governance", "compliance", "security", "privacy", "gdpr"}},
		{Domain: "Cloud Computing", Keywords: []string{"azure", "aws", "gcp", "cloud", "saas", "paas", "iaas"}},
		{Domain: "Business Intelligence", Keywords: []string{"bi", "business intelligence", "reporting", "power bi", "tableau", "looker"}},
	}
}

type compiledTerm struct {
	name     string
	category string
	re       *regexp.Regexp
}

type compiledDomain struct {
	domain string
	re     *regexp.Regexp
}

// KeywordEnricher is the offline enricher: catalogue lookups for skills and
// entities, the parser's action verb table for verbs, and keyword tables for
// domain tags.
type KeywordEnricher struct {
	terms   []compiledTerm
	domains []compiledDomain
	rules   *parsing.Ruleset
}

// NewKeywordEnricher compiles the catalogues. A nil ruleset uses the parser defaults.
func NewKeywordEnricher(terms []Term, domains []DomainRule, rules *parsing.Ruleset) *KeywordEnricher {
	if rules == nil {
		rules = parsing.DefaultRuleset()
	}
	e := &KeywordEnricher{rules: rules}
	for _, t := range terms {
		e.terms = append(e.terms, compiledTerm{
			name:     t.Name,
			category: t.Category,
			re:       termPattern(t.Aliases, t.CaseSensitive),
		})
	}
	for _, d := range domains {
		e.domains = append(e.domains, compiledDomain{domain: d.Domain, re: termPattern(d.Keywords, false)})
	}
	return e
}

// NewDefaultKeywordEnricher uses the built-in tables
func NewDefaultKeywordEnricher() *KeywordEnricher {
	return NewKeywordEnricher(DefaultTerms(), DefaultDomains(), nil)
}

// Enrich fails only when ctx is already done.
func (e *KeywordEnricher) Enrich(ctx context.Context, text string) (*types.Enrichment, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Enricher: ModeKeywords, Message: "context done", Cause: err}
	}

	raw := &types.Enrichment{Entities: map[string][]string{}}
	for _, t := range e.terms {
		if t.re.MatchString(text) {
			raw.ExtractedSkills = append(raw.ExtractedSkills, t.name)
			raw.Entities[t.category] = append(raw.Entities[t.category], t.name)
		}
	}

	for _, word := range strings.FieldsFunc(text, notLetter) {
		if lemma, ok := e.rules.ActionVerbLemma(word); ok {
			raw.ActionVerbs = append(raw.ActionVerbs, lemma)
		}
	}

	for _, d := range e.domains {
		if d.re.MatchString(text) {
			raw.DomainTags = append(raw.DomainTags, d.domain)
		}
	}

	return finalize(raw), nil
}

func notLetter(r rune) bool {
	return !unicode.IsLetter(r)
}

// termPattern builds an alternation matching any alias as a whole token.
// Word boundaries are only asserted next to word characters so aliases such
// as "c++" and "c#" still match.
func termPattern(aliases []string, caseSensitive bool) *regexp.Regexp {
	parts := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if a == "" {
			continue
		}
		p := strings.ReplaceAll(regexp.QuoteMeta(a), " ", `\s+`)
		if isWordChar(a[0]) {
			p = `\b` + p
		}
		switch {
		case len(a) == 1:
			// keeps "R" from matching "R&D"
			p += `(?:[^\w&]|$)`
		case isWordChar(a[len(a)-1]):
			p += `\b`
		default:
			p += `(?:[^\w+#]|$)`
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return regexp.MustCompile(`[^\s\S]`)
	}
	expr := "(?:" + strings.Join(parts, "|") + ")"
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.MustCompile(expr)
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
