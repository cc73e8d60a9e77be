package enrich

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":       "Go",
	"go lang":      "Go",
	"javascript":   "JavaScript",
	"js":           "JavaScript",
	"typescript":   "TypeScript",
	"k8s":          "Kubernetes",
	"kubernetes":   "Kubernetes",
	"react.js":     "React",
	"reactjs":      "React",
	"node.js":      "Node.js",
	"nodejs":       "Node.js",
	"postgres":     "PostgreSQL",
	"postgresql":   "PostgreSQL",
	"powerbi":      "Power BI",
	"power bi":     "Power BI",
	"sklearn":      "scikit-learn",
	"scikit-learn": "scikit-learn",
	"scikit learn": "scikit-learn",
	"pytorch":      "PyTorch",
	"tensorflow":   "TensorFlow",
	"numpy":        "NumPy",
	"pandas":       "pandas",
	"github":       "GitHub",
	"gcp":          "GCP",
	"aws":          "AWS",
	"sql":          "SQL",
	"nlp":          "NLP",
	"etl":          "ETL",
	"elt":          "ELT",
	"api":          "API",
	"apis":         "API",
	"rest":         "REST",
	"ai":           "AI",
	"c#":           "C#",
	"c++":          "C++",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.Join(strings.Fields(skillName), " ")
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	upper := strings.ToUpper(normalized)
	switch {
	case normalized == upper && len(normalized) <= 4:
		// short all-caps words are acronyms
		return normalized
	case normalized == upper && !strings.Contains(normalized, " "):
		return capitalize(lower)
	case normalized != upper && normalized != lower:
		// mixed case is deliberate
		return normalized
	case normalized == lower && !strings.Contains(normalized, " "):
		return capitalize(normalized)
	}
	return normalized
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
