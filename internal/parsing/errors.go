package parsing

import (
	"fmt"

	"github.com/jonathan/posting-parser/internal/types"
)

// RuleError reports a rule table entry that cannot be compiled
type RuleError struct {
	Rule    string
	Message string
	Cause   error
}

func (e *RuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule %s: %s: %v", e.Rule, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Message)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}

// OptionError reports an invalid parser option
type OptionError struct {
	Field   string
	Message string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Message)
}

// Warning is a non-fatal condition reported by a parse
type Warning = types.Warning

// Warning kinds
const (
	WarnStructuralAmbiguity          = "structural_ambiguity"
	WarnLowConfidenceClassification  = "low_confidence_classification"
	WarnEmptyInput                   = "empty_input"
	WarnImperativeUnderQualification = FlagImperativeUnderQualifications
)
