// Package config loads runtime settings from an optional YAML or JSON file and
// POSTING_PARSER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/posting-parser/internal/enrich"
	"github.com/jonathan/posting-parser/internal/llm"
	"github.com/jonathan/posting-parser/internal/parsing"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable key
const EnvPrefix = "POSTING_PARSER"

// Config holds every runtime setting
type Config struct {
	DatabaseURL            string  `mapstructure:"database_url"`
	APIKey                 string  `mapstructure:"api_key"`
	RulesFile              string  `mapstructure:"rules_file" validate:"omitempty,file"`
	Workers                int     `mapstructure:"workers" validate:"min=1,max=256"`
	LowConfidenceThreshold float64 `mapstructure:"low_confidence_threshold" validate:"gte=0,lte=1"`
	ActionVerbPolicy       string  `mapstructure:"action_verb_policy" validate:"oneof=trust_section flag reclassify"`
	UnmarkedQualification  string  `mapstructure:"unmarked_qualification" validate:"oneof=required bonus"`
	Enrichment             string  `mapstructure:"enrichment" validate:"oneof=keywords llm none"`
	LLMTier                string  `mapstructure:"llm_tier" validate:"oneof=lite standard"`
	LLMModel               string  `mapstructure:"llm_model"`
	UseBrowser             bool    `mapstructure:"use_browser"`
	Port                   int     `mapstructure:"port" validate:"min=1,max=65535"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst              int     `mapstructure:"rate_burst" validate:"min=1"`
	Log                    Log     `mapstructure:"log"`
}

// Log configures the zap logger
type Log struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Error reports configuration that failed validation
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("workers", 4)
	v.SetDefault("low_confidence_threshold", parsing.DefaultLowConfidenceThreshold)
	v.SetDefault("action_verb_policy", string(parsing.PolicyTrustSection))
	v.SetDefault("unmarked_qualification", "required")
	v.SetDefault("enrichment", enrich.ModeKeywords)
	v.SetDefault("llm_tier", string(llm.TierLite))
	v.SetDefault("llm_model", "")
	v.SetDefault("use_browser", false)
	v.SetDefault("port", 8080)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_burst", 10)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// New returns a viper instance with defaults and environment binding but no file
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DATABASE_URL and GEMINI_API_KEY are honoured without the prefix
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GEMINI_API_KEY")
	return v
}

// Load reads path (when non-empty), applies environment overrides and validates the result
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field constraint
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &Error{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on '%s' (value %v)", fe.Tag(), fe.Value()),
			Cause:   err,
		}
	}
	return &Error{Message: err.Error(), Cause: err}
}

// ParserOptions converts the arbiter settings
func (c *Config) ParserOptions() parsing.Options {
	unmarked := parsing.CategoryRequired
	if c.UnmarkedQualification == "bonus" {
		unmarked = parsing.CategoryBonus
	}
	return parsing.Options{
		LowConfidenceThreshold: c.LowConfidenceThreshold,
		ActionVerbPolicy:       parsing.ActionVerbPolicy(c.ActionVerbPolicy),
		UnmarkedQualification:  unmarked,
	}
}

// LLMConfig returns the Gemini model table and the tier enrichment runs on.
// LLMModel, when set, replaces the model of that tier.
func (c *Config) LLMConfig() (*llm.Config, llm.ModelTier) {
	tier := llm.ModelTier(c.LLMTier)
	if tier == "" {
		tier = llm.TierLite
	}
	models := llm.DefaultConfig()
	if c.LLMModel != "" {
		models = models.WithModel(tier, c.LLMModel)
	}
	return models, tier
}

// Ruleset compiles the configured rule table, or returns the built-in rules
// when no rules file is set.
func (c *Config) Ruleset() (*parsing.Ruleset, error) {
	if c.RulesFile == "" {
		return parsing.DefaultRuleset(), nil
	}
	rules, err := parsing.LoadRules(c.RulesFile)
	if err != nil {
		return nil, err
	}
	return parsing.Compile(rules)
}

// NewParser builds a parser from the configured rules and options
func (c *Config) NewParser() (*parsing.Parser, error) {
	rs, err := c.Ruleset()
	if err != nil {
		return nil, err
	}
	return parsing.New(rs, c.ParserOptions())
}
