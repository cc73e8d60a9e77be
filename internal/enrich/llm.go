package enrich

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/jonathan/posting-parser/internal/llm"
	"github.com/jonathan/posting-parser/internal/prompts"
	"github.com/jonathan/posting-parser/internal/types"
	"go.uber.org/zap"
)

// maxPromptChars bounds the posting text sent to the model
const maxPromptChars = 20000

// LLMEnricher extracts enrichment features with a language model. When the
// model call fails and Fallback is set, the fallback result is returned.
type LLMEnricher struct {
	Client   llm.Client
	Tier     llm.ModelTier
	Fallback Enricher
	Logger   *zap.Logger
}

// NewLLMEnricher returns an enricher on the lite tier that falls back to the
// keyword enricher.
func NewLLMEnricher(client llm.Client, logger *zap.Logger) *LLMEnricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMEnricher{
		Client:   client,
		Tier:     llm.TierLite,
		Fallback: NewDefaultKeywordEnricher(),
		Logger:   logger,
	}
}

// Enrich asks the model for the enrichment JSON and canonicalises the answer.
func (e *LLMEnricher) Enrich(ctx context.Context, text string) (*types.Enrichment, error) {
	enrichment, err := e.generate(ctx, text)
	if err == nil {
		return enrichment, nil
	}
	if e.Fallback == nil || ctx.Err() != nil {
		return nil, err
	}

	e.logger().Warn("LLM enrichment failed, using fallback", zap.Error(err))
	return e.Fallback.Enrich(ctx, text)
}

func (e *LLMEnricher) generate(ctx context.Context, text string) (*types.Enrichment, error) {
	if e.Client == nil {
		return nil, &Error{Enricher: ModeLLM, Message: "no client configured"}
	}

	if len(text) > maxPromptChars {
		n := maxPromptChars
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	schema := llm.EnrichmentSchema()
	prompt := llm.BuildExtractionPrompt(schema, text)

	resp, err := e.Client.GenerateJSON(ctx, prompt, e.Tier)
	if err != nil {
		return nil, &Error{Enricher: ModeLLM, Message: "generation failed", Cause: err}
	}

	raw, err := decodeEnrichment(resp)
	if err != nil {
		// one retry with a reminder to answer in JSON only
		e.logger().Debug("invalid enrichment JSON, retrying", zap.Error(err))
		retry := prompt + "\n" + prompts.Format(prompts.MustGet("enrichment.json", "enrichment-retry"),
			map[string]string{"Name": schema.Name})
		if resp, err = e.Client.GenerateJSON(ctx, retry, e.Tier); err != nil {
			return nil, &Error{Enricher: ModeLLM, Message: "generation failed", Cause: err}
		}
		if raw, err = decodeEnrichment(resp); err != nil {
			return nil, &Error{Enricher: ModeLLM, Message: "invalid JSON response", Cause: err}
		}
	}
	return finalize(raw), nil
}

func decodeEnrichment(resp string) (*types.Enrichment, error) {
	var raw types.Enrichment
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(resp)), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

func (e *LLMEnricher) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
