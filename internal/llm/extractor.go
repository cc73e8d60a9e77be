package llm

import (
	"fmt"
	"strings"

	"github.com/jonathan/posting-parser/internal/prompts"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string
	Description string // system preamble describing the task
	Fields      []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // type hint shown to the model
	Description string
	Required    bool
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(&sb, "  %q: %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// EnrichmentSchema returns the extraction schema for posting enrichment:
// skills, named entities, action verbs and domain tags.
func EnrichmentSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "PostingEnrichment",
		Description: prompts.MustGet("enrichment.json", "enrichment-preamble"),
		Fields: []SchemaField{
			{
				Name:        "extracted_skills",
				Type:        `["string"]`,
				Description: "Technologies, tools, languages and methods named in the posting",
				Required:    true,
			},
			{
				Name:        "entities",
				Type:        `{"ORG": ["string"], "PRODUCT": ["string"], "GPE": ["string"]}`,
				Description: "Organisations, products and places mentioned, grouped by type",
				Required:    false,
			},
			{
				Name:        "action_verbs",
				Type:        `["string"]`,
				Description: "Base forms of the verbs describing the work (e.g. build, analyze)",
				Required:    true,
			},
			{
				Name:        "domain_tags",
				Type:        `["string"]`,
				Description: "Work domains such as Data Engineering, Analytics, Cloud Computing",
				Required:    true,
			},
		},
	}
}
