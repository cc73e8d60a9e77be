// Package types provides type definitions for structured data used throughout the posting parser.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// SectionType is the coarse category a detected section belongs to
type SectionType string

const (
	// SectionQualification marks a span introduced by a requirements-style header
	SectionQualification SectionType = "qualification"
	// SectionResponsibility marks a span introduced by a duties-style header
	SectionResponsibility SectionType = "responsibility"
	// SectionUnclassified marks text with no header-derived type
	SectionUnclassified SectionType = "unclassified"
)

// SkillType distinguishes technical from interpersonal qualifications
type SkillType string

const (
	SkillHard SkillType = "Hard"
	SkillSoft SkillType = "Soft"
)

// RawPosting is a job posting as delivered by ingestion. The parser never mutates it.
type RawPosting struct {
	Text        string     `json:"text"`
	Title       string     `json:"title,omitempty"`
	Company     string     `json:"company,omitempty"`
	Location    string     `json:"location,omitempty"`
	URL         string     `json:"url,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Source      string     `json:"source,omitempty"`
	SalaryRange string     `json:"salary_range,omitempty"`
	JobType     string     `json:"job_type,omitempty"`
}

// Qualification is a required or bonus qualification item
type Qualification struct {
	Text          string    `json:"text"`
	SkillType     SkillType `json:"skill_type"`
	Confidence    float64   `json:"confidence"`
	LowConfidence bool      `json:"low_confidence,omitempty"`
	Flagged       bool      `json:"flagged,omitempty"`
	FlagReason    string    `json:"flag_reason,omitempty"`
}

// Responsibility is a duty item with optional descriptive tags
type Responsibility struct {
	Activity       string  `json:"activity"`
	OwnershipLevel string  `json:"ownership_level,omitempty"`
	Frequency      string  `json:"frequency,omitempty"`
	ActivityType   string  `json:"activity_type,omitempty"`
	Confidence     float64 `json:"confidence"`
	LowConfidence  bool    `json:"low_confidence,omitempty"`
}

// ParsedPosting is the structured record produced from one posting
type ParsedPosting struct {
	Required         []Qualification  `json:"required"`
	Bonus            []Qualification  `json:"bonus"`
	Responsibilities []Responsibility `json:"responsibilities"`
	Summary          string           `json:"summary"`
	SectionsFound    []SectionType    `json:"sections_found"`
}

// NewParsedPosting returns a ParsedPosting whose collections marshal as empty arrays
func NewParsedPosting() *ParsedPosting {
	return &ParsedPosting{
		Required:         []Qualification{},
		Bonus:            []Qualification{},
		Responsibilities: []Responsibility{},
		SectionsFound:    []SectionType{},
	}
}

// Enrichment holds NLP features extracted from the cleaned full text
type Enrichment struct {
	ExtractedSkills []string            `json:"extracted_skills"`
	Entities        map[string][]string `json:"entities"`
	ActionVerbs     []string            `json:"action_verbs"`
	DomainTags      []string            `json:"domain_tags"`
}

// Warning is a non-fatal condition reported while parsing
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Item    string `json:"item,omitempty"`
}

// ProcessedPosting is a parsed posting together with its identity and enrichment
type ProcessedPosting struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title,omitempty"`
	Company       string         `json:"company,omitempty"`
	Location      string         `json:"location,omitempty"`
	URL           string         `json:"url,omitempty"`
	PostedAt      *time.Time     `json:"posted_at,omitempty"`
	ContentHash   string         `json:"content_hash"`
	Parsed        *ParsedPosting `json:"parsed"`
	Enrichment    *Enrichment    `json:"enrichment,omitempty"`
	Warnings      []Warning      `json:"warnings,omitempty"`
	ParserVersion string         `json:"parser_version"`
	ProcessedAt   time.Time      `json:"processed_at"`
}
