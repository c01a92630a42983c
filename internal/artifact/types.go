// Package artifact defines the four structured records produced by the
// knowledge-creation spiral: the experience map, the knowledge specification,
// the business opportunity card and the action plan.
package artifact

import (
	"fmt"
)

// Kind identifies which of the four artifact records a value is.
type Kind string

const (
	KindExperienceMap Kind = "experience_map"
	KindKnowledgeSpec Kind = "knowledge_spec"
	KindBusinessCard  Kind = "business_card"
	KindActionPlan    Kind = "action_plan"
)

// Unresolved is the placeholder written into every text field of a fallback
// artifact. Use IsPlaceholder or Artifact.Degraded rather than comparing text.
const Unresolved = "추가 분석 필요"

// Score bounds for knowledge-asset sub-scores.
const (
	MinScore = 1
	MaxScore = 5
)

// Artifact is implemented by the pointer types of all four records.
type Artifact interface {
	// Kind returns the record variant.
	Kind() Kind

	// Validate reports the first constraint violation, if any.
	Validate() error

	// Normalize replaces absent list fields with empty lists.
	Normalize()

	// Degraded reports whether the record was built from placeholders
	// because the generated text could not be parsed.
	Degraded() bool

	// Markdown renders the record for display.
	Markdown() string
}

// IsPlaceholder reports whether a text field holds the fallback marker.
func IsPlaceholder(s string) bool {
	return s == Unresolved
}

// EmotionalWeight is how strongly the user feels about a knowledge area.
type EmotionalWeight string

const (
	WeightHigh   EmotionalWeight = "높음"
	WeightMedium EmotionalWeight = "보통"
	WeightLow    EmotionalWeight = "낮음"
)

// Valid reports whether w is one of the defined tiers.
func (w EmotionalWeight) Valid() bool {
	switch w {
	case WeightHigh, WeightMedium, WeightLow:
		return true
	}
	return false
}

// Difficulty is a three-step tier used for transfer and execution difficulty.
type Difficulty string

const (
	DifficultyHigh   Difficulty = "상"
	DifficultyMedium Difficulty = "중"
	DifficultyLow    Difficulty = "하"
)

// Valid reports whether d is one of the defined tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyHigh, DifficultyMedium, DifficultyLow:
		return true
	}
	return false
}

// OpportunityType is the closed set of business opportunity shapes.
type OpportunityType string

const (
	OpportunityKnowledgeTransfer OpportunityType = "지식전수형"
	OpportunityContent           OpportunityType = "콘텐츠형"
	OpportunityTool              OpportunityType = "도구화형"
	OpportunitySystem            OpportunityType = "시스템형"
)

// Valid reports whether t is one of the defined opportunity types.
func (t OpportunityType) Valid() bool {
	switch t {
	case OpportunityKnowledgeTransfer, OpportunityContent, OpportunityTool, OpportunitySystem:
		return true
	}
	return false
}

// ValidationError describes a single field that violates its constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
