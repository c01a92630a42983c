package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
)

// Pointer constrains P to be *T and an artifact.
type Pointer[T any] interface {
	*T
	artifact.Artifact
}

// Decode extracts and parses an artifact of type T, then checks its required
// keys before normalizing and validating it.
func Decode[T any, P Pointer[T]](text string) (P, error) {
	payload := Block(text)

	var v T
	p := P(&v)
	if err := json.Unmarshal([]byte(payload), p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.Kind(), err)
	}
	if err := artifact.CheckKeys(p.Kind(), []byte(payload)); err != nil {
		return nil, fmt.Errorf("validating %s: %w", p.Kind(), err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", p.Kind(), err)
	}
	return p, nil
}

// Result is the outcome of Resolve.
type Result[P any] struct {
	Artifact P
	// Err is the parse or validation error that forced the fallback.
	Err error
}

// Resolve decodes text, substituting fallback() when decoding fails.
func Resolve[T any, P Pointer[T]](text string, fallback func() P) Result[P] {
	p, err := Decode[T, P](text)
	if err != nil {
		return Result[P]{Artifact: fallback(), Err: err}
	}
	return Result[P]{Artifact: p}
}

// ExperienceMap resolves generated text into an experience map.
func ExperienceMap(text string) Result[*artifact.ExperienceMap] {
	return Resolve[artifact.ExperienceMap](text, artifact.FallbackExperienceMap)
}

// KnowledgeSpec resolves generated text into a knowledge specification.
func KnowledgeSpec(text string) Result[*artifact.KnowledgeSpec] {
	return Resolve[artifact.KnowledgeSpec](text, artifact.FallbackKnowledgeSpec)
}

// BusinessCard resolves generated text into a business opportunity card.
func BusinessCard(text string) Result[*artifact.BusinessCard] {
	return Resolve[artifact.BusinessCard](text, artifact.FallbackBusinessCard)
}

// ActionPlan resolves generated text into an action plan.
func ActionPlan(text string) Result[*artifact.ActionPlan] {
	return Resolve[artifact.ActionPlan](text, artifact.FallbackActionPlan)
}
