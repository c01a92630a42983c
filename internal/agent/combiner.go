package agent

import (
	"context"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/extraction"
	"github.com/fyrsmithlabs/tacit/internal/llm"
)

// Combiner connects the knowledge specification to market opportunities.
type Combiner struct {
	base
	result *artifact.BusinessCard
}

// NewCombiner creates a combination agent.
func NewCombiner(gen llm.Generator, opts ...Option) *Combiner {
	return &Combiner{base: newBase("combiner", combinerSystem, gen, opts)}
}

// Synthesize builds the business opportunity card from spec in one exchange.
func (c *Combiner) Synthesize(ctx context.Context, spec *artifact.KnowledgeSpec) (*artifact.BusinessCard, error) {
	prompt, err := embed("암묵지 명세서", spec, combinerArtifactPrompt)
	if err != nil {
		return nil, err
	}
	raw, err := c.exchange(ctx, "synthesize", prompt, c.opts.budgets.Synthesis)
	if err != nil {
		return nil, err
	}
	res := extraction.BusinessCard(raw)
	if res.Err != nil {
		c.warnFallback(string(artifact.KindBusinessCard), res.Err)
	}
	c.result = res.Artifact
	return c.result, nil
}

// Artifact returns the last synthesized card, or nil.
func (c *Combiner) Artifact() *artifact.BusinessCard {
	return c.result
}

// Reset discards the exchange and any synthesized card.
func (c *Combiner) Reset() {
	c.conv.Reset()
	c.result = nil
}
