package agent

import (
	"context"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/extraction"
	"github.com/fyrsmithlabs/tacit/internal/llm"
)

// Internalizer turns a business opportunity into this week's experiments.
type Internalizer struct {
	base
	result *artifact.ActionPlan
}

// NewInternalizer creates an internalization agent.
func NewInternalizer(gen llm.Generator, opts ...Option) *Internalizer {
	return &Internalizer{base: newBase("internalizer", internalizerSystem, gen, opts)}
}

// Synthesize builds the action plan from card in one exchange.
func (i *Internalizer) Synthesize(ctx context.Context, card *artifact.BusinessCard) (*artifact.ActionPlan, error) {
	prompt, err := embed("비즈니스 기회 카드", card, internalizerArtifactPrompt)
	if err != nil {
		return nil, err
	}
	raw, err := i.exchange(ctx, "synthesize", prompt, i.opts.budgets.Synthesis)
	if err != nil {
		return nil, err
	}
	res := extraction.ActionPlan(raw)
	if res.Err != nil {
		i.warnFallback(string(artifact.KindActionPlan), res.Err)
	}
	i.result = res.Artifact
	return i.result, nil
}

// Artifact returns the last synthesized plan, or nil.
func (i *Internalizer) Artifact() *artifact.ActionPlan {
	return i.result
}

// Reset discards the exchange and any synthesized plan.
func (i *Internalizer) Reset() {
	i.conv.Reset()
	i.result = nil
}
