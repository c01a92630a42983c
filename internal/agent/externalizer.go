package agent

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/extraction"
	"github.com/fyrsmithlabs/tacit/internal/llm"
)

// ErrNotStarted is returned when the externalization dialogue is advanced
// before Begin.
var ErrNotStarted = errors.New("externalization dialogue has not started")

// Externalizer runs the dialoguing phase and produces the knowledge
// specification. Its dialogue is seeded from the experience map.
type Externalizer struct {
	base
	tracker *Tracker
	focus   string
	result  *artifact.KnowledgeSpec
}

// NewExternalizer creates an externalization agent.
func NewExternalizer(gen llm.Generator, opts ...Option) *Externalizer {
	return &Externalizer{
		base:    newBase("externalizer", externalizerSystem, gen, opts),
		tracker: NewTracker(ExternalizationGate()),
	}
}

// Begin seeds the dialogue from the experience map and returns the agent's
// first question. The seed instruction and the reply become the first two
// turns of the conversation.
func (e *Externalizer) Begin(ctx context.Context, m *artifact.ExperienceMap) (string, error) {
	focus := m.Focus()
	seed := externalizerSeed(m, focus)
	reply, err := e.exchange(ctx, "begin", seed, e.opts.budgets.Initial)
	if err != nil {
		return "", err
	}
	e.focus = focus
	e.tracker.Observe(seed)
	e.tracker.Observe(reply)
	return reply, nil
}

// Focus returns the area chosen by Begin.
func (e *Externalizer) Focus() string {
	return e.focus
}

// Advance records the user's message, obtains a reply and reports whether the
// completion heuristic is now satisfied.
func (e *Externalizer) Advance(ctx context.Context, message string) (string, bool, error) {
	if !e.Started() {
		return "", false, ErrNotStarted
	}
	message = e.redact(message)
	reply, err := e.exchange(ctx, "advance", message, e.opts.budgets.Chat)
	if err != nil {
		return "", false, err
	}
	e.tracker.Observe(message)
	e.tracker.Observe(reply)
	return reply, e.tracker.Complete(), nil
}

// Complete reports whether the completion heuristic is satisfied.
func (e *Externalizer) Complete() bool {
	return e.tracker.Complete()
}

// Synthesize asks for the knowledge specification.
func (e *Externalizer) Synthesize(ctx context.Context) (*artifact.KnowledgeSpec, error) {
	raw, err := e.ask(ctx, "synthesize", externalizerArtifactPrompt, e.opts.budgets.Synthesis)
	if err != nil {
		return nil, err
	}
	res := extraction.KnowledgeSpec(raw)
	if res.Err != nil {
		e.warnFallback(string(artifact.KindKnowledgeSpec), res.Err)
	}
	e.result = res.Artifact
	return e.result, nil
}

// Artifact returns the last synthesized specification, or nil.
func (e *Externalizer) Artifact() *artifact.KnowledgeSpec {
	return e.result
}

// Reset discards the conversation, the focus and any synthesized spec.
func (e *Externalizer) Reset() {
	e.conv.Reset()
	e.tracker.Reset()
	e.focus = ""
	e.result = nil
}
