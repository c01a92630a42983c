package agent

import (
	"context"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/extraction"
	"github.com/fyrsmithlabs/tacit/internal/llm"
)

// Socializer runs the originating dialogue and produces the experience map.
type Socializer struct {
	base
	tracker *Tracker
	result  *artifact.ExperienceMap
}

// NewSocializer creates a socialization agent.
func NewSocializer(gen llm.Generator, opts ...Option) *Socializer {
	return &Socializer{
		base:    newBase("socializer", socializerSystem, gen, opts),
		tracker: NewTracker(SocializationGate()),
	}
}

// Welcome returns the opening message shown before the first user turn.
// It is not recorded in the conversation.
func (s *Socializer) Welcome() string {
	return welcomeMessage
}

// Advance records the user's message, obtains a reply and reports whether the
// completion heuristic is now satisfied.
func (s *Socializer) Advance(ctx context.Context, message string) (string, bool, error) {
	message = s.redact(message)
	reply, err := s.exchange(ctx, "advance", message, s.opts.budgets.Chat)
	if err != nil {
		return "", false, err
	}
	s.tracker.Observe(message)
	s.tracker.Observe(reply)
	return reply, s.tracker.Complete(), nil
}

// Complete reports whether the completion heuristic is satisfied.
func (s *Socializer) Complete() bool {
	return s.tracker.Complete()
}

// Synthesize asks for the experience map. Generator errors are returned;
// unparseable output yields the placeholder map.
func (s *Socializer) Synthesize(ctx context.Context) (*artifact.ExperienceMap, error) {
	raw, err := s.ask(ctx, "synthesize", socializerArtifactPrompt, s.opts.budgets.Experience)
	if err != nil {
		return nil, err
	}
	res := extraction.ExperienceMap(raw)
	if res.Err != nil {
		s.warnFallback(string(artifact.KindExperienceMap), res.Err)
	}
	s.result = res.Artifact
	return s.result, nil
}

// Artifact returns the last synthesized map, or nil.
func (s *Socializer) Artifact() *artifact.ExperienceMap {
	return s.result
}

// Reset discards the conversation and any synthesized map.
func (s *Socializer) Reset() {
	s.conv.Reset()
	s.tracker.Reset()
	s.result = nil
}
