package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/agent"
	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/llm"
)

// State is the orchestrator's mutable core.
type State struct {
	Phase  Phase
	Spiral int

	ExperienceMap *artifact.ExperienceMap
	KnowledgeSpec *artifact.KnowledgeSpec
	BusinessCard  *artifact.BusinessCard
	ActionPlan    *artifact.ActionPlan
}

// clone copies s with artifacts callers may change freely.
func (s State) clone() State {
	s.ExperienceMap = s.ExperienceMap.Clone()
	s.KnowledgeSpec = s.KnowledgeSpec.Clone()
	s.BusinessCard = s.BusinessCard.Clone()
	s.ActionPlan = s.ActionPlan.Clone()
	return s
}

func initialState(spiral int) State {
	return State{Phase: PhaseSocialization, Spiral: spiral}
}

// Orchestrator routes messages through the spiral.
type Orchestrator struct {
	state State

	socializer   *agent.Socializer
	externalizer *agent.Externalizer
	combiner     *agent.Combiner
	internalizer *agent.Internalizer

	logger      *zap.Logger
	now         func() time.Time
	transitions []TransitionFunc
}

type config struct {
	logger    *zap.Logger
	agentOpts []agent.Option
	wrap      func(Phase, llm.Generator) llm.Generator
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*config)

// WithLogger sets the logger shared with the agents.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAgentOptions passes options to every agent.
func WithAgentOptions(opts ...agent.Option) Option {
	return func(c *config) {
		c.agentOpts = append(c.agentOpts, opts...)
	}
}

// WithGeneratorWrapper decorates the generator handed to each phase's agent,
// for instance to record per-phase metrics.
func WithGeneratorWrapper(wrap func(Phase, llm.Generator) llm.Generator) Option {
	return func(c *config) {
		c.wrap = wrap
	}
}

// WithClock overrides the time source used for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New creates an orchestrator at socialization, spiral 1.
func New(gen llm.Generator, opts ...Option) *Orchestrator {
	cfg := config{
		logger: zap.NewNop(),
		wrap:   func(_ Phase, g llm.Generator) llm.Generator { return g },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	agentOpts := append([]agent.Option{agent.WithLogger(cfg.logger)}, cfg.agentOpts...)

	return &Orchestrator{
		state:        initialState(1),
		socializer:   agent.NewSocializer(cfg.wrap(PhaseSocialization, gen), agentOpts...),
		externalizer: agent.NewExternalizer(cfg.wrap(PhaseExternalization, gen), agentOpts...),
		combiner:     agent.NewCombiner(cfg.wrap(PhaseCombination, gen), agentOpts...),
		internalizer: agent.NewInternalizer(cfg.wrap(PhaseInternalization, gen), agentOpts...),
		logger:       cfg.logger,
		now:          cfg.now,
	}
}

// OnTransition registers fn to observe every phase change.
func (o *Orchestrator) OnTransition(fn TransitionFunc) {
	o.transitions = append(o.transitions, fn)
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	return o.state.Phase
}

// Status returns a snapshot of the current phase, Ba and spiral.
func (o *Orchestrator) Status() Status {
	return statusOf(o.state.Phase, o.state.Spiral)
}

// InitialMessage returns the agent's opening message for the current phase
// when no user turn has been exchanged in it yet. In externalization this
// seeds the dialogue and calls the generator.
func (o *Orchestrator) InitialMessage(ctx context.Context) (string, error) {
	switch o.state.Phase {
	case PhaseSocialization:
		if o.socializer.Started() {
			return "", nil
		}
		return o.socializer.Welcome(), nil
	case PhaseExternalization:
		if o.externalizer.Started() {
			return "", nil
		}
		return o.externalizer.Begin(ctx, o.requireExperienceMap())
	default:
		return "", nil
	}
}

// Submit routes one user message to the current phase.
//
// In socialization and externalization the message continues the dialogue;
// when the completion heuristic is met the artifact is synthesized and the
// phase advances. The first message in externalization only starts the
// dialogue and is otherwise ignored. In combination and internalization any
// message triggers synthesis from the upstream artifact.
//
// Generator errors are returned unchanged and the phase and artifacts stay
// as they were. When the dialogue exchange succeeds but synthesis fails, the
// exchange stays in the transcript; the next submit adds its own exchange
// and then retries synthesis.
func (o *Orchestrator) Submit(ctx context.Context, message string) (SubmitResult, error) {
	switch o.state.Phase {
	case PhaseSocialization:
		return o.submitSocialization(ctx, message)
	case PhaseExternalization:
		return o.submitExternalization(ctx, message)
	case PhaseCombination:
		return o.combine(ctx, false)
	case PhaseInternalization:
		return o.internalize(ctx, false)
	default:
		return o.result(completeMessage(o.state.Spiral), false, nil), nil
	}
}

func (o *Orchestrator) submitSocialization(ctx context.Context, message string) (SubmitResult, error) {
	if strings.TrimSpace(message) == "" {
		return SubmitResult{}, ErrEmptyMessage
	}

	reply, done, err := o.socializer.Advance(ctx, message)
	if err != nil {
		return SubmitResult{}, err
	}
	if !done {
		return o.result(reply, false, nil), nil
	}

	m, err := o.socializer.Synthesize(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	o.state.ExperienceMap = m
	o.advance(false, m)
	return o.result(reply+"\n\n---\n\n"+socializationDone(m), true, m), nil
}

func (o *Orchestrator) submitExternalization(ctx context.Context, message string) (SubmitResult, error) {
	m := o.requireExperienceMap()
	if !o.externalizer.Started() {
		first, err := o.externalizer.Begin(ctx, m)
		if err != nil {
			return SubmitResult{}, err
		}
		return o.result(first, false, nil), nil
	}

	if strings.TrimSpace(message) == "" {
		return SubmitResult{}, ErrEmptyMessage
	}

	reply, done, err := o.externalizer.Advance(ctx, message)
	if err != nil {
		return SubmitResult{}, err
	}
	if !done {
		return o.result(reply, false, nil), nil
	}

	spec, err := o.externalizer.Synthesize(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	o.state.KnowledgeSpec = spec
	o.advance(false, spec)
	return o.result(reply+"\n\n---\n\n"+externalizationDone(spec), true, spec), nil
}

func (o *Orchestrator) combine(ctx context.Context, forced bool) (SubmitResult, error) {
	spec := o.requireKnowledgeSpec()
	card, err := o.combiner.Synthesize(ctx, spec)
	if err != nil {
		return SubmitResult{}, err
	}
	o.state.BusinessCard = card
	o.advance(forced, card)
	return o.result(combinationDone(card), true, card), nil
}

func (o *Orchestrator) internalize(ctx context.Context, forced bool) (SubmitResult, error) {
	card := o.requireBusinessCard()
	plan, err := o.internalizer.Synthesize(ctx, card)
	if err != nil {
		return SubmitResult{}, err
	}
	o.state.ActionPlan = plan
	o.advance(forced, plan)
	return o.result(internalizationDone(plan), true, plan), nil
}

// ForceAdvance synthesizes the current phase's artifact from whatever has
// been said so far and moves to the next phase, bypassing the completion
// heuristic.
func (o *Orchestrator) ForceAdvance(ctx context.Context) (SubmitResult, error) {
	switch o.state.Phase {
	case PhaseSocialization:
		m, err := o.socializer.Synthesize(ctx)
		if err != nil {
			return SubmitResult{}, err
		}
		o.state.ExperienceMap = m
		o.advance(true, m)
		return o.result(socializationDone(m), true, m), nil
	case PhaseExternalization:
		o.requireExperienceMap()
		spec, err := o.externalizer.Synthesize(ctx)
		if err != nil {
			return SubmitResult{}, err
		}
		o.state.KnowledgeSpec = spec
		o.advance(true, spec)
		return o.result(externalizationDone(spec), true, spec), nil
	case PhaseCombination:
		return o.combine(ctx, true)
	case PhaseInternalization:
		return o.internalize(ctx, true)
	default:
		return SubmitResult{}, ErrPhaseComplete
	}
}

// Reset returns to socialization with spiral 1, clearing every artifact and
// conversation.
func (o *Orchestrator) Reset() {
	from := o.state.Phase
	o.clear(1)
	o.notify(Transition{Kind: TransitionReset, From: from, To: PhaseSocialization, Spiral: 1, At: o.now()})
}

// Restart begins the next spiral: like Reset, but the spiral counter is
// incremented instead of reset.
func (o *Orchestrator) Restart() {
	from := o.state.Phase
	spiral := o.state.Spiral + 1
	o.clear(spiral)
	o.notify(Transition{Kind: TransitionRestart, From: from, To: PhaseSocialization, Spiral: spiral, At: o.now()})
}

func (o *Orchestrator) clear(spiral int) {
	o.state = initialState(spiral)
	o.socializer.Reset()
	o.externalizer.Reset()
	o.combiner.Reset()
	o.internalizer.Reset()
}

// CurrentOutput returns the artifact produced by the phase just finished,
// or nil in socialization.
func (o *Orchestrator) CurrentOutput() artifact.Artifact {
	st := o.State()
	var a artifact.Artifact
	switch st.Phase {
	case PhaseExternalization:
		a = st.ExperienceMap
	case PhaseCombination:
		a = st.KnowledgeSpec
	case PhaseInternalization:
		a = st.BusinessCard
	case PhaseComplete:
		a = st.ActionPlan
	}
	return nonNil(a)
}

// AllArtifacts returns copies of every artifact produced so far keyed by the
// phase that produced it.
func (o *Orchestrator) AllArtifacts() map[Phase]artifact.Artifact {
	st := o.State()
	out := make(map[Phase]artifact.Artifact, 4)
	if st.ExperienceMap != nil {
		out[PhaseSocialization] = st.ExperienceMap
	}
	if st.KnowledgeSpec != nil {
		out[PhaseExternalization] = st.KnowledgeSpec
	}
	if st.BusinessCard != nil {
		out[PhaseCombination] = st.BusinessCard
	}
	if st.ActionPlan != nil {
		out[PhaseInternalization] = st.ActionPlan
	}
	return out
}

// Transcript returns the conversation held by the agent of phase p.
func (o *Orchestrator) Transcript(p Phase) []conversation.Turn {
	switch p {
	case PhaseSocialization:
		return o.socializer.Transcript()
	case PhaseExternalization:
		return o.externalizer.Transcript()
	case PhaseCombination:
		return o.combiner.Transcript()
	case PhaseInternalization:
		return o.internalizer.Transcript()
	default:
		return nil
	}
}

// State returns a copy of the orchestrator's core state. The artifacts in it
// are copies too.
func (o *Orchestrator) State() State {
	return o.state.clone()
}

func (o *Orchestrator) advance(forced bool, produced artifact.Artifact) {
	from := o.state.Phase
	o.state.Phase = from.Next()

	t := Transition{
		Kind:     TransitionAdvance,
		From:     from,
		To:       o.state.Phase,
		Spiral:   o.state.Spiral,
		Forced:   forced,
		Artifact: produced,
		Degraded: produced.Degraded(),
		At:       o.now(),
	}

	o.logger.Info("phase advanced",
		zap.String("from", string(from)),
		zap.String("to", string(t.To)),
		zap.Int("spiral", t.Spiral),
		zap.Bool("forced", forced),
		zap.Bool("degraded", t.Degraded),
	)
	o.notify(t)
}

func (o *Orchestrator) notify(t Transition) {
	for _, fn := range o.transitions {
		fn(t)
	}
}

func (o *Orchestrator) result(response string, changed bool, produced artifact.Artifact) SubmitResult {
	r := SubmitResult{
		Response:     response,
		PhaseChanged: changed,
		Status:       o.Status(),
		Artifact:     produced,
	}
	if produced != nil {
		r.Degraded = produced.Degraded()
	}
	return r
}

// nonNil turns a typed nil pointer inside an interface into a nil interface.
func nonNil(a artifact.Artifact) artifact.Artifact {
	switch v := a.(type) {
	case *artifact.ExperienceMap:
		if v == nil {
			return nil
		}
	case *artifact.KnowledgeSpec:
		if v == nil {
			return nil
		}
	case *artifact.BusinessCard:
		if v == nil {
			return nil
		}
	case *artifact.ActionPlan:
		if v == nil {
			return nil
		}
	}
	return a
}
