// Package agent implements the four phase agents of the knowledge-creation
// spiral. Socializer and Externalizer hold open-ended dialogues and decide
// when enough has been said; Combiner and Internalizer synthesize their
// artifact in a single exchange from the upstream artifact.
//
// Every agent talks to an llm.Generator and turns its free-form output into a
// validated artifact through the extraction package. Unparseable output never
// fails a phase: the artifact's placeholder variant is substituted and a
// warning is logged.
package agent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/llm"
	"github.com/fyrsmithlabs/tacit/internal/logging"
)

const tracerName = "github.com/fyrsmithlabs/tacit/internal/agent"

// Budgets are the token budgets for each kind of exchange.
type Budgets struct {
	Chat       int
	Initial    int
	Experience int
	Synthesis  int
}

// DefaultBudgets returns the stock budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		Chat:       2048,
		Initial:    1024,
		Experience: 2048,
		Synthesis:  3000,
	}
}

// Redactor scrubs sensitive content from user text before it is stored or
// sent to a generator.
type Redactor interface {
	Redact(text string) string
}

type options struct {
	logger   *zap.Logger
	budgets  Budgets
	redactor Redactor
	now      func() time.Time
}

// Option configures an agent.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBudgets overrides the token budgets. Zero fields keep their defaults.
func WithBudgets(b Budgets) Option {
	return func(o *options) {
		if b.Chat > 0 {
			o.budgets.Chat = b.Chat
		}
		if b.Initial > 0 {
			o.budgets.Initial = b.Initial
		}
		if b.Experience > 0 {
			o.budgets.Experience = b.Experience
		}
		if b.Synthesis > 0 {
			o.budgets.Synthesis = b.Synthesis
		}
	}
}

// WithRedactor scrubs user messages before they enter the conversation.
func WithRedactor(r Redactor) Option {
	return func(o *options) {
		o.redactor = r
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  zap.NewNop(),
		budgets: DefaultBudgets(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base holds what every agent shares: a generator, a system instruction and
// the agent's own conversation.
type base struct {
	name   string
	system string
	gen    llm.Generator
	conv   *conversation.Conversation
	opts   options
}

func newBase(name, system string, gen llm.Generator, opts []Option) base {
	o := buildOptions(opts)
	return base{
		name:   name,
		system: system,
		gen:    gen,
		conv:   conversation.New(),
		opts:   o,
	}
}

// Name identifies the agent in logs and traces.
func (b *base) Name() string { return b.name }

// Transcript returns the agent's conversation so far.
func (b *base) Transcript() []conversation.Turn { return b.conv.Turns() }

// Started reports whether any turn has been recorded.
func (b *base) Started() bool { return !b.conv.Empty() }

func (b *base) redact(text string) string {
	if b.opts.redactor == nil {
		return text
	}
	return b.opts.redactor.Redact(text)
}

// exchange sends turns plus prompt to the generator. On success both the
// prompt and the reply are appended to the conversation; on failure the
// conversation is untouched so the caller can retry.
func (b *base) exchange(ctx context.Context, op, prompt string, budget int) (string, error) {
	turns := append(b.conv.Turns(), conversation.Turn{Role: conversation.RoleUser, Text: prompt})
	reply, err := b.generate(ctx, op, turns, budget)
	if err != nil {
		return "", err
	}
	b.conv.Append(conversation.RoleUser, prompt)
	b.conv.Append(conversation.RoleAssistant, reply)
	return reply, nil
}

// ask sends the conversation plus a synthesis instruction without recording
// either in the conversation.
func (b *base) ask(ctx context.Context, op, prompt string, budget int) (string, error) {
	turns := append(b.conv.Turns(), conversation.Turn{Role: conversation.RoleUser, Text: prompt})
	return b.generate(ctx, op, turns, budget)
}

func (b *base) generate(ctx context.Context, op string, turns []conversation.Turn, budget int) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, b.name+"."+op)
	defer span.End()
	span.SetAttributes(
		attribute.Int("tacit.turns", len(turns)),
		attribute.Int("tacit.max_tokens", budget),
	)

	start := b.opts.now()
	reply, err := b.gen.Generate(ctx, b.system, turns, budget)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.opts.logger.Error("generator call failed", append(logging.ContextFields(ctx),
			zap.String("agent", b.name),
			zap.String("op", op),
			zap.Error(err),
		)...)
		return "", err
	}

	b.opts.logger.Debug("generator call completed", append(logging.ContextFields(ctx),
		zap.String("agent", b.name),
		zap.String("op", op),
		zap.Int("turns", len(turns)),
		zap.Duration("elapsed", b.opts.now().Sub(start)),
	)...)
	return reply, nil
}

func (b *base) warnFallback(kind string, err error) {
	b.opts.logger.Warn("artifact synthesis fell back to placeholders",
		zap.String("agent", b.name),
		zap.String("artifact", kind),
		zap.Error(err),
	)
}
