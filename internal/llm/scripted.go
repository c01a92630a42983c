package llm

import (
	"context"
	"sync"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
)

// Call records one request made to a Scripted generator.
type Call struct {
	System    string
	Turns     []conversation.Turn
	MaxTokens int
}

// Scripted replays canned replies in order. When the script runs out it
// answers with Default. Safe for concurrent use.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	errs    map[int]error
	calls   []Call

	// Default is returned once the script is exhausted.
	Default string
}

var _ Generator = (*Scripted)(nil)

// NewScripted returns a generator that answers with replies in order.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{
		replies: replies,
		errs:    make(map[int]error),
		Default: "조금 더 자세히 이야기해 주시겠어요?",
	}
}

// Push appends replies to the script.
func (s *Scripted) Push(replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// FailOn makes the n-th call (zero-based) return err.
func (s *Scripted) FailOn(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[n] = err
}

// Calls returns every request received so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// LastCall returns the most recent request.
func (s *Scripted) LastCall() (Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return Call{}, false
	}
	return s.calls[len(s.calls)-1], true
}

func (s *Scripted) Generate(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	copied := make([]conversation.Turn, len(turns))
	copy(copied, turns)
	s.calls = append(s.calls, Call{System: system, Turns: copied, MaxTokens: maxTokens})

	if err, ok := s.errs[n]; ok {
		return "", err
	}
	if len(s.replies) == 0 {
		return s.Default, nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}
