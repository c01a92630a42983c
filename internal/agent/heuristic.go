package agent

import (
	"strings"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
)

// Gate is the completion heuristic for a conversational phase: enough turns
// have been exchanged and enough distinct keywords appear in the joined text.
// Keywords match by substring.
type Gate struct {
	MinTurns  int
	Keywords  []string
	Threshold int
}

// SocializationGate looks for talk about the user's work and pride in it.
func SocializationGate() Gate {
	return Gate{
		MinTurns:  10,
		Keywords:  []string{"직업", "일", "경험", "노하우", "잘하", "자부심", "후배", "동료"},
		Threshold: 4,
	}
}

// ExternalizationGate looks for articulated rules, signals and metaphors.
func ExternalizationGate() Gate {
	return Gate{
		MinTurns:  12,
		Keywords:  []string{"규칙", "패턴", "판단", "기준", "신호", "느낌", "비유", "은유", "예외", "실수", "초보", "경험"},
		Threshold: 5,
	}
}

// Complete evaluates the gate over a full turn log.
func (g Gate) Complete(turns []conversation.Turn) bool {
	if len(turns) < g.MinTurns {
		return false
	}
	return g.hits(conversation.JoinText(turns)) >= g.Threshold
}

func (g Gate) hits(text string) int {
	n := 0
	for _, kw := range g.Keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// Tracker evaluates a Gate incrementally as turns arrive. Turns are joined
// with a space and keywords contain none, so a keyword can never span two
// turns and per-turn matching agrees with Gate.Complete.
type Tracker struct {
	gate  Gate
	turns int
	found map[string]struct{}
}

// NewTracker starts an empty tracker for g.
func NewTracker(g Gate) *Tracker {
	return &Tracker{gate: g, found: make(map[string]struct{})}
}

// Observe records one turn's text.
func (t *Tracker) Observe(text string) {
	t.turns++
	for _, kw := range t.gate.Keywords {
		if _, ok := t.found[kw]; ok {
			continue
		}
		if strings.Contains(text, kw) {
			t.found[kw] = struct{}{}
		}
	}
}

// Found returns how many distinct keywords have been seen.
func (t *Tracker) Found() int {
	return len(t.found)
}

// Complete reports whether the gate is satisfied.
func (t *Tracker) Complete() bool {
	return t.turns >= t.gate.MinTurns && len(t.found) >= t.gate.Threshold
}

// Reset forgets every observed turn.
func (t *Tracker) Reset() {
	t.turns = 0
	t.found = make(map[string]struct{})
}
