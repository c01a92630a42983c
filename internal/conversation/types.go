package conversation

import (
	"strings"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single utterance.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an ordered, append-only list of turns.
// It is not safe for concurrent use; callers serialize access per session.
type Conversation struct {
	turns []Turn
	now   func() time.Time
}

// New returns an empty conversation.
func New() *Conversation {
	return &Conversation{now: time.Now}
}

// Append adds a turn to the end of the log.
func (c *Conversation) Append(role Role, text string) Turn {
	if c.now == nil {
		c.now = time.Now
	}
	t := Turn{Role: role, Text: text, Timestamp: c.now()}
	c.turns = append(c.turns, t)
	return t
}

// Turns returns a copy of the turn log in order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the total number of turns from both sides.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Count returns the number of turns produced by role.
func (c *Conversation) Count(role Role) int {
	n := 0
	for _, t := range c.turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

// Empty reports whether no turn has been recorded.
func (c *Conversation) Empty() bool {
	return len(c.turns) == 0
}

// Reset discards every turn.
func (c *Conversation) Reset() {
	c.turns = nil
}

// Text joins every turn's text with a single space.
func (c *Conversation) Text() string {
	return JoinText(c.turns)
}

// JoinText joins turn texts with a single space.
func JoinText(turns []Turn) string {
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
