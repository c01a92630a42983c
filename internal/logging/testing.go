package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger keeps every entry, down to Trace, in memory.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

func NewTestLogger() *TestLogger {
	core, observed := observer.New(TraceLevel)
	return &TestLogger{
		Logger:   &Logger{zap: zap.New(core), config: NewDefaultConfig()},
		observed: observed,
	}
}

func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

// Fields returns the context of the first entry logged as msg, or nil.
func (t *TestLogger) Fields(msg string) map[string]any {
	entries := t.observed.FilterMessage(msg).All()
	if len(entries) == 0 {
		return nil
	}
	return entries[0].ContextMap()
}

// Reset drops everything recorded so far.
func (t *TestLogger) Reset() {
	t.observed.TakeAll()
}

// AssertLogged fails unless an entry at level contains msgContains.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	found := t.observed.Filter(func(e observer.LoggedEntry) bool {
		return e.Level == level && strings.Contains(e.Message, msgContains)
	})
	if found.Len() == 0 {
		tb.Errorf("no %s entry containing %q among %d", levelName(level), msgContains, t.observed.Len())
	}
}
