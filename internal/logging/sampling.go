package logging

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core so each configured level is sampled with its own
// budget. Levels without a budget, and Error and above, always pass.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	budgets := make(map[zapcore.Level]LevelSamplingConfig, len(cfg.Levels))
	for name, s := range cfg.Levels {
		lvl, err := LevelFromString(name)
		if err != nil || lvl >= zapcore.ErrorLevel {
			continue
		}
		budgets[lvl] = s
	}
	if len(budgets) == 0 {
		return core
	}

	levels := make([]zapcore.Level, 0, len(budgets))
	for lvl := range budgets {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	cores := make([]zapcore.Core, 0, len(levels)+1)
	for _, lvl := range levels {
		s := budgets[lvl]
		band := &levelFilterCore{Core: core, accept: func(l zapcore.Level) bool { return l == lvl }}
		cores = append(cores, zapcore.NewSamplerWithOptions(band, cfg.Tick.Duration(), s.Initial, s.Thereafter))
	}
	cores = append(cores, &levelFilterCore{Core: core, accept: func(l zapcore.Level) bool {
		_, sampled := budgets[l]
		return !sampled
	}})
	return zapcore.NewTee(cores...)
}

// levelFilterCore passes only the levels accept allows.
type levelFilterCore struct {
	zapcore.Core
	accept func(zapcore.Level) bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.accept(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.accept(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that keeps the filter.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), accept: c.accept}
}
