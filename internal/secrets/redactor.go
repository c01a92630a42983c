package secrets

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Config controls redaction.
type Config struct {
	Enabled       bool
	AllowlistPath string
}

// Redactor replaces detected secrets with markers.
type Redactor struct {
	enabled bool
	allow   *Allowlist
	logger  *zap.Logger
}

// New builds a Redactor, loading the allowlist named in cfg.
func New(cfg Config, logger *zap.Logger) (*Redactor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow, err := LoadAllowlist(cfg.AllowlistPath)
	if err != nil {
		return nil, fmt.Errorf("loading allowlist: %w", err)
	}
	return &Redactor{enabled: cfg.Enabled, allow: allow, logger: logger}, nil
}

// Enabled reports whether redaction is active.
func (r *Redactor) Enabled() bool {
	return r.enabled
}

// Redact returns text with every detected secret replaced. If detection
// itself fails the text is returned unchanged and the failure is logged.
func (r *Redactor) Redact(text string) string {
	if !r.enabled || text == "" {
		return text
	}

	findings, err := Detect(text, r.allow)
	if err != nil {
		r.logger.Error("secret detection failed", zap.Error(err))
		return text
	}
	if len(findings) == 0 {
		return text
	}

	rules := make([]string, 0, len(findings))
	for _, f := range findings {
		rules = append(rules, f.RuleID)
	}
	r.logger.Warn("redacted secrets from user message",
		zap.Int("count", len(findings)),
		zap.Strings("rules", rules),
	)
	return replace(text, findings)
}

// replace substitutes longer matches first so a secret that contains
// another is not split.
func replace(text string, findings []Finding) string {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Match) > len(sorted[j].Match)
	})

	for _, f := range sorted {
		if f.Match == "" {
			continue
		}
		text = strings.ReplaceAll(text, f.Match, fmt.Sprintf("[REDACTED:%s]", f.RuleID))
	}
	return text
}
