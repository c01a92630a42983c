package secrets

import (
	"regexp"

	gitleaksconfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksregexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Finding is one detected secret.
type Finding struct {
	RuleID string
	Line   int
	Match  string
}

// Detect scans content with the gitleaks default rules. A fresh detector is
// built per call because gitleaks detectors accumulate findings internally.
func Detect(content string, allow *Allowlist) ([]Finding, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, err
	}
	if allow != nil && len(allow.Regexes) > 0 {
		applyAllowlist(&detector.Config, allow)
	}

	found := detector.DetectString(content)
	out := make([]Finding, 0, len(found))
	for _, f := range found {
		out = append(out, Finding{RuleID: f.RuleID, Line: f.StartLine, Match: f.Secret})
	}
	return out, nil
}

// applyAllowlist adds allow's patterns as a global gitleaks allowlist. The
// patterns were validated by LoadAllowlist.
func applyAllowlist(cfg *gitleaksconfig.Config, allow *Allowlist) {
	global := &gitleaksconfig.Allowlist{Description: "tacit allowlist"}
	for _, pattern := range allow.Regexes {
		re := regexp.MustCompile(pattern)
		global.Regexes = append(global.Regexes, (*gitleaksregexp.Regexp)(re))
	}
	cfg.Allowlists = append(cfg.Allowlists, global)
}
