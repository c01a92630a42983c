// Package report renders everything a session has produced as a markdown
// document or as a JSON, YAML or TOML dump keyed by phase name.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

// Format is an output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
)

// ParseFormat maps a user-supplied name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatYAML:
		return "application/yaml; charset=utf-8"
	case FormatTOML:
		return "application/toml; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension is the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Report is a snapshot of one session.
type Report struct {
	Status      orchestrator.Status
	Artifacts   map[orchestrator.Phase]artifact.Artifact
	Transcripts map[orchestrator.Phase][]conversation.Turn
	GeneratedAt time.Time
}

// Build snapshots o. Transcripts are included only when withTranscripts is set.
func Build(o *orchestrator.Orchestrator, withTranscripts bool, now time.Time) *Report {
	r := &Report{
		Status:      o.Status(),
		Artifacts:   o.AllArtifacts(),
		GeneratedAt: now,
	}
	if withTranscripts {
		r.Transcripts = make(map[orchestrator.Phase][]conversation.Turn)
		for _, p := range orchestrator.AllPhases() {
			if turns := o.Transcript(p); len(turns) > 0 {
				r.Transcripts[p] = turns
			}
		}
	}
	return r
}

// Write encodes r to w in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r.Document()); err != nil {
			return fmt.Errorf("encoding json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.Document()); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(r.Document()); err != nil {
			return fmt.Errorf("encoding toml report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

var sectionTitles = map[orchestrator.Phase]string{
	orchestrator.PhaseSocialization:   "경험 지도 (Experience Map)",
	orchestrator.PhaseExternalization: "암묵지 명세서 (Knowledge Spec)",
	orchestrator.PhaseCombination:     "비즈니스 기회 카드 (Business Card)",
	orchestrator.PhaseInternalization: "액션플랜 (Action Plan)",
}

// Markdown renders the full report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# SECI 지식 창조 리포트\n\n")
	fmt.Fprintf(&b, "- 나선: %d회차\n", r.Status.Spiral)
	fmt.Fprintf(&b, "- 현재 단계: %s\n", r.Status.PhaseName)
	fmt.Fprintf(&b, "- 장(Ba): %s\n", r.Status.BaDescription)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- 생성 시각: %s\n", r.GeneratedAt.Format(time.RFC3339))
	}

	n := 0
	for _, p := range orchestrator.AllPhases() {
		a, ok := r.Artifacts[p]
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&b, "\n## %d. %s: %s\n\n", n, p.DisplayName(), sectionTitles[p])
		if a.Degraded() {
			fmt.Fprintf(&b, "> 일부 항목은 해석하지 못해 '%s'로 표시되었습니다.\n\n", artifact.Unresolved)
		}
		b.WriteString(a.Markdown())
	}
	if n == 0 {
		b.WriteString("\n아직 만들어진 결과물이 없습니다.\n")
	}

	if len(r.Transcripts) > 0 {
		b.WriteString("\n## 대화 기록\n")
		for _, p := range orchestrator.AllPhases() {
			turns, ok := r.Transcripts[p]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n", p.DisplayName())
			b.WriteString(conversation.Markdown(turns))
		}
	}
	return b.String()
}
