package report

import (
	"time"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

// Document is the structured form of a report. Artifacts are keyed by the
// phase that produced them.
type Document struct {
	Spiral      int       `json:"spiral" yaml:"spiral" toml:"spiral"`
	Phase       string    `json:"phase" yaml:"phase" toml:"phase"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Degraded    []string  `json:"degraded,omitempty" yaml:"degraded,omitempty" toml:"degraded,omitempty"`

	Socialization   *artifact.ExperienceMap `json:"socialization,omitempty" yaml:"socialization,omitempty" toml:"socialization,omitempty"`
	Externalization *artifact.KnowledgeSpec `json:"externalization,omitempty" yaml:"externalization,omitempty" toml:"externalization,omitempty"`
	Combination     *artifact.BusinessCard  `json:"combination,omitempty" yaml:"combination,omitempty" toml:"combination,omitempty"`
	Internalization *artifact.ActionPlan    `json:"internalization,omitempty" yaml:"internalization,omitempty" toml:"internalization,omitempty"`

	Transcripts map[string][]Entry `json:"transcripts,omitempty" yaml:"transcripts,omitempty" toml:"transcripts,omitempty"`
}

// Entry is one transcript turn.
type Entry struct {
	Role string    `json:"role" yaml:"role" toml:"role"`
	Text string    `json:"text" yaml:"text" toml:"text"`
	At   time.Time `json:"at" yaml:"at" toml:"at"`
}

// Document converts r to its structured form.
func (r *Report) Document() Document {
	d := Document{
		Spiral:      r.Status.Spiral,
		Phase:       string(r.Status.Phase),
		GeneratedAt: r.GeneratedAt.UTC(),
	}

	for _, p := range orchestrator.AllPhases() {
		a, ok := r.Artifacts[p]
		if !ok {
			continue
		}
		if a.Degraded() {
			d.Degraded = append(d.Degraded, string(p))
		}
		switch v := a.(type) {
		case *artifact.ExperienceMap:
			d.Socialization = v
		case *artifact.KnowledgeSpec:
			d.Externalization = v
		case *artifact.BusinessCard:
			d.Combination = v
		case *artifact.ActionPlan:
			d.Internalization = v
		}
	}

	if len(r.Transcripts) > 0 {
		d.Transcripts = make(map[string][]Entry, len(r.Transcripts))
		for p, turns := range r.Transcripts {
			d.Transcripts[string(p)] = entries(turns)
		}
	}
	return d
}

func entries(turns []conversation.Turn) []Entry {
	out := make([]Entry, len(turns))
	for i, t := range turns {
		out[i] = Entry{Role: string(t.Role), Text: t.Text, At: t.Timestamp.UTC()}
	}
	return out
}
