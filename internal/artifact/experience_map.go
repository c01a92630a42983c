package artifact

import (
	"fmt"
	"slices"
)

// UserProfile is who the user is professionally.
type UserProfile struct {
	Role            string `json:"role" yaml:"role" toml:"role"`
	ExperienceYears string `json:"experience_years" yaml:"experience_years" toml:"experience_years"`
	Domain          string `json:"domain" yaml:"domain" toml:"domain"`
}

// Candidate is one area of tacit knowledge surfaced during socialization.
type Candidate struct {
	Area            string          `json:"area" yaml:"area" toml:"area"`
	Description     string          `json:"description" yaml:"description" toml:"description"`
	EmotionalWeight EmotionalWeight `json:"emotional_weight" yaml:"emotional_weight" toml:"emotional_weight"`
	Evidence        string          `json:"evidence" yaml:"evidence" toml:"evidence"`
}

// ExperienceMap is the output of the socialization phase.
type ExperienceMap struct {
	UserProfile      UserProfile `json:"user_profile" yaml:"user_profile" toml:"user_profile"`
	Candidates       []Candidate `json:"tacit_knowledge_candidates" yaml:"tacit_knowledge_candidates" toml:"tacit_knowledge_candidates"`
	RecommendedFocus string      `json:"recommended_focus" yaml:"recommended_focus" toml:"recommended_focus"`

	degraded bool
}

var _ Artifact = (*ExperienceMap)(nil)

func (m *ExperienceMap) Kind() Kind     { return KindExperienceMap }
func (m *ExperienceMap) Degraded() bool { return m.degraded }

// Clone returns a copy that shares no lists with m.
func (m *ExperienceMap) Clone() *ExperienceMap {
	if m == nil {
		return nil
	}
	c := *m
	c.Candidates = slices.Clone(m.Candidates)
	return &c
}

func (m *ExperienceMap) Normalize() {
	if m.Candidates == nil {
		m.Candidates = []Candidate{}
	}
}

func (m *ExperienceMap) Validate() error {
	for i, c := range m.Candidates {
		if !c.EmotionalWeight.Valid() {
			return &ValidationError{
				Field:  fmt.Sprintf("tacit_knowledge_candidates[%d].emotional_weight", i),
				Reason: fmt.Sprintf("unknown tier %q", c.EmotionalWeight),
			}
		}
	}
	return nil
}

// Focus returns the area the externalization dialogue should dig into: the
// first candidate with high emotional weight, else the first candidate.
// It returns the recommended focus when there are no candidates.
func (m *ExperienceMap) Focus() string {
	for _, c := range m.Candidates {
		if c.EmotionalWeight == WeightHigh {
			return c.Area
		}
	}
	if len(m.Candidates) > 0 {
		return m.Candidates[0].Area
	}
	return m.RecommendedFocus
}

// FallbackExperienceMap returns a map populated with placeholders.
func FallbackExperienceMap() *ExperienceMap {
	return &ExperienceMap{
		UserProfile: UserProfile{
			Role:            Unresolved,
			ExperienceYears: Unresolved,
			Domain:          Unresolved,
		},
		Candidates: []Candidate{{
			Area:            Unresolved,
			Description:     Unresolved,
			EmotionalWeight: WeightMedium,
			Evidence:        Unresolved,
		}},
		RecommendedFocus: Unresolved,
		degraded:         true,
	}
}
