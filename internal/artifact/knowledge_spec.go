package artifact

import "slices"

// KnowledgeSpec is the output of the externalization phase: one piece of
// tacit knowledge written down so another person could learn it.
type KnowledgeSpec struct {
	Name                string     `json:"knowledge_name" yaml:"knowledge_name" toml:"knowledge_name"`
	Summary             string     `json:"summary" yaml:"summary" toml:"summary"`
	DetailedDescription string     `json:"detailed_description" yaml:"detailed_description" toml:"detailed_description"`
	TriggerSignals      []string   `json:"trigger_signals" yaml:"trigger_signals" toml:"trigger_signals"`
	DecisionRules       []string   `json:"decision_rules" yaml:"decision_rules" toml:"decision_rules"`
	Exceptions          []string   `json:"exceptions" yaml:"exceptions" toml:"exceptions"`
	Metaphor            string     `json:"metaphor" yaml:"metaphor" toml:"metaphor"`
	SensoryCues         []string   `json:"sensory_cues" yaml:"sensory_cues" toml:"sensory_cues"`
	CommonMistakes      []string   `json:"common_mistakes" yaml:"common_mistakes" toml:"common_mistakes"`
	TransferDifficulty  Difficulty `json:"transfer_difficulty" yaml:"transfer_difficulty" toml:"transfer_difficulty"`
	TransferMethod      string     `json:"transfer_method" yaml:"transfer_method" toml:"transfer_method"`
	EvidenceQuotes      []string   `json:"evidence_quotes" yaml:"evidence_quotes" toml:"evidence_quotes"`

	degraded bool
}

var _ Artifact = (*KnowledgeSpec)(nil)

func (s *KnowledgeSpec) Kind() Kind     { return KindKnowledgeSpec }
func (s *KnowledgeSpec) Degraded() bool { return s.degraded }

// Clone returns a copy that shares no lists with s.
func (s *KnowledgeSpec) Clone() *KnowledgeSpec {
	if s == nil {
		return nil
	}
	c := *s
	c.TriggerSignals = slices.Clone(s.TriggerSignals)
	c.DecisionRules = slices.Clone(s.DecisionRules)
	c.Exceptions = slices.Clone(s.Exceptions)
	c.SensoryCues = slices.Clone(s.SensoryCues)
	c.CommonMistakes = slices.Clone(s.CommonMistakes)
	c.EvidenceQuotes = slices.Clone(s.EvidenceQuotes)
	return &c
}

func (s *KnowledgeSpec) Normalize() {
	s.TriggerSignals = orEmpty(s.TriggerSignals)
	s.DecisionRules = orEmpty(s.DecisionRules)
	s.Exceptions = orEmpty(s.Exceptions)
	s.SensoryCues = orEmpty(s.SensoryCues)
	s.CommonMistakes = orEmpty(s.CommonMistakes)
	s.EvidenceQuotes = orEmpty(s.EvidenceQuotes)
}

func (s *KnowledgeSpec) Validate() error {
	if !s.TransferDifficulty.Valid() {
		return &ValidationError{Field: "transfer_difficulty", Reason: "must be one of 상, 중, 하"}
	}
	return nil
}

// FallbackKnowledgeSpec returns a specification populated with placeholders.
func FallbackKnowledgeSpec() *KnowledgeSpec {
	return &KnowledgeSpec{
		Name:                Unresolved,
		Summary:             Unresolved,
		DetailedDescription: Unresolved,
		TriggerSignals:      []string{Unresolved},
		DecisionRules:       []string{Unresolved},
		Exceptions:          []string{Unresolved},
		Metaphor:            Unresolved,
		SensoryCues:         []string{Unresolved},
		CommonMistakes:      []string{Unresolved},
		TransferDifficulty:  DifficultyMedium,
		TransferMethod:      Unresolved,
		EvidenceQuotes:      []string{Unresolved},
		degraded:            true,
	}
}
