package orchestrator

import "github.com/fyrsmithlabs/tacit/internal/artifact"

// The require helpers enforce the handoff chain: a phase may only run once
// its predecessor's artifact is in place.

func (o *Orchestrator) requireExperienceMap() *artifact.ExperienceMap {
	if o.state.ExperienceMap == nil {
		panic(&PreconditionError{Phase: o.state.Phase, Missing: artifact.KindExperienceMap})
	}
	return o.state.ExperienceMap
}

func (o *Orchestrator) requireKnowledgeSpec() *artifact.KnowledgeSpec {
	if o.state.KnowledgeSpec == nil {
		panic(&PreconditionError{Phase: o.state.Phase, Missing: artifact.KindKnowledgeSpec})
	}
	return o.state.KnowledgeSpec
}

func (o *Orchestrator) requireBusinessCard() *artifact.BusinessCard {
	if o.state.BusinessCard == nil {
		panic(&PreconditionError{Phase: o.state.Phase, Missing: artifact.KindBusinessCard})
	}
	return o.state.BusinessCard
}
