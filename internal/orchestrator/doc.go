// Package orchestrator drives a session through the knowledge-creation
// spiral.
//
// The spiral has four working phases followed by a terminal phase:
//
//	socialization -> externalization -> combination -> internalization -> complete
//
// Each working phase is hosted in its own Ba, the shared context in which
// that kind of knowledge conversion happens. The orchestrator owns the phase
// pointer, the four artifact slots and one agent per phase. It routes user
// messages to the current agent, triggers artifact synthesis when a phase
// finishes and hands each artifact to the next phase.
//
// The phase pointer only moves forward, one step at a time. Reset and Restart
// are the only ways back to socialization.
//
// An Orchestrator is not safe for concurrent use. Callers that share one
// across goroutines must serialize access, as the session registry does.
package orchestrator
