package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/tacit/internal/artifact"
)

// Phase is a stage of the spiral.
type Phase string

const (
	PhaseSocialization   Phase = "socialization"
	PhaseExternalization Phase = "externalization"
	PhaseCombination     Phase = "combination"
	PhaseInternalization Phase = "internalization"
	PhaseComplete        Phase = "complete"
)

// AllPhases returns every phase in spiral order.
func AllPhases() []Phase {
	return []Phase{PhaseSocialization, PhaseExternalization, PhaseCombination, PhaseInternalization, PhaseComplete}
}

// Index returns the position of p in AllPhases, or -1.
func (p Phase) Index() int {
	for i, phase := range AllPhases() {
		if phase == p {
			return i
		}
	}
	return -1
}

// Next returns the following phase. Complete is its own successor.
func (p Phase) Next() Phase {
	phases := AllPhases()
	i := p.Index()
	if i < 0 || i == len(phases)-1 {
		return p
	}
	return phases[i+1]
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

var phaseNames = map[Phase]string{
	PhaseSocialization:   "사회화 (Socialization)",
	PhaseExternalization: "표출화 (Externalization)",
	PhaseCombination:     "연결화 (Combination)",
	PhaseInternalization: "내면화 (Internalization)",
	PhaseComplete:        "완료",
}

var phaseDescriptions = map[Phase]string{
	PhaseSocialization:   "암묵지 → 암묵지: 경험과 감정을 나누며 암묵지가 숨어 있는 영역을 찾습니다.",
	PhaseExternalization: "암묵지 → 형식지: 질문과 비유로 말하지 못했던 지식을 언어로 꺼냅니다.",
	PhaseCombination:     "형식지 → 형식지: 명문화된 지식을 비즈니스 기회와 연결합니다.",
	PhaseInternalization: "형식지 → 암묵지: 지식을 이번 주에 실행할 계획으로 바꿉니다.",
	PhaseComplete:        "SECI 나선 한 바퀴가 완료되었습니다.",
}

// DisplayName is the human-readable phase name.
func (p Phase) DisplayName() string { return phaseNames[p] }

// Description explains the conversion that happens in p.
func (p Phase) Description() string { return phaseDescriptions[p] }

// Ba is the shared context hosting a phase.
type Ba string

const (
	BaOriginating Ba = "originating"
	BaDialoguing  Ba = "dialoguing"
	BaSystemising Ba = "systemising"
	BaExercising  Ba = "exercising"
)

var baDescriptions = map[Ba]string{
	BaOriginating: "창발의 장 (Originating Ba): 공감과 경험 공유의 공간",
	BaDialoguing:  "대화의 장 (Dialoguing Ba): 대화를 통한 개념화의 공간",
	BaSystemising: "시스템화의 장 (Systemising Ba): 지식 조합과 문서화의 공간",
	BaExercising:  "실천의 장 (Exercising Ba): 실행과 체화의 공간",
}

// Description is the human-readable Ba description.
func (b Ba) Description() string { return baDescriptions[b] }

// Ba returns the context hosting p. Complete maps to originating, where the
// next spiral begins.
func (p Phase) Ba() Ba {
	switch p {
	case PhaseExternalization:
		return BaDialoguing
	case PhaseCombination:
		return BaSystemising
	case PhaseInternalization:
		return BaExercising
	default:
		return BaOriginating
	}
}

// Status is a snapshot of where the session stands.
type Status struct {
	Phase            Phase   `json:"phase"`
	PhaseName        string  `json:"phase_name"`
	PhaseDescription string  `json:"phase_description"`
	Ba               Ba      `json:"ba"`
	BaDescription    string  `json:"ba_description"`
	Spiral           int     `json:"spiral"`
	Progress         float64 `json:"progress"`
}

func statusOf(p Phase, spiral int) Status {
	ba := p.Ba()
	return Status{
		Phase:            p,
		PhaseName:        p.DisplayName(),
		PhaseDescription: p.Description(),
		Ba:               ba,
		BaDescription:    ba.Description(),
		Spiral:           spiral,
		Progress:         float64(p.Index()) / float64(len(AllPhases())-1),
	}
}

// SubmitResult is the outcome of Submit or ForceAdvance.
type SubmitResult struct {
	Response     string            `json:"response"`
	PhaseChanged bool              `json:"phase_changed"`
	Status       Status            `json:"status"`
	Degraded     bool              `json:"degraded"`
	Artifact     artifact.Artifact `json:"-"`
}

// TransitionKind distinguishes forward moves from resets.
type TransitionKind string

const (
	TransitionAdvance TransitionKind = "advance"
	TransitionReset   TransitionKind = "reset"
	TransitionRestart TransitionKind = "restart"
)

// Transition describes a change of the phase pointer.
type Transition struct {
	Kind     TransitionKind
	From     Phase
	To       Phase
	Spiral   int
	Forced   bool
	Artifact artifact.Artifact
	Degraded bool
	At       time.Time
}

// TransitionFunc observes transitions. It runs synchronously on the calling
// goroutine and must not call back into the orchestrator.
type TransitionFunc func(Transition)

var (
	// ErrEmptyMessage is returned when a conversational phase receives
	// blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrPhaseComplete is returned by ForceAdvance once the spiral is done.
	ErrPhaseComplete = errors.New("spiral is already complete")
)

// PreconditionError reports that a phase was entered without the artifact
// handed over by its predecessor. The orchestrator panics with it because the
// state can only arise from a programming error.
type PreconditionError struct {
	Phase   Phase
	Missing artifact.Kind
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("phase %s entered without %s", e.Phase, e.Missing)
}
