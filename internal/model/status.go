package model

import "fmt"

const (
	StatusSuccess     = "success"
	StatusTestSuccess = "test-success"
	StatusFail        = "fail"
)

const (
	PhaseAuthenticate = "authenticate"
	PhaseNavigate     = "navigate"
	PhaseConfigure    = "configure"
	PhaseConfirm      = "confirm"
	PhaseDone         = "done"
	PhaseFailed       = "failed"
)

// Step markers record the last milestone a session reached.
const (
	StepInit          = "init"
	StepLoginDone     = "login_done"
	StepMatchOpened   = "match_opened"
	StepTeamCreated   = "team_created"
	StepContestJoined = "contest_joined"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		PhaseAuthenticate: true,
		PhaseFailed:       true,
	},
	PhaseAuthenticate: {
		PhaseNavigate: true,
		PhaseFailed:   true,
	},
	PhaseNavigate: {
		PhaseConfigure: true,
		PhaseDone:      true, // auth probe stops after navigation
		PhaseFailed:    true,
	},
	PhaseConfigure: {
		PhaseConfirm: true,
		PhaseFailed:  true,
	},
	PhaseConfirm: {
		PhaseDone:   true,
		PhaseFailed: true,
	},
	PhaseDone:   {},
	PhaseFailed: {},
}

// SessionState is owned by exactly one session runner.
type SessionState struct {
	Identifier string
	Phase      string
	Step       string
}

func IsKnownPhase(phase string) bool {
	_, ok := allowedTransitions[phase]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionPhase(state *SessionState, to string) error {
	from := state.Phase
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid phase transition: %q -> %q (identifier=%s step=%s)", from, to, state.Identifier, state.Step)
	}
	state.Phase = to
	return nil
}

func IsTerminal(phase string) bool {
	return phase == PhaseDone || phase == PhaseFailed
}
