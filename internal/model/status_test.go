package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestCanTransition_AllowsExpectedPaths(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{"", PhaseAuthenticate},
		{PhaseAuthenticate, PhaseNavigate},
		{PhaseNavigate, PhaseConfigure},
		{PhaseNavigate, PhaseDone},
		{PhaseConfigure, PhaseConfirm},
		{PhaseConfirm, PhaseDone},
		{PhaseConfigure, PhaseFailed},
		{"", PhaseFailed},
	}

	for _, tc := range cases {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransition_RejectsSkippedPhases(t *testing.T) {
	cases := []struct {
		from string
		to   string
	}{
		{"", PhaseNavigate},
		{PhaseAuthenticate, PhaseConfigure},
		{PhaseConfigure, PhaseDone},
		{PhaseDone, PhaseAuthenticate},
		{PhaseFailed, PhaseNavigate},
		{"not_a_phase", PhaseDone},
	}

	for _, tc := range cases {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be rejected", tc.from, tc.to)
		}
	}
}

func TestTransitionPhase_BlocksIllegalTransition(t *testing.T) {
	state := SessionState{Identifier: "user-1", Phase: PhaseAuthenticate, Step: StepInit}

	if err := TransitionPhase(&state, PhaseConfirm); err == nil {
		t.Fatalf("expected illegal transition error")
	}
	if state.Phase != PhaseAuthenticate {
		t.Fatalf("phase changed on rejected transition: %q", state.Phase)
	}
	if err := TransitionPhase(&state, PhaseNavigate); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if state.Phase != PhaseNavigate {
		t.Fatalf("expected navigate, got %q", state.Phase)
	}
}

func TestStepErrorClassifiesThroughWrapping(t *testing.T) {
	base := Timeout("login_form", errors.New("deadline"))
	wrapped := fmt.Errorf("authenticate: %w", base)

	if !IsKind(wrapped, KindTimeout) {
		t.Fatalf("expected timeout kind, got %q", KindOf(wrapped))
	}
	if got := LabelOf(wrapped); got != "login_form" {
		t.Fatalf("expected label login_form, got %q", got)
	}
	if got := LabelOf(errors.New("plain")); got != "error" {
		t.Fatalf("expected fallback label, got %q", got)
	}
	if IsKind(nil, KindTimeout) {
		t.Fatalf("nil error must not classify")
	}
}
