package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"lineup-runner/internal/model"
	"lineup-runner/internal/runstore"
)

func step(t *testing.T, m dashboardModel, msg tea.Msg) (dashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	dm, ok := next.(dashboardModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return dm, cmd
}

func TestDashboardTracksSessions(t *testing.T) {
	m := newDashboardModel(false, nil)
	m, _ = step(t, m, runStartedMsg{runID: "0123456789abcdef", total: 2, concurrency: 2})
	m, _ = step(t, m, sessionStartedMsg{identifier: "user1"})
	m, _ = step(t, m, sessionStartedMsg{identifier: "user2"})
	m, _ = step(t, m, phaseChangedMsg{identifier: "user1", phase: "navigate"})

	if got := m.active["user1"].phase; got != "navigate" {
		t.Fatalf("expected user1 in navigate, got %q", got)
	}
	view := m.View()
	if !strings.Contains(view, "01234567") || !strings.Contains(view, "user2") {
		t.Fatalf("view missing run id or session:\n%s", view)
	}

	m, _ = step(t, m, sessionFinishedMsg{
		outcome: model.SessionOutcome{Identifier: "user1", Status: model.StatusSuccess, Step: "contest_joined"},
	})
	m, _ = step(t, m, sessionFinishedMsg{
		outcome: model.SessionOutcome{Identifier: "user2", Status: model.StatusFail},
		step:    "init",
		err:     errors.New("authentication: login_failed"),
	})
	if len(m.active) != 0 || m.finished != 2 {
		t.Fatalf("expected all sessions finished, active=%d finished=%d", len(m.active), m.finished)
	}
	if m.percent() != 1 {
		t.Fatalf("expected full progress, got %v", m.percent())
	}
	view = m.View()
	if !strings.Contains(view, "user2: step=init error=authentication: login_failed") {
		t.Fatalf("failure line missing:\n%s", view)
	}
	if !strings.Contains(view, "user1 (success)") {
		t.Fatalf("success line missing:\n%s", view)
	}

	m, _ = step(t, m, runFinishedMsg{summary: runstore.RunSummary{
		Statuses:     map[string]int{model.StatusSuccess: 1, model.StatusFail: 1},
		CarryForward: 1,
	}})
	if !strings.Contains(m.View(), "1 carried forward") {
		t.Fatalf("summary line missing:\n%s", m.View())
	}

	m, cmd := step(t, m, runDoneMsg{})
	if !m.done || cmd == nil {
		t.Fatal("run completion should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit command")
	}
}

func TestDashboardFirstInterruptCancelsRun(t *testing.T) {
	cancelled := 0
	m := newDashboardModel(false, func() { cancelled++ })

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cancelled != 1 || !m.stopping {
		t.Fatalf("first ctrl+c should cancel, cancelled=%d stopping=%t", cancelled, m.stopping)
	}
	if cmd != nil {
		t.Fatal("first ctrl+c must keep the dashboard running")
	}

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if cancelled != 1 {
		t.Fatalf("cancel called %d times", cancelled)
	}
}

func TestDashboardEventListIsBounded(t *testing.T) {
	m := newDashboardModel(true, nil)
	for i := 0; i < dashboardMaxEvents+4; i++ {
		m, _ = step(t, m, sessionFinishedMsg{outcome: model.SessionOutcome{Identifier: "u", Status: model.StatusTestSuccess}})
	}
	if len(m.events) != dashboardMaxEvents {
		t.Fatalf("expected %d events, got %d", dashboardMaxEvents, len(m.events))
	}
	if !strings.Contains(m.View(), "auth probe") {
		t.Fatal("auth probe mode should be shown")
	}
}
