package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lineup-runner/internal/batch"
	"lineup-runner/internal/model"
	"lineup-runner/internal/runstore"
)

const dashboardMaxEvents = 8

var (
	dashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dashMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dashErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dashOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dashPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type runStartedMsg struct {
	runID       string
	total       int
	concurrency int
}

type sessionStartedMsg struct {
	identifier string
	at         time.Time
}

type phaseChangedMsg struct {
	identifier string
	phase      string
}

type sessionFinishedMsg struct {
	outcome model.SessionOutcome
	step    string
	err     error
}

type runFinishedMsg struct {
	summary runstore.RunSummary
}

type runDoneMsg struct {
	err error
}

// dashboardObserver forwards batch events into the bubbletea program.
type dashboardObserver struct {
	send func(tea.Msg)
}

func (o dashboardObserver) RunStarted(runID string, total, concurrency int) {
	o.send(runStartedMsg{runID: runID, total: total, concurrency: concurrency})
}

func (o dashboardObserver) SessionStarted(identifier string) {
	o.send(sessionStartedMsg{identifier: identifier, at: time.Now()})
}

func (o dashboardObserver) PhaseChanged(identifier, phase string) {
	o.send(phaseChangedMsg{identifier: identifier, phase: phase})
}

func (o dashboardObserver) SessionFinished(outcome model.SessionOutcome, err error) {
	o.send(sessionFinishedMsg{outcome: outcome, step: batch.LastStep(outcome, err), err: err})
}

func (o dashboardObserver) RunFinished(summary runstore.RunSummary) {
	o.send(runFinishedMsg{summary: summary})
}

type activeSession struct {
	phase   string
	started time.Time
}

type dashboardModel struct {
	authProbe bool
	cancel    context.CancelFunc

	runID       string
	total       int
	concurrency int
	active      map[string]activeSession
	finished    int
	statuses    map[string]int
	events      []string

	summary  *runstore.RunSummary
	stopping bool
	done     bool
	width    int
	spinner  spinner.Model
	bar      progress.Model
}

func newDashboardModel(authProbe bool, cancel context.CancelFunc) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return dashboardModel{
		authProbe: authProbe,
		cancel:    cancel,
		active:    map[string]activeSession{},
		statuses:  map[string]int{},
		spinner:   s,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.stopping || m.cancel == nil {
				return m, tea.Quit
			}
			m.stopping = true
			m.cancel()
			m.pushEvent(dashMutedStyle.Render("stopping: waiting for open sessions to close (press again to quit)"))
		}
		return m, nil
	case runStartedMsg:
		m.runID = msg.runID
		m.total = msg.total
		m.concurrency = msg.concurrency
		return m, nil
	case sessionStartedMsg:
		m.active[msg.identifier] = activeSession{phase: "init", started: msg.at}
		return m, nil
	case phaseChangedMsg:
		if a, ok := m.active[msg.identifier]; ok {
			a.phase = msg.phase
			m.active[msg.identifier] = a
		}
		return m, nil
	case sessionFinishedMsg:
		delete(m.active, msg.outcome.Identifier)
		m.finished++
		m.statuses[msg.outcome.Status]++
		if msg.outcome.Failed() {
			text := "unknown"
			if msg.err != nil {
				text = msg.err.Error()
			}
			m.pushEvent(dashErrorStyle.Render("FAIL") + fmt.Sprintf(" %s: step=%s error=%s", msg.outcome.Identifier, msg.step, text))
		} else {
			m.pushEvent(dashOKStyle.Render("OK") + fmt.Sprintf(" %s (%s)", msg.outcome.Identifier, msg.outcome.Status))
		}
		return m, nil
	case runFinishedMsg:
		s := msg.summary
		m.summary = &s
		return m, nil
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *dashboardModel) pushEvent(line string) {
	m.events = append([]string{line}, m.events...)
	if len(m.events) > dashboardMaxEvents {
		m.events = m.events[:dashboardMaxEvents]
	}
}

func (m dashboardModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.finished) / float64(m.total)
}

func (m dashboardModel) View() string {
	mode := "full"
	if m.authProbe {
		mode = "auth probe"
	}
	header := dashTitleStyle.Render("lineup-runner") + dashMutedStyle.Render(fmt.Sprintf("  run %s | %s | concurrency %d", shortRunID(m.runID), mode, m.concurrency))

	counts := fmt.Sprintf("%d/%d done | success %d | test-success %d | fail %d",
		m.finished, m.total, m.statuses[model.StatusSuccess], m.statuses[model.StatusTestSuccess], m.statuses[model.StatusFail])
	bar := m.bar.ViewAs(m.percent()) + "  " + counts

	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var rows strings.Builder
	if len(ids) == 0 {
		rows.WriteString(dashMutedStyle.Render("(no active sessions)"))
	}
	for i, id := range ids {
		if i > 0 {
			rows.WriteString("\n")
		}
		a := m.active[id]
		elapsed := time.Since(a.started).Truncate(time.Second)
		rows.WriteString(fmt.Sprintf("%s %-24s %-12s %s", m.spinner.View(), id, a.phase, dashMutedStyle.Render(elapsed.String())))
	}

	parts := []string{header, bar, dashPanelStyle.Render(rows.String())}
	if len(m.events) > 0 {
		parts = append(parts, strings.Join(m.events, "\n"))
	}
	if m.summary != nil {
		parts = append(parts, fmt.Sprintf("done: %d success, %d test-success, %d fail; %d carried forward",
			m.summary.Statuses[model.StatusSuccess], m.summary.Statuses[model.StatusTestSuccess],
			m.summary.Statuses[model.StatusFail], m.summary.CarryForward))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
