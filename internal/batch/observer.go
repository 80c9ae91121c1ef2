package batch

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"lineup-runner/internal/model"
	"lineup-runner/internal/runstore"
)

// Observer receives run progress. Calls arrive from session goroutines and
// must be safe for concurrent use.
type Observer interface {
	RunStarted(runID string, total, concurrency int)
	SessionStarted(identifier string)
	PhaseChanged(identifier, phase string)
	SessionFinished(outcome model.SessionOutcome, err error)
	RunFinished(summary runstore.RunSummary)
}

// ConsoleObserver prints one line per session event.
type ConsoleObserver struct {
	Out     io.Writer
	Verbose bool

	mu sync.Mutex
}

func (c *ConsoleObserver) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, format, args...)
}

func (c *ConsoleObserver) RunStarted(runID string, total, concurrency int) {
	c.printf("run %s: %d sessions, concurrency %d\n", runID, total, concurrency)
}

func (c *ConsoleObserver) SessionStarted(identifier string) {
	if c.Verbose {
		c.printf("start %s\n", identifier)
	}
}

func (c *ConsoleObserver) PhaseChanged(identifier, phase string) {
	if c.Verbose {
		c.printf("  %s -> %s\n", identifier, phase)
	}
}

func (c *ConsoleObserver) SessionFinished(o model.SessionOutcome, err error) {
	if o.Failed() {
		msg := "unknown"
		if err != nil {
			msg = err.Error()
		}
		c.printf("FAIL %s: step=%s error=%s\n", o.Identifier, LastStep(o, err), msg)
		return
	}
	c.printf("OK %s (%s)\n", o.Identifier, o.Status)
}

func (c *ConsoleObserver) RunFinished(s runstore.RunSummary) {
	c.printf("done: %d success, %d test-success, %d fail; %d carried forward\n",
		s.Statuses[model.StatusSuccess], s.Statuses[model.StatusTestSuccess], s.Statuses[model.StatusFail], s.CarryForward)
}

// LastStep is the last step marker a session completed before it stopped.
func LastStep(o model.SessionOutcome, err error) string {
	var se *SessionError
	if errors.As(err, &se) && se.Step != "" {
		return se.Step
	}
	return o.Step
}

type nopObserver struct{}

func (nopObserver) RunStarted(string, int, int) {}
func (nopObserver) SessionStarted(string) {}
func (nopObserver) PhaseChanged(string, string) {}
func (nopObserver) SessionFinished(model.SessionOutcome, error) {}
func (nopObserver) RunFinished(runstore.RunSummary) {}
