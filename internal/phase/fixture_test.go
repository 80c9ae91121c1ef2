package phase

import (
	"fmt"
	"strings"
	"sync"

	"lineup-runner/internal/model"
)

type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (l *logSink) logf(format string, args ...any) {
	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *logSink) contains(fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

func newTestExecutor(logs *logSink) *Executor {
	sel := DefaultSelectors()
	sel.TabLabels["Batsmen"] = "BAT"
	return &Executor{
		BaseURL:   "https://site.test",
		Selectors: sel,
		Timings:   FastTimings(),
		Logf:      logs.logf,
	}
}

func testConfig() model.RunConfiguration {
	return model.RunConfiguration{
		TargetLabel:      "India vs Australia",
		TargetIdentifier: "777",
		MonetaryTier:     49,
		Roster: []model.RosterCategory{
			{Name: "Batsmen", Players: []string{"Rahul Sharma", "Virat K.", "Unknown Player"}},
		},
		CaptainName:     "Rahul Sharma",
		ViceCaptainName: "Virat K.",
	}
}
