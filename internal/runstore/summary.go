package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RunSummary is written once per run under <artifacts>/runs.
type RunSummary struct {
	RunID        string         `json:"run_id"`
	StartedAt    string         `json:"started_at"`
	FinishedAt   string         `json:"finished_at"`
	Mode         string         `json:"mode"`
	TargetLabel  string         `json:"target_label"`
	Concurrency  int            `json:"concurrency"`
	Sessions     int            `json:"sessions"`
	Statuses     map[string]int `json:"statuses"`
	CarryForward int            `json:"carry_forward"`
	LedgerPath   string         `json:"ledger_path"`
	Failures     []FailureEntry `json:"failures,omitempty"`
}

type FailureEntry struct {
	Identifier string `json:"identifier"`
	Step       string `json:"step"`
	Error      string `json:"error"`
}

func SummaryPath(runsDir string, started time.Time, runID string) string {
	stamp := started.UTC().Format("20060102T150405Z")
	return filepath.Join(runsDir, fmt.Sprintf("%s-%s.json", stamp, runID))
}

func SaveSummary(path string, s RunSummary) error {
	return WriteJSON(path, s)
}

// ListSummaries returns summary paths oldest first. A missing directory is
// not an error.
func ListSummaries(runsDir string) ([]string, error) {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read runs directory %s: %w", runsDir, err)
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, filepath.Join(runsDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func LatestSummary(runsDir string) (RunSummary, bool, error) {
	paths, err := ListSummaries(runsDir)
	if err != nil {
		return RunSummary{}, false, err
	}
	if len(paths) == 0 {
		return RunSummary{}, false, nil
	}
	var s RunSummary
	if err := ReadJSON(paths[len(paths)-1], &s); err != nil {
		return RunSummary{}, false, err
	}
	return s, true, nil
}
