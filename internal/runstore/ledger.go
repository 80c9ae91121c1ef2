package runstore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"lineup-runner/internal/model"
)

// TimestampLayout is the ledger's timestamp format: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var LedgerColumns = []string{"timestamp", "target_label", "identifier", "status", "step", "duration_ms"}

// Ledger is the append-only outcome log. Rows land in completion order.
type Ledger struct {
	file csvFile
}

func OpenLedger(path string) *Ledger {
	return &Ledger{file: csvFile{path: path, header: LedgerColumns}}
}

func (l *Ledger) Path() string { return l.file.path }

func (l *Ledger) Append(o model.SessionOutcome) error {
	return l.file.append([]string{
		o.Timestamp.UTC().Format(TimestampLayout),
		o.TargetLabel,
		o.Identifier,
		o.Status,
		o.Step,
		strconv.FormatInt(o.DurationMs, 10),
	})
}

// ReadLedger loads every row of the ledger at path. A missing file is an
// empty ledger.
func ReadLedger(path string) ([]model.SessionOutcome, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.SessionOutcome{}, nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	idx := map[string]int{}
	for _, col := range LedgerColumns {
		idx[col] = columnIndex(header, col)
	}
	out := make([]model.SessionOutcome, 0, len(rows))
	for _, row := range rows {
		o := model.SessionOutcome{
			TargetLabel: cell(row, idx["target_label"]),
			Identifier:  cell(row, idx["identifier"]),
			Status:      cell(row, idx["status"]),
			Step:        cell(row, idx["step"]),
		}
		if ts, err := time.Parse(TimestampLayout, cell(row, idx["timestamp"])); err == nil {
			o.Timestamp = ts
		}
		if ms, err := strconv.ParseInt(cell(row, idx["duration_ms"]), 10, 64); err == nil {
			o.DurationMs = ms
		}
		out = append(out, o)
	}
	return out, nil
}

// Tally counts ledger rows per status.
func Tally(outcomes []model.SessionOutcome) map[string]int {
	out := map[string]int{}
	for _, o := range outcomes {
		out[o.Status]++
	}
	return out
}
