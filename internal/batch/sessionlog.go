package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lineup-runner/internal/artifacts"
	"lineup-runner/internal/model"
	"lineup-runner/internal/runstore"
)

// sessionLog is the per-session log file. A log that cannot be created
// degrades to a discard sink; it never fails the session.
type sessionLog struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
}

func openSessionLog(dir, identifier string, start time.Time) *sessionLog {
	name := fmt.Sprintf("%s_%s.log", start.UTC().Format("20060102T150405.000Z"), artifacts.Sanitize(identifier))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return &sessionLog{w: io.Discard}
	}
	return &sessionLog{w: f, file: f}
}

func (l *sessionLog) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(l.w, "%s %s\n", time.Now().UTC().Format(runstore.TimestampLayout), msg)
}

func (l *sessionLog) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func failureEntry(o model.SessionOutcome) runstore.FailureEntry {
	msg := o.Error
	if len(msg) > 600 {
		msg = msg[:600]
	}
	return runstore.FailureEntry{Identifier: o.Identifier, Step: o.Step, Error: msg}
}
