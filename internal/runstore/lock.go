package runstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	runLockDirName   = ".run.lock"
	runLockOwnerFile = "owner.json"
)

// RunLock keeps two invocations from sharing one artifacts directory, and
// with it the ledger and carry-forward files.
type RunLock struct {
	lockDir string
}

type LockOwner struct {
	PID       int    `json:"pid"`
	RunID     string `json:"run_id,omitempty"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

func (o LockOwner) String() string {
	return fmt.Sprintf("run=%s pid=%d created_at=%s host=%s", o.RunID, o.PID, o.CreatedAt, o.Hostname)
}

// stale reports a lock left behind by a process on this host that no longer
// exists.
func (o LockOwner) stale() bool {
	if o.PID <= 0 || o.Hostname != hostnameOrUnknown() {
		return false
	}
	return !processAlive(o.PID)
}

// AcquireRunLock creates the lock directory inside dir. A lock whose owner
// died on this host is reclaimed once.
func AcquireRunLock(dir, runID string) (RunLock, error) {
	root := strings.TrimSpace(dir)
	if root == "" {
		return RunLock{}, errors.New("artifacts directory is required")
	}
	if err := Mkdir(root); err != nil {
		return RunLock{}, err
	}
	lockDir := filepath.Join(root, runLockDirName)

	for attempt := 0; ; attempt++ {
		err := os.Mkdir(lockDir, 0o755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return RunLock{}, fmt.Errorf("acquire run lock for %s: %w", root, err)
		}
		owner, ok := ReadLockOwner(root)
		if ok && owner.stale() && attempt == 0 {
			if err := os.RemoveAll(lockDir); err != nil {
				return RunLock{}, fmt.Errorf("reclaim stale run lock %s: %w", lockDir, err)
			}
			continue
		}
		if ok {
			return RunLock{}, fmt.Errorf("another run is using %s (%s)", root, owner)
		}
		return RunLock{}, fmt.Errorf("another run is using %s", root)
	}

	owner := LockOwner{
		PID:       os.Getpid(),
		RunID:     runID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	if err := WriteJSON(filepath.Join(lockDir, runLockOwnerFile), owner); err != nil {
		_ = os.RemoveAll(lockDir)
		return RunLock{}, fmt.Errorf("write run lock owner for %s: %w", root, err)
	}
	return RunLock{lockDir: lockDir}, nil
}

func (l RunLock) Release() error {
	if l.lockDir == "" {
		return nil
	}
	if err := os.RemoveAll(l.lockDir); err != nil {
		return fmt.Errorf("release run lock %s: %w", l.lockDir, err)
	}
	return nil
}

// ReadLockOwner returns the owner record of the lock in dir, if any.
func ReadLockOwner(dir string) (LockOwner, bool) {
	var owner LockOwner
	if err := ReadJSON(filepath.Join(dir, runLockDirName, runLockOwnerFile), &owner); err != nil {
		return LockOwner{}, false
	}
	return owner, owner.PID > 0
}

// LockHeld reports whether dir currently carries a run lock.
func LockHeld(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, runLockDirName))
	return err == nil
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return !errors.Is(err, os.ErrProcessDone)
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "unknown"
	}
	return strings.TrimSpace(host)
}
