package runstore

import "path/filepath"

// Layout names the files a run keeps under its artifacts directory.
type Layout struct {
	Root string
}

func (l Layout) LedgerPath() string       { return filepath.Join(l.Root, "results.csv") }
func (l Layout) CarryForwardPath() string { return filepath.Join(l.Root, "failed_accounts.csv") }
func (l Layout) LogsDir() string          { return filepath.Join(l.Root, "logs") }
func (l Layout) RunsDir() string          { return filepath.Join(l.Root, "runs") }
