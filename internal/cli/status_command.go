package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"lineup-runner/internal/artifacts"
	"lineup-runner/internal/runstore"
	"lineup-runner/internal/settings"
)

type statusResult struct {
	ArtifactsDir string               `json:"artifacts_dir"`
	LedgerPath   string               `json:"ledger_path"`
	LedgerRows   int                  `json:"ledger_rows"`
	Statuses     map[string]int       `json:"statuses"`
	CarryForward int                  `json:"carry_forward"`
	Screenshots  int                  `json:"screenshots"`
	LatestRun    *runstore.RunSummary `json:"latest_run,omitempty"`
	LockHeld     bool                 `json:"run_in_progress"`
	LockOwner    *runstore.LockOwner  `json:"lock_owner,omitempty"`
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file loaded before reading the environment")
	artifactsDir := fs.String("artifacts", "", "artifacts directory (default: ARTIFACTS_DIR)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := settings.LoadEnv(*envFile)
	if err != nil {
		return err
	}
	if *artifactsDir != "" {
		e.ArtifactsDir = *artifactsDir
	}
	res, err := collectStatus(e.Layout())
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Printf("artifacts: %s\n", res.ArtifactsDir)
	if res.LockHeld {
		if res.LockOwner != nil {
			fmt.Printf("a run is in progress (%s)\n", res.LockOwner)
		} else {
			fmt.Println("a run is in progress")
		}
	}
	fmt.Printf("ledger: %s (%d rows)\n", res.LedgerPath, res.LedgerRows)
	statuses := make([]string, 0, len(res.Statuses))
	for s := range res.Statuses {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Printf("  %s: %d\n", s, res.Statuses[s])
	}
	fmt.Printf("failed accounts pending: %d\n", res.CarryForward)
	fmt.Printf("failure screenshots: %d\n", res.Screenshots)
	if res.LatestRun == nil {
		fmt.Println("no runs recorded yet")
		fmt.Println("start here:")
		fmt.Println("  lineup-runner init")
		fmt.Println("  lineup-runner run --only-login")
		return nil
	}
	r := res.LatestRun
	fmt.Printf("latest run: %s (%s, %d sessions, finished %s)\n", r.RunID, r.Mode, r.Sessions, r.FinishedAt)
	for _, f := range r.Failures {
		fmt.Printf("  FAIL %s: step=%s error=%s\n", f.Identifier, f.Step, f.Error)
	}
	if res.CarryForward > 0 {
		fmt.Println("next: lineup-runner run --retry-failed")
	}
	return nil
}

func collectStatus(layout runstore.Layout) (statusResult, error) {
	res := statusResult{
		ArtifactsDir: layout.Root,
		LedgerPath:   layout.LedgerPath(),
		Statuses:     map[string]int{},
		LockHeld:     runstore.LockHeld(layout.Root),
	}

	if owner, ok := runstore.ReadLockOwner(layout.Root); ok {
		res.LockOwner = &owner
	}

	outcomes, err := runstore.ReadLedger(layout.LedgerPath())
	if err != nil {
		return statusResult{}, err
	}
	res.LedgerRows = len(outcomes)
	res.Statuses = runstore.Tally(outcomes)

	pending, err := runstore.ReadCredentials(layout.CarryForwardPath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return statusResult{}, err
	default:
		res.CarryForward = len(pending)
	}

	res.Screenshots = len(artifacts.New(layout.Root).Screenshots())

	latest, ok, err := runstore.LatestSummary(layout.RunsDir())
	if err != nil {
		return statusResult{}, err
	}
	if ok {
		res.LatestRun = &latest
	}
	return res, nil
}
