package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lineup-runner/internal/batch"
	"lineup-runner/internal/browser"
	"lineup-runner/internal/runstore"
	"lineup-runner/internal/settings"
	"lineup-runner/internal/telemetry"
)

type runFlags struct {
	envFile     string
	onlyLogin   bool
	retryFailed bool
	concurrency int
	headless    bool
	progress    bool
	verbose     bool
	jsonOut     bool
	accounts    string
	team        string
	selectors   string
	artifacts   string
}

type runReport struct {
	RunID       string              `json:"run_id"`
	SummaryPath string              `json:"summary_path"`
	Summary     runstore.RunSummary `json:"summary"`
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	f := runFlags{}
	fs.StringVar(&f.envFile, "env", ".env", "dotenv file loaded before reading the environment")
	fs.BoolVar(&f.onlyLogin, "only-login", false, "authenticate and open the match, then stop (auth probe)")
	fs.BoolVar(&f.retryFailed, "retry-failed", false, "run only the accounts in the failed-accounts file")
	fs.IntVar(&f.concurrency, "concurrency", 0, "max parallel sessions (default: MAX_CONCURRENT)")
	fs.BoolVar(&f.headless, "headless", false, "run the browser headless (default: HEADLESS)")
	fs.BoolVar(&f.progress, "progress", true, "show live dashboard when attached to a terminal")
	fs.BoolVar(&f.verbose, "verbose", false, "print phase transitions (plain output only)")
	fs.BoolVar(&f.jsonOut, "json", false, "print JSON output")
	fs.StringVar(&f.accounts, "accounts", "", "accounts CSV (default: ACCOUNTS_FILE)")
	fs.StringVar(&f.team, "team", "", "team file (default: TEAM_FILE)")
	fs.StringVar(&f.selectors, "selectors", "", "selector overrides file (default: SELECTORS_FILE)")
	fs.StringVar(&f.artifacts, "artifacts", "", "artifacts directory (default: ARTIFACTS_DIR)")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := settings.LoadEnv(f.envFile)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	e = applyRunFlags(e, f, set)

	bundle, err := settings.Load(e, f.retryFailed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, e.OTelEndpoint, "lineup-runner")
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	launcher, err := browser.Launch(browser.Options{Headless: e.Headless})
	if err != nil {
		return fmt.Errorf("%w (run: lineup-runner install)", err)
	}
	defer func() {
		_ = launcher.Close()
	}()

	opts := batch.Options{
		BaseURL:      e.BaseURL,
		Team:         bundle.Team,
		Selectors:    bundle.Selectors,
		Credentials:  bundle.Credentials,
		Concurrency:  e.MaxConcurrent,
		AuthProbe:    f.onlyLogin,
		RetryFailed:  f.retryFailed,
		ArtifactsDir: e.Layout().Root,
		Launcher:     launcher,
	}

	var res batch.Result
	switch {
	case f.jsonOut:
		res, err = batch.Run(ctx, opts)
	case f.progress && stdoutIsTTY() && stdinIsTTY():
		res, err = runWithDashboard(ctx, stop, opts)
	default:
		opts.Observer = &batch.ConsoleObserver{Out: os.Stdout, Verbose: f.verbose}
		res, err = batch.Run(ctx, opts)
	}
	if err != nil {
		return err
	}

	if f.jsonOut {
		return printJSON(runReport{RunID: res.RunID, SummaryPath: res.SummaryPath, Summary: res.Summary})
	}
	fmt.Printf("ledger: %s\n", res.Summary.LedgerPath)
	fmt.Printf("summary: %s\n", res.SummaryPath)
	if res.Summary.CarryForward > 0 {
		fmt.Println("next: lineup-runner run --retry-failed")
	}
	return nil
}

// applyRunFlags overlays explicitly set flags on the environment.
func applyRunFlags(e settings.Env, f runFlags, set map[string]bool) settings.Env {
	if set["concurrency"] && f.concurrency > 0 {
		e.MaxConcurrent = f.concurrency
	}
	if set["headless"] {
		e.Headless = f.headless
	}
	if set["accounts"] && strings.TrimSpace(f.accounts) != "" {
		e.AccountsFile = strings.TrimSpace(f.accounts)
	}
	if set["team"] && strings.TrimSpace(f.team) != "" {
		e.TeamFile = strings.TrimSpace(f.team)
	}
	if set["selectors"] && strings.TrimSpace(f.selectors) != "" {
		e.SelectorsFile = strings.TrimSpace(f.selectors)
	}
	if set["artifacts"] && strings.TrimSpace(f.artifacts) != "" {
		e.ArtifactsDir = strings.TrimSpace(f.artifacts)
	}
	return e
}

func runWithDashboard(ctx context.Context, cancel context.CancelFunc, opts batch.Options) (batch.Result, error) {
	model := newDashboardModel(opts.AuthProbe, cancel)
	p := tea.NewProgram(model)
	opts.Observer = dashboardObserver{send: p.Send}

	type outcome struct {
		res batch.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := batch.Run(ctx, opts)
		p.Send(runDoneMsg{err: err})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		// the batch keeps running without a renderer
		fmt.Fprintln(os.Stderr, "dashboard:", err)
	}
	out := <-done
	return out.res, out.err
}
