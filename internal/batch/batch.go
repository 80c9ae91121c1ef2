// Package batch runs one isolated session per credential under a bounded
// admission gate and records every outcome.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"lineup-runner/internal/artifacts"
	"lineup-runner/internal/model"
	"lineup-runner/internal/phase"
	"lineup-runner/internal/runstore"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/telemetry"
	"lineup-runner/internal/wait"
)

const (
	ModeFull      = "full"
	ModeAuthProbe = "auth-probe"

	DefaultConcurrency = 3
)

type Options struct {
	RunID        string
	BaseURL      string
	Team         model.RunConfiguration
	Selectors    *phase.Selectors
	Timings      phase.Timings
	Credentials  []model.Credential
	Concurrency  int
	AuthProbe    bool
	RetryFailed  bool
	ArtifactsDir string
	Launcher     surface.Launcher
	Observer     Observer

	// Settle is the pause after a session's surface is closed, before its
	// slot frees. Defaults to 250-800ms of jitter.
	Settle func() time.Duration
	Now    func() time.Time
}

type Result struct {
	RunID       string
	Outcomes    []model.SessionOutcome
	Summary     runstore.RunSummary
	SummaryPath string
}

// SessionError describes where a session stopped: the phase that failed and
// the last step marker it completed.
type SessionError struct {
	Phase string
	Step  string
	Err   error
}

func (e *SessionError) Error() string { return e.Err.Error() }
func (e *SessionError) Unwrap() error { return e.Err }

type runner struct {
	opts     Options
	mode     string
	layout   runstore.Layout
	ledger   *runstore.Ledger
	carry    *runstore.CarryForward
	shots    *artifacts.Store
	observer Observer
	tracer   trace.Tracer

	mu         sync.Mutex
	ledgerErrs []error
	failures   []runstore.FailureEntry
}

// Run schedules one session per credential, at most Concurrency at a time,
// and returns once every session has finished. Individual session failures
// are outcomes, not errors; Run fails only on setup problems or when the
// ledger could not be written.
func Run(ctx context.Context, opts Options) (Result, error) {
	if err := validateOptions(&opts); err != nil {
		return Result{}, err
	}

	layout := runstore.Layout{Root: opts.ArtifactsDir}
	lock, err := runstore.AcquireRunLock(layout.Root, opts.RunID)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = lock.Release()
	}()
	if err := runstore.Mkdir(layout.LogsDir()); err != nil {
		return Result{}, err
	}

	// Failures collect in a staging file that replaces the carry-forward
	// file once every session has finished.
	carryTarget := layout.CarryForwardPath()
	carryPath := runstore.StagingPath(carryTarget)
	if err := os.Remove(carryPath); err != nil && !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("clear stale staging file: %w", err)
	}

	r := &runner{
		opts:     opts,
		mode:     ModeFull,
		layout:   layout,
		ledger:   runstore.OpenLedger(layout.LedgerPath()),
		carry:    runstore.NewCarryForward(carryPath),
		shots:    artifacts.New(layout.Root),
		observer: opts.Observer,
		tracer:   telemetry.Tracer(),
	}
	if opts.AuthProbe {
		r.mode = ModeAuthProbe
	}

	started := opts.Now()
	ctx, span := r.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("run.id", opts.RunID),
		attribute.String("run.mode", r.mode),
		attribute.Int("run.sessions", len(opts.Credentials)),
		attribute.Int("run.concurrency", opts.Concurrency),
	))
	defer span.End()

	r.observer.RunStarted(opts.RunID, len(opts.Credentials), opts.Concurrency)

	outcomes := make([]model.SessionOutcome, len(opts.Credentials))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, cred := range opts.Credentials {
		g.Go(func() error {
			outcomes[i] = r.runSession(ctx, cred)
			return nil
		})
	}
	_ = g.Wait()

	carried, err := runstore.Finalize(carryPath, carryTarget)
	if err != nil {
		return Result{}, fmt.Errorf("finalize carry-forward: %w", err)
	}

	summary := runstore.RunSummary{
		RunID:        opts.RunID,
		StartedAt:    started.UTC().Format(time.RFC3339),
		FinishedAt:   opts.Now().UTC().Format(time.RFC3339),
		Mode:         r.mode,
		TargetLabel:  opts.Team.TargetLabel,
		Concurrency:  opts.Concurrency,
		Sessions:     len(outcomes),
		Statuses:     runstore.Tally(outcomes),
		CarryForward: carried,
		LedgerPath:   layout.LedgerPath(),
		Failures:     r.failures,
	}
	summaryPath := runstore.SummaryPath(layout.RunsDir(), started, opts.RunID)
	if err := runstore.SaveSummary(summaryPath, summary); err != nil {
		return Result{}, err
	}
	r.observer.RunFinished(summary)
	span.SetAttributes(attribute.Int("run.failed", summary.Statuses[model.StatusFail]))

	res := Result{RunID: opts.RunID, Outcomes: outcomes, Summary: summary, SummaryPath: summaryPath}
	if len(r.ledgerErrs) > 0 {
		span.SetStatus(codes.Error, "ledger append failed")
		return res, fmt.Errorf("ledger append failed for %d sessions: %w", len(r.ledgerErrs), errors.Join(r.ledgerErrs...))
	}
	return res, nil
}

func validateOptions(opts *Options) error {
	if opts.Launcher == nil {
		return fmt.Errorf("surface launcher is required")
	}
	if opts.Selectors == nil {
		return fmt.Errorf("selector table is required")
	}
	if len(opts.Credentials) == 0 {
		return model.Invalid("no_credentials", nil)
	}
	if strings.TrimSpace(opts.ArtifactsDir) == "" {
		return fmt.Errorf("artifacts directory is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if strings.TrimSpace(opts.RunID) == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Settle == nil {
		opts.Settle = func() time.Duration { return wait.Jitter(250*time.Millisecond, 800*time.Millisecond) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timings == (phase.Timings{}) {
		opts.Timings = phase.DefaultTimings()
	}
	return nil
}
