package batch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lineup-runner/internal/model"
	"lineup-runner/internal/phase"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/wait"
)

// runSession drives one credential through every phase and always returns
// exactly one outcome, which it has already appended to the ledger.
func (r *runner) runSession(ctx context.Context, cred model.Credential) model.SessionOutcome {
	start := r.opts.Now()
	state := model.SessionState{Identifier: cred.Identifier, Step: model.StepInit}

	ctx, span := r.tracer.Start(ctx, "session", trace.WithAttributes(attribute.String("session.identifier", cred.Identifier)))
	defer span.End()

	log := openSessionLog(r.layout.LogsDir(), cred.Identifier, start)
	defer log.Close()
	log.Printf("session start (mode=%s target=%q)", r.mode, r.opts.Team.TargetLabel)
	r.observer.SessionStarted(cred.Identifier)

	var sess surface.Session
	defer func() {
		if sess != nil {
			if err := sess.Close(); err != nil {
				log.Printf("close session: %v", err)
			}
		}
		_ = wait.Sleep(ctx, r.opts.Settle())
	}()

	err := r.guard(func() error {
		return r.drive(ctx, cred, &state, log, &sess)
	})

	out := model.SessionOutcome{
		Timestamp:   r.opts.Now(),
		TargetLabel: r.opts.Team.TargetLabel,
		Identifier:  cred.Identifier,
		DurationMs:  r.opts.Now().Sub(start).Milliseconds(),
	}
	if err == nil {
		out.Status = model.StatusSuccess
		if r.opts.AuthProbe {
			out.Status = model.StatusTestSuccess
		}
		out.Step = state.Step
	} else {
		failedIn := state.Phase
		if failedIn == "" {
			failedIn = model.StepInit
		}
		_ = model.TransitionPhase(&state, model.PhaseFailed)
		out.Status = model.StatusFail
		out.Step = failedIn + ":" + model.LabelOf(err)
		out.Error = err.Error()
		err = &SessionError{Phase: failedIn, Step: state.Step, Err: err}

		log.Printf("FAIL step=%s phase=%s error=%v", state.Step, failedIn, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, out.Step)
	}
	span.SetAttributes(attribute.String("session.status", out.Status), attribute.String("session.step", out.Step))

	if lerr := r.ledger.Append(out); lerr != nil {
		log.Printf("ledger append: %v", lerr)
		r.mu.Lock()
		r.ledgerErrs = append(r.ledgerErrs, lerr)
		r.mu.Unlock()
	}
	if out.Failed() {
		r.recordFailure(ctx, cred, out, sess, log)
	}
	log.Printf("session end status=%s step=%s duration_ms=%d", out.Status, out.Step, out.DurationMs)
	r.observer.SessionFinished(out, err)
	return out
}

// drive runs the phases in order. sess is published as soon as it exists so
// the caller can capture a screenshot and close it.
func (r *runner) drive(ctx context.Context, cred model.Credential, state *model.SessionState, log *sessionLog, sess *surface.Session) error {
	page, err := r.opts.Launcher.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("open surface session: %w", err)
	}
	*sess = page

	x := &phase.Executor{
		BaseURL:   r.opts.BaseURL,
		Selectors: r.opts.Selectors,
		Timings:   r.opts.Timings,
		Logf:      log.Printf,
	}
	team := r.opts.Team

	if err := r.enter(state, model.PhaseAuthenticate); err != nil {
		return err
	}
	if err := x.Authenticate(ctx, page, cred); err != nil {
		return err
	}
	state.Step = model.StepLoginDone

	if err := r.enter(state, model.PhaseNavigate); err != nil {
		return err
	}
	frame, err := x.Navigate(ctx, page, team)
	if err != nil {
		return err
	}
	state.Step = model.StepMatchOpened
	if r.opts.AuthProbe {
		return r.enter(state, model.PhaseDone)
	}

	if err := r.enter(state, model.PhaseConfigure); err != nil {
		return err
	}
	landing, err := x.Configure(ctx, frame, team)
	if err != nil {
		return err
	}
	state.Step = model.StepTeamCreated
	log.Printf("configure landed on %s panel", landing)

	if err := r.enter(state, model.PhaseConfirm); err != nil {
		return err
	}
	if err := x.Confirm(ctx, frame, team, landing); err != nil {
		return err
	}
	state.Step = model.StepContestJoined
	return r.enter(state, model.PhaseDone)
}

func (r *runner) enter(state *model.SessionState, to string) error {
	if err := model.TransitionPhase(state, to); err != nil {
		return err
	}
	r.observer.PhaseChanged(state.Identifier, to)
	return nil
}

// guard turns a panic inside a session into an error so it stays local to
// that session.
func (r *runner) guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("session panic: %v\n%s", p, debug.Stack())
		}
	}()
	return fn()
}

// recordFailure carries the credential forward and captures a screenshot.
// Both are best effort.
func (r *runner) recordFailure(ctx context.Context, cred model.Credential, out model.SessionOutcome, sess surface.Session, log *sessionLog) {
	if err := r.carry.Append(cred); err != nil {
		log.Printf("carry-forward append: %v", err)
	}

	r.mu.Lock()
	r.failures = append(r.failures, failureEntry(out))
	r.mu.Unlock()

	if sess == nil {
		return
	}
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	png, err := sess.Screenshot(shotCtx)
	if err != nil {
		log.Printf("screenshot: %v", err)
		return
	}
	name, err := r.shots.SaveScreenshot(r.opts.Now(), cred.Identifier, out.Step, png)
	if err != nil {
		log.Printf("screenshot: %v", err)
		return
	}
	log.Printf("screenshot saved: %s", name)
}
