// Package wait polls UI state until a condition holds or a deadline passes.
package wait

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"

	"lineup-runner/internal/model"
)

const DefaultInterval = 200 * time.Millisecond

type Options struct {
	Timeout  time.Duration
	Interval time.Duration
	Label    string
}

var errNotYet = errors.New("condition not met")

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks a predicate error that must stop polling immediately.
// Every other predicate error counts as "not yet".
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// Until evaluates pred until it reports true. On deadline it returns a
// timeout StepError carrying opts.Label.
func Until(ctx context.Context, opts Options, pred func(context.Context) (bool, error)) error {
	_, err := Poll(ctx, opts, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := pred(ctx)
		return struct{}{}, ok, err
	})
	return err
}

// Poll is Until for predicates that produce a value once satisfied.
func Poll[T any](ctx context.Context, opts Options, fn func(context.Context) (T, bool, error)) (T, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var lastErr, fatal error
	op := func() (T, error) {
		v, ok, err := fn(ctx)
		if err != nil {
			var fe *fatalError
			if errors.As(err, &fe) {
				fatal = fe.err
				return v, backoff.Permanent(fe.err)
			}
			lastErr = err
			return v, err
		}
		if !ok {
			return v, errNotYet
		}
		return v, nil
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
	}
	if opts.Timeout > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxElapsedTime(opts.Timeout))
	} else {
		retryOpts = append(retryOpts, backoff.WithMaxTries(1))
	}

	v, err := backoff.Retry(ctx, op, retryOpts...)
	if err == nil {
		return v, nil
	}
	var zero T
	if fatal != nil {
		return zero, fatal
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, model.Timeout(opts.Label, ctxErr)
	}
	return zero, model.Timeout(opts.Label, lastErr)
}

// Sleep is a fixed UI settle delay that still honours cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Jitter returns a random duration in [lo, hi].
func Jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}
