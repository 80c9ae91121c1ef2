package wait

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"lineup-runner/internal/model"
)

func TestUntilReturnsOncePredicateHolds(t *testing.T) {
	var calls atomic.Int32
	err := Until(context.Background(), Options{Timeout: time.Second, Interval: 5 * time.Millisecond, Label: "ready"},
		func(context.Context) (bool, error) {
			return calls.Add(1) >= 3, nil
		})
	if err != nil {
		t.Fatalf("until: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 evaluations, got %d", got)
	}
}

func TestUntilTimesOutWithLabel(t *testing.T) {
	start := time.Now()
	err := Until(context.Background(), Options{Timeout: 60 * time.Millisecond, Interval: 10 * time.Millisecond, Label: "save_button"},
		func(context.Context) (bool, error) { return false, nil })
	if err == nil {
		t.Fatalf("expected timeout")
	}
	if !model.IsKind(err, model.KindTimeout) {
		t.Fatalf("expected timeout kind, got %v", err)
	}
	if got := model.LabelOf(err); got != "save_button" {
		t.Fatalf("expected label save_button, got %q", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout took too long: %s", elapsed)
	}
}

func TestUntilTreatsPredicateErrorsAsNotYet(t *testing.T) {
	var calls atomic.Int32
	err := Until(context.Background(), Options{Timeout: time.Second, Interval: 5 * time.Millisecond, Label: "row"},
		func(context.Context) (bool, error) {
			if calls.Add(1) < 3 {
				return false, errors.New("element detached")
			}
			return true, nil
		})
	if err != nil {
		t.Fatalf("expected transient errors to be retried, got %v", err)
	}
}

func TestUntilStopsOnFatalError(t *testing.T) {
	sentinel := errors.New("frame gone")
	var calls atomic.Int32
	err := Until(context.Background(), Options{Timeout: time.Second, Interval: 5 * time.Millisecond, Label: "frame"},
		func(context.Context) (bool, error) {
			calls.Add(1)
			return false, Fatal(sentinel)
		})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single evaluation, got %d", calls.Load())
	}
}

func TestPollReturnsValue(t *testing.T) {
	var calls atomic.Int32
	v, err := Poll(context.Background(), Options{Timeout: time.Second, Interval: 5 * time.Millisecond, Label: "value"},
		func(context.Context) (string, bool, error) {
			if calls.Add(1) < 2 {
				return "", false, nil
			}
			return "found", true, nil
		})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if v != "found" {
		t.Fatalf("expected found, got %q", v)
	}
}

func TestZeroTimeoutEvaluatesOnce(t *testing.T) {
	var calls atomic.Int32
	err := Until(context.Background(), Options{Label: "once"}, func(context.Context) (bool, error) {
		calls.Add(1)
		return false, nil
	})
	if !model.IsKind(err, model.KindTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one evaluation, got %d", calls.Load())
	}
}

func TestJitterStaysInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		d := Jitter(250*time.Millisecond, 800*time.Millisecond)
		if d < 250*time.Millisecond || d > 800*time.Millisecond {
			t.Fatalf("jitter out of range: %s", d)
		}
	}
	if got := Jitter(time.Second, time.Second); got != time.Second {
		t.Fatalf("expected degenerate range to return lo, got %s", got)
	}
}

func TestSleepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
