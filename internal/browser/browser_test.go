package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeoutMillisUsesDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ms, err := timeoutMillis(ctx)
	if err != nil {
		t.Fatalf("timeoutMillis: %v", err)
	}
	if *ms <= 0 || *ms > 2000 {
		t.Fatalf("timeout = %v, want (0, 2000]", *ms)
	}
}

func TestTimeoutMillisDefaultsWithoutDeadline(t *testing.T) {
	ms, err := timeoutMillis(context.Background())
	if err != nil {
		t.Fatalf("timeoutMillis: %v", err)
	}
	if *ms != float64(defaultActionTimeout.Milliseconds()) {
		t.Fatalf("timeout = %v, want %d", *ms, defaultActionTimeout.Milliseconds())
	}
}

func TestTimeoutMillisRejectsDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := timeoutMillis(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
