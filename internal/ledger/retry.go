package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"
)

// Retrier wraps a Ledger with bounded retries, exponential backoff and
// a per-attempt timeout, so a slow or flaky ledger can never hang an
// append indefinitely.
type Retrier struct {
	inner          Ledger
	maxAttempts    int
	attemptTimeout time.Duration
}

// NewRetrier wraps inner. maxAttempts <= 0 defaults to 3 attempts;
// attemptTimeout <= 0 defaults to 5 seconds.
func NewRetrier(inner Ledger, maxAttempts int, attemptTimeout time.Duration) *Retrier {
	if inner == nil {
		panic("ledger: inner ledger must not be nil")
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 5 * time.Second
	}
	return &Retrier{
		inner:          inner,
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
	}
}

// Submit retries the inner ledger until it succeeds, the attempt budget
// is exhausted, or ctx is cancelled. Exhaustion surfaces ErrUnavailable.
func (r *Retrier) Submit(ctx context.Context, contentHash string) (string, error) {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			d := b.Duration()
			slog.Warn("Ledger submission failed, retrying",
				"attempt", attempt,
				"max_attempts", r.maxAttempts,
				"backoff", d,
				"error", lastErr)
			t := time.NewTimer(d)
			select {
			case <-ctx.Done():
				t.Stop()
				return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-t.C:
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		ref, err := r.inner.Submit(attemptCtx, contentHash)
		cancel()
		if err == nil {
			return ref, nil
		}
		lastErr = err

		// A cancelled parent context will fail every further attempt.
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
	}

	if errors.Is(lastErr, ErrUnavailable) {
		return "", fmt.Errorf("ledger submission failed after %d attempts: %w", r.maxAttempts, lastErr)
	}
	return "", fmt.Errorf("%w: %d attempts exhausted: %v", ErrUnavailable, r.maxAttempts, lastErr)
}
