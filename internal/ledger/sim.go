package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"time"
)

const refBytes = 32

// Simulator stands in for a real ledger client. It waits a fixed delay
// (simulated block time) and returns a random transaction-style
// reference. FailureRate injects transient faults for tests and chaos
// runs; 0 means every submission succeeds.
type Simulator struct {
	delay       time.Duration
	failureRate float64
}

// NewSimulator creates a simulated ledger. A delay of 0 makes Submit
// return immediately, which keeps tests fast.
func NewSimulator(delay time.Duration, failureRate float64) *Simulator {
	return &Simulator{delay: delay, failureRate: failureRate}
}

// Submit waits out the simulated block time, then returns a reference
// of the form "0x" + 64 hex chars. Honors ctx cancellation during the
// delay.
func (s *Simulator) Submit(ctx context.Context, contentHash string) (string, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-t.C:
		}
	}

	if s.failureRate > 0 && mathrand.Float64() < s.failureRate {
		return "", fmt.Errorf("%w: simulated fault", ErrUnavailable)
	}

	var buf [refBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return "0x" + hex.EncodeToString(buf[:]), nil
}
