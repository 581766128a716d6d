// Package ledger models the external attestation service that turns a
// content hash into an opaque transaction reference. The core stores
// and displays the reference but never interprets its structure, so a
// real distributed-ledger client can replace the simulator without
// touching the core's contract.
package ledger

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the ledger failed or timed out after
// all retries. Transient from the caller's point of view; no event is
// ever persisted when it surfaces.
var ErrUnavailable = errors.New("ledger unavailable")

// Ledger submits content hashes for attestation. Submit may be slow
// and may fail; no reference is considered durable until it returns
// successfully.
type Ledger interface {
	Submit(ctx context.Context, contentHash string) (string, error)
}
