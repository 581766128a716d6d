package storage

import (
	"context"
	"errors"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
)

var (
	// ErrNotFound is returned when a referenced batch does not exist.
	// Distinct from a failed call: a store error never maps to ErrNotFound.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a batch or event with the same id
	// already exists.
	ErrDuplicate = errors.New("record already exists")
)

// Store owns all persisted provenance state. Batches are written once
// and never updated or deleted; events form an append-only sequence
// per batch. Each call is atomic.
type Store interface {
	// InsertBatch persists a new batch and populates CreatedAt.
	InsertBatch(ctx context.Context, batch *v1.Batch) error

	// GetBatch fetches a batch by id, or ErrNotFound.
	GetBatch(ctx context.Context, id string) (*v1.Batch, error)

	// ListBatches fetches all batches owned by a producer, newest first.
	ListBatches(ctx context.Context, producerID string) ([]*v1.Batch, error)

	// InsertEvent persists a sealed event and populates Seq.
	InsertEvent(ctx context.Context, event *v1.Event) error

	// ListEvents fetches all events for a batch ordered by
	// (timestamp, seq) ascending.
	ListEvents(ctx context.Context, batchID string) ([]*v1.Event, error)
}
