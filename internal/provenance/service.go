// Package provenance is the core of the tracker: it enforces the
// batch/event invariants, runs the sealing protocol, and assembles
// ordered trace bundles. The package holds no state of its own; all
// shared state lives in the injected store.
package provenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
	"github.com/agritrace-lab/agritrace/internal/core/storage"
	"github.com/agritrace-lab/agritrace/internal/ledger"
	"github.com/agritrace-lab/agritrace/internal/sealing"
)

// GenesisAction is the action descriptor of the registration event
// appended when a batch is created.
const GenesisAction = "registration"

var (
	// ErrGenesisIncomplete signals the partial-failure condition where
	// a batch was durably created but its genesis event could not be
	// sealed. The batch exists; the caller decides how to repair.
	ErrGenesisIncomplete = errors.New("batch created without genesis event")

	// ErrPersistence wraps store write failures so callers can
	// distinguish them from ledger faults and missing batches.
	ErrPersistence = errors.New("store write failed")
)

// Service is the provenance core. It validates actor intent, seals
// events, and delegates persistence to the store and attestation to
// the ledger.
type Service struct {
	store    storage.Store
	ledger   ledger.Ledger
	profiles *Profiles
}

// NewService creates the provenance core with its two collaborators
// injected. profiles may be nil; the built-in defaults are used then.
func NewService(store storage.Store, led ledger.Ledger, profiles *Profiles) *Service {
	if store == nil {
		panic("provenance: store must not be nil")
	}
	if led == nil {
		panic("provenance: ledger must not be nil")
	}
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Service{
		store:    store,
		ledger:   led,
		profiles: profiles,
	}
}

// CreateBatch registers a new lot and appends its sealed genesis event.
//
// The batch is persisted first; only then is the registration event
// sealed and appended. If sealing fails after the batch was durably
// created, the batch is returned together with ErrGenesisIncomplete so
// the partial state is never silently swallowed.
func (s *Service) CreateBatch(ctx context.Context, req *v1.CreateBatchRequest) (*v1.Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batch := &v1.Batch{
		ID:                uuid.NewString(),
		ProducerID:        req.ProducerID,
		Crop:              req.Crop,
		Variety:           req.Variety,
		Quantity:          req.Quantity,
		OriginDescription: req.OriginDescription,
		HarvestTimestamp:  req.HarvestTimestamp,
	}

	if err := s.store.InsertBatch(ctx, batch); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: insert batch: %v", ErrPersistence, err)
	}

	payload := map[string]interface{}{
		v1.PayloadActionKey: GenesisAction,
		"crop":              req.Crop,
	}
	_, err := s.appendSealed(ctx, batch.ID, v1.RoleProducer, req.ActorName(), payload, req.Latitude, req.Longitude)
	if err != nil {
		slog.Error("Genesis event failed after batch creation",
			"batch_id", batch.ID,
			"error", err)
		return batch, fmt.Errorf("%w: %v", ErrGenesisIncomplete, err)
	}

	slog.Info("Registered batch",
		"batch_id", batch.ID,
		"producer_id", batch.ProducerID,
		"crop", batch.Crop)
	return batch, nil
}

// AppendEvent seals and persists one custody event for an existing
// batch. Any role may append at any time; the core imposes no workflow
// ordering between roles.
func (s *Service) AppendEvent(ctx context.Context, batchID string, req *v1.AppendEventRequest) (*v1.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBatch(ctx, batchID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get batch: %v", ErrPersistence, err)
	}

	if unknown := s.profiles.UnknownKeys(req.ActorRole, req.Payload); len(unknown) > 0 {
		slog.Debug("Payload carries keys outside the role profile",
			"batch_id", batchID,
			"actor_role", req.ActorRole,
			"keys", unknown)
	}

	return s.appendSealed(ctx, batchID, req.ActorRole, req.ActorName, req.Payload, req.Latitude, req.Longitude)
}

// appendSealed runs the sealing protocol: capture the timestamp,
// assemble the canonical sealing payload, hash it, obtain a ledger
// reference, then persist. The order is strict - a ledger failure
// leaves nothing behind, and the event only becomes visible to trace
// queries after the final store write succeeds.
func (s *Service) appendSealed(
	ctx context.Context,
	batchID string,
	role v1.ActorRole,
	actorName string,
	payload map[string]interface{},
	lat, lng *float64,
) (*v1.Event, error) {
	ts := time.Now().UTC().Truncate(time.Millisecond)

	contentHash, err := sealing.Hash(sealing.NewPayload(batchID, role, payload, lat, lng, ts.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("seal event: %w", err)
	}

	ledgerRef, err := s.ledger.Submit(ctx, contentHash)
	if err != nil {
		return nil, err
	}

	event := &v1.Event{
		ID:          uuid.NewString(),
		BatchID:     batchID,
		ActorRole:   role,
		ActorName:   actorName,
		Timestamp:   ts,
		Latitude:    lat,
		Longitude:   lng,
		Payload:     payload,
		ContentHash: contentHash,
		LedgerRef:   ledgerRef,
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: insert event: %v", ErrPersistence, err)
	}

	slog.Info("Sealed custody event",
		"event_id", event.ID,
		"batch_id", batchID,
		"actor_role", role,
		"action", event.Action(),
		"ledger_ref", ledgerRef)
	return event, nil
}

// GetTrace fetches a batch and its full custody chain ordered by
// (timestamp, insertion order) ascending. Read-only and idempotent;
// safe to call concurrently with appends.
func (s *Service) GetTrace(ctx context.Context, batchID string) (*v1.TraceBundle, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get batch: %v", ErrPersistence, err)
	}

	events, err := s.store.ListEvents(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrPersistence, err)
	}

	return &v1.TraceBundle{Batch: batch, Events: events}, nil
}

// ListBatches fetches all batches owned by a producer, newest first.
func (s *Service) ListBatches(ctx context.Context, producerID string) ([]*v1.Batch, error) {
	if producerID == "" {
		return nil, &v1.ValidationError{Field: "producer_id", Message: "producer_id is required"}
	}
	batches, err := s.store.ListBatches(ctx, producerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list batches: %v", ErrPersistence, err)
	}
	return batches, nil
}

// VerifyEvent recomputes the sealing payload from the event's stored
// fields and checks it against the stored content hash. False means
// tampering or corruption, not a processing failure.
func (s *Service) VerifyEvent(event *v1.Event) bool {
	return sealing.Verify(sealing.PayloadFromEvent(event), event.ContentHash)
}

// VerifyResult reports one event's integrity check within a trace.
type VerifyResult struct {
	EventID string `json:"event_id"`
	Valid   bool   `json:"valid"`
}

// VerifyTrace verifies every event of a batch's chain in trace order.
// Returns storage.ErrNotFound when the batch does not exist.
func (s *Service) VerifyTrace(ctx context.Context, batchID string) ([]VerifyResult, error) {
	trace, err := s.GetTrace(ctx, batchID)
	if err != nil {
		return nil, err
	}

	results := make([]VerifyResult, len(trace.Events))
	for i, e := range trace.Events {
		results[i] = VerifyResult{EventID: e.ID, Valid: s.VerifyEvent(e)}
	}
	return results, nil
}
