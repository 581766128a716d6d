package v1

import (
	"fmt"
	"time"
)

// PayloadActionKey is the one payload key every event must carry.
// Everything else in the payload is role-specific and passes through
// the core opaquely.
const PayloadActionKey = "action"

// Event is one immutable custody/state record attached to a Batch.
// It separates the custody envelope (who, when, where) from the
// role-specific payload, and is sealed with a content hash plus an
// external ledger reference before it is persisted.
type Event struct {
	// ID is the unique identifier, generated at append time.
	ID string `json:"id"`

	// BatchID references the owning Batch. The event never owns the
	// batch's lifecycle; it is a relation plus lookup key only.
	BatchID string `json:"batch_id"`

	// ActorRole is the kind of party that authored this record.
	ActorRole ActorRole `json:"actor_role"`

	// ActorName is the display label of the acting party.
	ActorName string `json:"actor_name"`

	// Timestamp is when the action was recorded, captured by the core
	// at append time (UTC, millisecond precision).
	Timestamp time.Time `json:"timestamp"`

	// Latitude/Longitude are best-effort geocoordinates. Location
	// capture can fail, so each is independently nullable.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Payload is the open role-specific mapping. Only the "action" key
	// is required; the rest is passed through opaquely.
	Payload map[string]interface{} `json:"payload"`

	// ContentHash is the canonical hash of the sealing payload,
	// computed at append time and immutable once set.
	ContentHash string `json:"content_hash"`

	// LedgerRef is the opaque attestation reference returned by the
	// ledger for ContentHash. Set together with ContentHash, exactly once.
	LedgerRef string `json:"ledger_ref"`

	// Seq is a monotonic insertion cursor assigned by the store
	// (BIGSERIAL). It breaks ties between events sharing a timestamp.
	// Not exposed in the public API.
	Seq int64 `json:"-"`
}

// Action returns the payload's action descriptor, or "" if absent.
func (e *Event) Action() string {
	if e.Payload == nil {
		return ""
	}
	if s, ok := e.Payload[PayloadActionKey].(string); ok {
		return s
	}
	return ""
}

// TraceBundle is the read-only composite returned by a trace query:
// one batch plus all its events ordered by (timestamp, insertion order)
// ascending. Constructed on demand, never persisted.
type TraceBundle struct {
	Batch  *Batch   `json:"batch"`
	Events []*Event `json:"events"`
}

// AppendEventRequest is the request body for POST /v1/batches/{id}/events.
type AppendEventRequest struct {
	ActorRole ActorRole              `json:"actor_role"`
	ActorName string                 `json:"actor_name"`
	Payload   map[string]interface{} `json:"payload"`
	Latitude  *float64               `json:"latitude"`
	Longitude *float64               `json:"longitude"`
}

// Validate ensures the request carries a known role, an actor name and
// a payload with a non-empty action descriptor.
func (r *AppendEventRequest) Validate() error {
	if !r.ActorRole.Valid() {
		return &ValidationError{
			Field:   "actor_role",
			Message: fmt.Sprintf("actor_role must be one of %s, %s, %s", RoleProducer, RoleCarrier, RoleRetailer),
		}
	}
	if r.ActorName == "" {
		return &ValidationError{Field: "actor_name", Message: "actor_name is required"}
	}
	action, ok := r.Payload[PayloadActionKey].(string)
	if !ok || action == "" {
		return &ValidationError{Field: "payload.action", Message: "payload must include an action descriptor"}
	}
	return nil
}

// ValidationError reports a required input missing or malformed at the
// core boundary. Caller's fault; never retried automatically.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Details returns the structured fields for API error responses.
func (e *ValidationError) Details() map[string]interface{} {
	return map[string]interface{}{"field": e.Field}
}
