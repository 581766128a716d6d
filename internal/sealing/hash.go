// Package sealing computes the deterministic content hashes that anchor
// each custody event. Payloads are canonicalized per RFC 8785 (JSON
// Canonicalization Scheme) before hashing, so two logically-equal
// payloads hash identically regardless of key insertion order.
package sealing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
)

// Hash returns the lowercase hex SHA-256 digest of the RFC 8785
// canonical JSON form of v. Pure function, no side effects.
func Hash(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("sealing: marshal payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("sealing: canonicalize payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes Hash(v) and compares it to expected. It never
// returns an error: any mismatch or malformed input yields false.
func Verify(v interface{}, expected string) bool {
	h, err := Hash(v)
	if err != nil {
		return false
	}
	return h == expected
}

// Payload is the canonical set of fields sealed into an event's content
// hash: {batchId, actorRole, payload, location, timestamp}. The
// timestamp is sealed at millisecond precision so a database round trip
// cannot change the hash.
type Payload struct {
	BatchID   string                 `json:"batch_id"`
	ActorRole v1.ActorRole           `json:"actor_role"`
	Details   map[string]interface{} `json:"payload"`
	Latitude  *float64               `json:"latitude"`
	Longitude *float64               `json:"longitude"`
	Timestamp int64                  `json:"timestamp"`
}

// NewPayload assembles the sealing payload for an event about to be appended.
func NewPayload(batchID string, role v1.ActorRole, details map[string]interface{}, lat, lng *float64, ts int64) Payload {
	return Payload{
		BatchID:   batchID,
		ActorRole: role,
		Details:   details,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts,
	}
}

// PayloadFromEvent reassembles the sealing payload from an event's
// stored fields, for tamper verification.
func PayloadFromEvent(e *v1.Event) Payload {
	return NewPayload(e.BatchID, e.ActorRole, e.Payload, e.Latitude, e.Longitude, e.Timestamp.UnixMilli())
}
