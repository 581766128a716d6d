package v1

import (
	"time"
)

// Batch is the root entity of a provenance chain: one harvested or
// produced lot. A batch is written exactly once; every later state
// change is expressed as an Event referencing it.
type Batch struct {
	// ID is the unique immutable identifier, generated at creation.
	// All events reference it as their foreign key.
	ID string `json:"id"`

	// ProducerID identifies the owning actor. Set at creation, never mutated.
	ProducerID string `json:"producer_id"`

	// Descriptive attributes, free-form, set at creation.
	Crop              string `json:"crop"`
	Variety           string `json:"variety,omitempty"`
	Quantity          string `json:"quantity"`
	OriginDescription string `json:"origin_description"`

	// HarvestTimestamp is when the lot was harvested (producer-supplied).
	HarvestTimestamp time.Time `json:"harvest_timestamp"`

	// CreatedAt is the record-creation timestamp, set by the store.
	CreatedAt time.Time `json:"created_at"`
}

// CreateBatchRequest is the request body for POST /v1/batches.
// Latitude/Longitude are the best-effort coordinates captured by the
// caller for the genesis registration event; either may be absent.
type CreateBatchRequest struct {
	ProducerID        string    `json:"producer_id"`
	ProducerName      string    `json:"producer_name,omitempty"`
	Crop              string    `json:"crop"`
	Variety           string    `json:"variety,omitempty"`
	Quantity          string    `json:"quantity"`
	OriginDescription string    `json:"origin_description"`
	HarvestTimestamp  time.Time `json:"harvest_timestamp"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
}

// Validate ensures the request carries all required creation attributes.
func (r *CreateBatchRequest) Validate() error {
	if r.ProducerID == "" {
		return &ValidationError{Field: "producer_id", Message: "producer_id is required"}
	}
	if r.Crop == "" {
		return &ValidationError{Field: "crop", Message: "crop is required"}
	}
	if r.Quantity == "" {
		return &ValidationError{Field: "quantity", Message: "quantity is required"}
	}
	if r.OriginDescription == "" {
		return &ValidationError{Field: "origin_description", Message: "origin_description is required"}
	}
	if r.HarvestTimestamp.IsZero() {
		return &ValidationError{Field: "harvest_timestamp", Message: "harvest_timestamp is required"}
	}
	return nil
}

// ActorName returns the display label for the genesis event, falling
// back to the producer id when no name was supplied.
func (r *CreateBatchRequest) ActorName() string {
	if r.ProducerName != "" {
		return r.ProducerName
	}
	return r.ProducerID
}
