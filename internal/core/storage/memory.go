package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
)

// MemoryStore is an in-memory implementation of Store.
// Useful for testing and single-node development mode.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*v1.Batch
	events  map[string]*v1.Event
	nextSeq int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches: make(map[string]*v1.Batch),
		events:  make(map[string]*v1.Event),
	}
}

func (s *MemoryStore) InsertBatch(ctx context.Context, batch *v1.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.batches[batch.ID]; exists {
		return ErrDuplicate
	}

	batch.CreatedAt = time.Now().UTC()

	// Store a copy to prevent external modification
	copy := *batch
	s.batches[batch.ID] = &copy
	return nil
}

func (s *MemoryStore) GetBatch(ctx context.Context, id string) (*v1.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.batches[id]
	if !exists {
		return nil, ErrNotFound
	}

	copy := *b
	return &copy, nil
}

func (s *MemoryStore) ListBatches(ctx context.Context, producerID string) ([]*v1.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*v1.Batch
	for _, b := range s.batches {
		if b.ProducerID != producerID {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) InsertEvent(ctx context.Context, event *v1.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return ErrDuplicate
	}

	s.nextSeq++
	event.Seq = s.nextSeq

	copy := *event
	s.events[event.ID] = &copy
	return nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, batchID string) ([]*v1.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*v1.Event
	for _, e := range s.events {
		if e.BatchID != batchID {
			continue
		}
		copy := *e
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}
