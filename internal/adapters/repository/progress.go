package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/pkg/metrics"
)

// InMemoryProgressStore implements ProgressStore with a keyed map. Insertion
// order is retained so leaderboard tie-breaks stay stable across reads.
type InMemoryProgressStore struct {
	mu     sync.RWMutex
	byUser map[string]model.Progress
	order  []string
	closed bool
}

// NewInMemoryProgressStore constructs an empty progress store.
func NewInMemoryProgressStore() *InMemoryProgressStore {
	return &InMemoryProgressStore{
		byUser: make(map[string]model.Progress),
	}
}

// Get implements ProgressStore.Get. A missing user yields the zero-value
// default record, never an error; the default is not persisted.
func (s *InMemoryProgressStore) Get(_ context.Context, userID string) model.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.byUser[userID]; ok {
		return p.Copy()
	}
	return model.NewProgress(userID)
}

// Put implements ProgressStore.Put with a full-record replace.
func (s *InMemoryProgressStore) Put(_ context.Context, p model.Progress) error {
	start := time.Now()
	defer func() {
		metrics.RecordProgressWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if p.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		metrics.RecordErrorByComponent("progress_store", "closed")
		return fmt.Errorf("%w: progress store", ErrClosed)
	}
	if _, ok := s.byUser[p.UserID]; !ok {
		s.order = append(s.order, p.UserID)
	}
	s.byUser[p.UserID] = p.Copy()
	metrics.UpdateLearnersTotal(len(s.byUser))
	return nil
}

// All implements ProgressStore.All.
func (s *InMemoryProgressStore) All(_ context.Context) []model.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Progress, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byUser[id].Copy())
	}
	return out
}

// Close marks the store unavailable; later writes return ErrClosed.
func (s *InMemoryProgressStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
