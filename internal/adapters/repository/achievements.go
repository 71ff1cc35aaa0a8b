package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/pkg/metrics"
)

// InMemoryAchievementsLog implements AchievementsLog with an append-only
// slice. Entries carry the badge's point value at award time so windowed
// sums stay correct even if the catalog changes later.
type InMemoryAchievementsLog struct {
	mu     sync.RWMutex
	awards []model.Award
	closed bool
}

// NewInMemoryAchievementsLog constructs an empty achievements log.
func NewInMemoryAchievementsLog() *InMemoryAchievementsLog {
	return &InMemoryAchievementsLog{}
}

// Append implements AchievementsLog.Append, assigning the award id.
func (l *InMemoryAchievementsLog) Append(_ context.Context, a model.Award) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		metrics.RecordErrorByComponent("achievements_log", "closed")
		return fmt.Errorf("%w: achievements log", ErrClosed)
	}
	a.AwardID = uuid.New().String()
	if a.AwardedAt.IsZero() {
		a.AwardedAt = time.Now()
	}
	l.awards = append(l.awards, a)
	metrics.RecordBadgeAwarded()
	return nil
}

// Since implements AchievementsLog.Since. The log stays small relative to the
// event log, so a linear scan over append order is fine here.
func (l *InMemoryAchievementsLog) Since(_ context.Context, cutoff time.Time) []model.Award {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Award
	for _, a := range l.awards {
		if !a.AwardedAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out
}

// Close marks the log unavailable; later appends return ErrClosed.
func (l *InMemoryAchievementsLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
