// Package repository defines the persistence interfaces for the analytics
// engine and their in-memory implementations. Logical tables: events,
// research events, user progress, achievements.
package repository

import (
	"context"
	"time"

	"github.com/okian/lumo/internal/domain/model"
)

// EventLog is the append-only store of analytics and research events, indexed
// by insert timestamp for range scans. Records are write-once: no update or
// delete is exposed. Appends are best-effort: failures are logged and
// reported via the ok flag, never raised, because losing a research data
// point must not break a user-visible flow.
type EventLog interface {
	// Append assigns an event id and insert timestamp, stores the event, and
	// returns the stored copy. ok is false when the log is unavailable.
	Append(ctx context.Context, e model.Event) (stored model.Event, ok bool)

	// AppendResearch stores an enriched research event. ok is false when the
	// log is unavailable.
	AppendResearch(ctx context.Context, e model.ResearchEvent) (ok bool)

	// Range returns events with start <= Timestamp <= end in chronological
	// order, using the timestamp index rather than a full scan.
	Range(ctx context.Context, start, end time.Time) []model.Event

	// ResearchRange is Range over the research log.
	ResearchRange(ctx context.Context, start, end time.Time) []model.ResearchEvent

	// Count returns the number of stored events.
	Count(ctx context.Context) int

	// ResearchCount returns the number of stored research events.
	ResearchCount(ctx context.Context) int
}

// FilterByType narrows a Range result to one event type.
func FilterByType(events []model.Event, t model.EventType) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// FilterByUser narrows a Range result to one user.
func FilterByUser(events []model.Event, userID string) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// ProgressStore holds one record per learner, replaced whole on write so a
// progress update is a single atomic put.
type ProgressStore interface {
	// Get returns the learner's record, or the zero-value default when
	// absent. Missing users are not an error.
	Get(ctx context.Context, userID string) model.Progress

	// Put replaces the learner's record. Write failures surface to the
	// caller; silently dropping a progress update would corrupt counters.
	Put(ctx context.Context, p model.Progress) error

	// All returns a snapshot of every record in first-insert order.
	All(ctx context.Context) []model.Progress
}

// AchievementsLog is the append-only history of badge awards feeding the
// weekly leaderboard.
type AchievementsLog interface {
	// Append stores one award, assigning its id.
	Append(ctx context.Context, a model.Award) error

	// Since returns awards with AwardedAt >= cutoff in append order.
	Since(ctx context.Context, cutoff time.Time) []model.Award
}
