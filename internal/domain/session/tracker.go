// Package session maintains running per-session statistics used to enrich
// research events.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Stats is the running state of one browser session at a point in time.
type Stats struct {
	SessionID string
	FirstSeen time.Time
	LastSeen  time.Time
	PageViews int
	Events    int
}

// Duration is the span between the first and last observed event.
func (s Stats) Duration() time.Duration {
	return s.LastSeen.Sub(s.FirstSeen)
}

// Tracker observes events per session and returns the session's stats as of
// that observation.
type Tracker interface {
	// Observe records one event for sessionID at the given time and returns
	// the updated stats snapshot, including this event.
	Observe(ctx context.Context, sessionID string, at time.Time, pageView bool) Stats

	// Size returns the number of sessions currently tracked.
	Size() int64
}

// entry is the tracked state for one session plus its eviction-order link.
type entry struct {
	stats Stats
	next  *entry
	prev  *entry
}

// inMemoryTracker implements Tracker with a bounded map. When the bound is
// exceeded the session with the oldest last activity is evicted; its stats
// restart from zero if it comes back.
type inMemoryTracker struct {
	mu       sync.Mutex
	sessions map[string]*entry
	head     *entry // most recently active
	tail     *entry // least recently active, evicted first
	maxSize  int    // 0 or negative = unbounded
	size     atomic.Int64
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		maxSize:  defaultMaxSessions,
		sessions: make(map[string]*entry),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Observe implements Tracker.
func (t *inMemoryTracker) Observe(_ context.Context, sessionID string, at time.Time, pageView bool) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions[sessionID]
	if !ok {
		e = &entry{stats: Stats{SessionID: sessionID, FirstSeen: at}}
		t.sessions[sessionID] = e
		t.size.Add(1)
	} else {
		t.unlink(e)
	}

	e.stats.LastSeen = at
	e.stats.Events++
	if pageView {
		e.stats.PageViews++
	}
	t.pushFront(e)

	if t.maxSize > 0 {
		for int(t.size.Load()) > t.maxSize {
			t.evictTail()
		}
	}

	return e.stats
}

// Size implements Tracker.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}

func (t *inMemoryTracker) pushFront(e *entry) {
	e.prev = nil
	e.next = t.head
	if t.head != nil {
		t.head.prev = e
	}
	t.head = e
	if t.tail == nil {
		t.tail = e
	}
}

func (t *inMemoryTracker) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else if t.head == e {
		t.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else if t.tail == e {
		t.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (t *inMemoryTracker) evictTail() {
	e := t.tail
	if e == nil {
		return
	}
	t.unlink(e)
	delete(t.sessions, e.stats.SessionID)
	t.size.Add(-1)
}
