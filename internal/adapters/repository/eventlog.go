package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/pkg/logger"
	"github.com/okian/lumo/pkg/metrics"
)

// InMemoryEventLog implements EventLog with two treap-indexed append-only
// tables, one for raw events and one for research events.
type InMemoryEventLog struct {
	mu sync.RWMutex

	root   *inode
	events map[uint64]model.Event
	seq    uint64

	rroot    *inode
	research map[uint64]model.ResearchEvent
	rseq     uint64

	clock  func() time.Time
	closed bool
	log    logger.Logger
}

// NewInMemoryEventLog constructs an event log with configuration options.
func NewInMemoryEventLog(opts ...LogOption) *InMemoryEventLog {
	l := &InMemoryEventLog{
		events:   make(map[uint64]model.Event),
		research: make(map[uint64]model.ResearchEvent),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.log == nil {
		l.log = logger.Get().Named("eventlog")
	}

	return l
}

// Append implements EventLog.Append. The event id and insert timestamp are
// assigned here; a caller-supplied Timestamp is ignored.
func (l *InMemoryEventLog) Append(ctx context.Context, e model.Event) (model.Event, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordEventLogAppendLatency(float64(time.Since(start).Milliseconds()))
	}()

	if e.UserID == "" {
		e.UserID = model.AnonymousUser
	}
	e.EventID = uuid.New().String()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.log.Warn(ctx, "event log unavailable, dropping event",
			logger.String("eventType", string(e.Type)),
			logger.String("sessionID", e.SessionID),
		)
		metrics.RecordEventDropped()
		metrics.RecordErrorByComponent("eventlog", "closed")
		return model.Event{}, false
	}
	e.Timestamp = l.clock()
	l.seq++
	seq := l.seq
	l.events[seq] = e
	l.root = insert(l.root, e.Timestamp.UnixNano(), seq, rand.Uint64())
	l.mu.Unlock()

	metrics.RecordEventAppended()
	return e, true
}

// AppendResearch implements EventLog.AppendResearch. The embedded event is
// stored as-is; it should already carry the id and timestamp assigned by
// Append.
func (l *InMemoryEventLog) AppendResearch(ctx context.Context, e model.ResearchEvent) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.log.Warn(ctx, "event log unavailable, dropping research event",
			logger.String("eventType", string(e.Type)),
		)
		metrics.RecordEventDropped()
		metrics.RecordErrorByComponent("eventlog", "closed")
		return false
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.clock()
	}
	l.rseq++
	seq := l.rseq
	l.research[seq] = e
	l.rroot = insert(l.rroot, e.Timestamp.UnixNano(), seq, rand.Uint64())
	l.mu.Unlock()

	metrics.RecordResearchEventAppended()
	return true
}

// Range implements EventLog.Range.
func (l *InMemoryEventLog) Range(_ context.Context, start, end time.Time) []model.Event {
	qstart := time.Now()
	defer func() {
		metrics.RecordEventLogQueryLatency(float64(time.Since(qstart).Milliseconds()))
	}()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Event
	collectRange(l.root, start.UnixNano(), end.UnixNano(), func(seq uint64) {
		if e, ok := l.events[seq]; ok {
			out = append(out, e)
		}
	})
	return out
}

// ResearchRange implements EventLog.ResearchRange.
func (l *InMemoryEventLog) ResearchRange(_ context.Context, start, end time.Time) []model.ResearchEvent {
	qstart := time.Now()
	defer func() {
		metrics.RecordEventLogQueryLatency(float64(time.Since(qstart).Milliseconds()))
	}()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.ResearchEvent
	collectRange(l.rroot, start.UnixNano(), end.UnixNano(), func(seq uint64) {
		if e, ok := l.research[seq]; ok {
			out = append(out, e)
		}
	})
	return out
}

// Count implements EventLog.Count.
func (l *InMemoryEventLog) Count(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// ResearchCount implements EventLog.ResearchCount.
func (l *InMemoryEventLog) ResearchCount(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.research)
}

// Close marks the log unavailable. Later appends degrade to logged no-ops,
// matching the best-effort analytics contract.
func (l *InMemoryEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
