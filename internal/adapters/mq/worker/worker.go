// Package worker defines the ingestion workers that drain the tracking queue
// into the event and research logs.
package worker

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/lumo/internal/adapters/mq/queue"
	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/internal/domain/session"
	"github.com/okian/lumo/pkg/logger"
	"github.com/okian/lumo/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = queue.Event

// Appender is the slice of the event log workers write to.
type Appender interface {
	Append(ctx context.Context, e model.Event) (model.Event, bool)
	AppendResearch(ctx context.Context, e model.ResearchEvent) bool
}

// Tracker is the slice of the session tracker workers consult for research
// enrichment.
type Tracker interface {
	Observe(ctx context.Context, sessionID string, at time.Time, pageView bool) session.Stats
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes tracking events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker, draining in-flight work.
	Shutdown(ctx context.Context) error
}

// IngestWorker implements Worker for the tracking pipeline: append the raw
// event, fold it into the session stats, and mirror research-relevant events
// into the research log with the session-derived metrics.
type IngestWorker struct {
	queue    Queue
	appender Appender
	tracker  Tracker
	name     string

	shutdown chan struct{}
	done     chan struct{}

	// processed counts fully handled events; shared across a pool so the
	// engine can tell when the pipeline has caught up with the queue.
	processed *atomic.Int64

	logger logger.Logger
}

// NewIngestWorker creates a new worker with configuration options.
func NewIngestWorker(q Queue, appender Appender, tracker Tracker, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:     q,
		appender:  appender,
		tracker:   tracker,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: &atomic.Int64{},
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *IngestWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			w.drain(ctx, eventChan)
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			w.processEvent(ctx, event)
		}
	}
}

// drain consumes events already buffered on the channel so a graceful stop
// does not lose accepted work. It never blocks waiting for new events.
func (w *IngestWorker) drain(ctx context.Context, events <-chan Event) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			w.processEvent(ctx, event)
		default:
			return
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(workerShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// processEvent runs the ingestion pipeline for one tracking event. Failures
// are logged, never propagated: tracking is best-effort end to end.
func (w *IngestWorker) processEvent(ctx context.Context, e Event) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		metrics.RecordQueueDequeue()
		w.processed.Add(1)
	}()

	stored, ok := w.appender.Append(ctx, e)
	if !ok {
		metrics.RecordWorkerError()
		return
	}

	pageView := false
	if eng, isEng := stored.Payload.(model.Engagement); isEng {
		pageView = eng.EngagementType == model.EngagementPageView
	}
	stats := w.tracker.Observe(ctx, stored.SessionID, stored.Timestamp, pageView)

	if !stored.Type.ResearchRelevant() {
		return
	}

	research := model.ResearchEvent{
		Event:           stored,
		SessionDuration: stats.Duration(),
		PageViews:       stats.PageViews,
		TotalEvents:     stats.Events,
	}
	if !w.appender.AppendResearch(ctx, research) {
		metrics.RecordWorkerError()
		w.logger.Warn(ctx, "research append failed",
			logger.String("eventID", stored.EventID),
			logger.String("eventType", string(stored.Type)),
		)
	}
}

// Pool runs a fixed set of ingestion workers over one queue.
type Pool struct {
	workers   []*IngestWorker
	processed *atomic.Int64
}

// NewPool constructs count workers sharing the queue and sinks.
func NewPool(count int, q Queue, appender Appender, tracker Tracker) *Pool {
	if count < 1 {
		count = defaultWorkerCount
	}
	p := &Pool{
		workers:   make([]*IngestWorker, count),
		processed: &atomic.Int64{},
	}
	for i := range p.workers {
		p.workers[i] = NewIngestWorker(q, appender, tracker,
			WithName("worker-"+strconv.Itoa(i)),
		)
		p.workers[i].processed = p.processed
	}
	return p
}

// Processed returns the total number of events fully handled by the pool.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Stop shuts down all workers, waiting for each to drain.
func (p *Pool) Stop(ctx context.Context) {
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			w.logger.Warn(ctx, "worker shutdown", logger.Error(err))
		}
	}
	metrics.UpdateWorkerCount(0)
}
