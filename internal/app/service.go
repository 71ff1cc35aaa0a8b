// Package service provides the analytics engine facade: the progress
// updater, tracking entry point, leaderboards and report generation, wired
// over the stores and the ingestion pipeline.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	eventqueue "github.com/okian/lumo/internal/adapters/mq/queue"
	workerpool "github.com/okian/lumo/internal/adapters/mq/worker"
	"github.com/okian/lumo/internal/adapters/repository"
	"github.com/okian/lumo/internal/domain/badge"
	"github.com/okian/lumo/internal/domain/leaderboard"
	"github.com/okian/lumo/internal/domain/level"
	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/internal/domain/points"
	"github.com/okian/lumo/internal/domain/report"
	"github.com/okian/lumo/internal/domain/session"
	"github.com/okian/lumo/pkg/logger"
	"github.com/okian/lumo/pkg/metrics"
)

// Service implements the progress and engagement analytics engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	events       *repository.InMemoryEventLog
	progress     *repository.InMemoryProgressStore
	achievements *repository.InMemoryAchievementsLog
	tracker      session.Tracker
	queue        eventqueue.Queue
	pool         *workerpool.Pool
	resolver     *points.Resolver

	// Configuration
	workerCount       int
	queueSize         int
	sessionCacheSize  int
	maxBoardLimit     int
	weeklyWindow      time.Duration
	activityOverrides map[string]int
	fallbackPoints    int

	// State
	started bool
	clock   func() time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      defaultWorkerCount,
		queueSize:        defaultQueueSize,
		sessionCacheSize: defaultSessionCacheSize,
		maxBoardLimit:    defaultMaxBoardLimit,
		weeklyWindow:     leaderboard.DefaultWeeklyWindow,
		fallbackPoints:   -1, // resolver default unless overridden
		clock:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores and the ingestion pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics engine...")

	s.events = repository.NewInMemoryEventLog(
		repository.WithClock(s.clock),
		repository.WithLogger(s.logger.Named("eventlog")),
	)
	s.progress = repository.NewInMemoryProgressStore()
	s.achievements = repository.NewInMemoryAchievementsLog()
	s.tracker = session.NewInMemoryTracker(
		session.WithMaxSessions(s.sessionCacheSize),
	)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	resolverOpts := []points.Option{points.WithOverrides(s.activityOverrides)}
	if s.fallbackPoints >= 0 {
		resolverOpts = append(resolverOpts, points.WithFallback(s.fallbackPoints))
	}
	s.resolver = points.NewResolver(resolverOpts...)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.events, s.tracker)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analytics engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("sessionCache", s.sessionCacheSize),
	)

	return nil
}

// Stop gracefully shuts down the engine. Queued tracking events are drained
// before the workers exit.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping analytics engine...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop(ctx)
	}
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.progress != nil {
		_ = s.progress.Close()
	}
	if s.achievements != nil {
		_ = s.achievements.Close()
	}

	s.started = false
	s.logger.Info(ctx, "analytics engine stopped")
}

// ActivityResult is what RecordActivity returns to the UI layer: the
// persisted record plus only the badges earned by this submission.
type ActivityResult struct {
	Progress     model.Progress
	NewBadges    []badge.Badge
	PointsEarned int
}

// RecordActivity applies one gamified activity submission for a learner.
// Unknown activity types still earn points and advance the streak; they are
// never fatal. Exactly one progress write happens per call, and no analytics
// event is emitted here: callers track analytics separately so progress
// keeping succeeds even when the analytics path is degraded.
func (s *Service) RecordActivity(ctx context.Context, userID string, activity model.ActivityType, pts ...int) (ActivityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ActivityResult{}, ErrNotStarted
	}
	if userID == "" {
		return ActivityResult{}, fmt.Errorf("%w: empty user id", ErrInvalidActivity)
	}

	p := s.progress.Get(ctx, userID)
	now := s.clock()

	switch activity {
	case model.ActivityLessonCompleted:
		p.LessonsCompleted++
	case model.ActivityTypingLesson:
		p.TypingLessons++
	case model.ActivitySafetyLesson:
		p.SafetyLessons++
	case model.ActivityCodingPuzzle:
		p.CodingPuzzles++
	case model.ActivityPerfectScore:
		p.PerfectScores++
	default:
		s.logger.Debug(ctx, "unknown activity type, counters untouched",
			logger.String("activity", string(activity)),
		)
	}

	earned := s.resolver.Resolve(activity)
	if len(pts) > 0 {
		earned = pts[0]
	}
	if earned > 0 {
		p.TotalPoints += earned
	}

	p.Streak = nextStreak(p.Streak, p.LastActivity, now)
	p.LastActivity = now

	prevLevel := p.Level
	p.Level = level.For(p.TotalPoints)
	if p.Level > prevLevel {
		metrics.RecordLevelUp()
	}

	newBadges := badge.Evaluate(p)
	for _, b := range newBadges {
		p.AddBadge(b.ID)
	}

	if err := s.progress.Put(ctx, p); err != nil {
		return ActivityResult{}, fmt.Errorf("persist progress: %w", err)
	}

	// Awards feed the weekly leaderboard; losing one skews a ranking but
	// must not fail the activity, which is already persisted.
	for _, b := range newBadges {
		award := model.Award{UserID: userID, BadgeID: b.ID, Points: b.Points, AwardedAt: now}
		if err := s.achievements.Append(ctx, award); err != nil {
			s.logger.Warn(ctx, "award append failed",
				logger.String("badge", b.ID),
				logger.Error(err),
			)
		}
	}

	metrics.RecordActivityRecorded()

	return ActivityResult{Progress: p.Copy(), NewBadges: newBadges, PointsEarned: earned}, nil
}

// nextStreak applies the consecutive-day rule: same calendar day keeps the
// streak, a one-day gap extends it, anything longer restarts at 1.
func nextStreak(current int, last, now time.Time) int {
	if last.IsZero() {
		return 1
	}
	switch daysBetween(last, now) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// daysBetween counts whole calendar days between two instants in now's
// location. Midnight-to-midnight spans are not always 24h (daylight saving
// shifts them by an hour), so the quotient is rounded, not truncated.
func daysBetween(last, now time.Time) int {
	loc := now.Location()
	last = last.In(loc)
	a := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)
	b := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// Track records one analytics event, best-effort. The event is queued for
// ingestion; a full queue or stopped engine drops it with a warning and
// returns false. It never returns an error by design.
func (s *Service) Track(ctx context.Context, userID, sessionID string, payload model.Payload) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || payload == nil || sessionID == "" {
		metrics.RecordEventDropped()
		return false
	}

	e := model.Event{
		Type:      payload.Kind(),
		Payload:   payload,
		SessionID: sessionID,
		UserID:    userID,
	}

	if ok := s.queue.Enqueue(ctx, e); !ok {
		s.logger.Warn(ctx, "tracking queue rejected event, dropping",
			logger.String("eventType", string(e.Type)),
			logger.String("sessionID", sessionID),
		)
		metrics.RecordEventDropped()
		return false
	}
	return true
}

// Progress returns the learner's current record, defaulting for unknown
// users.
func (s *Service) Progress(ctx context.Context, userID string) (model.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.Progress{}, ErrNotStarted
	}
	return s.progress.Get(ctx, userID), nil
}

// Leaderboard returns the all-time board, capped at the configured limit.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if limit > s.maxBoardLimit {
		limit = s.maxBoardLimit
	}
	return leaderboard.AllTime(s.progress.All(ctx), limit)
}

// WeeklyLeaderboard ranks badge-award points over the trailing window.
func (s *Service) WeeklyLeaderboard(ctx context.Context, limit int) ([]leaderboard.WeeklyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if limit > s.maxBoardLimit {
		limit = s.maxBoardLimit
	}
	now := s.clock()
	awards := s.achievements.Since(ctx, now.Add(-s.weeklyWindow))
	lookup := func(ctx context.Context, userID string) model.Progress {
		return s.progress.Get(ctx, userID)
	}
	return leaderboard.Weekly(ctx, awards, lookup, limit, now, s.weeklyWindow)
}

// CrownWeeklyChampion awards the weekly champion badge to the current #1 of
// the weekly board, if anyone holds that spot and does not have it yet. It
// returns the champion's user id, or empty when no one was crowned.
func (s *Service) CrownWeeklyChampion(ctx context.Context) (string, error) {
	top, err := s.WeeklyLeaderboard(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "", nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	champion, ok := badge.ByID(badge.WeeklyChampionID)
	if !ok {
		return "", nil
	}

	p := s.progress.Get(ctx, top[0].UserID)
	if !p.AddBadge(champion.ID) {
		return "", nil
	}
	if err := s.progress.Put(ctx, p); err != nil {
		return "", fmt.Errorf("persist champion badge: %w", err)
	}
	award := model.Award{UserID: p.UserID, BadgeID: champion.ID, Points: champion.Points, AwardedAt: s.clock()}
	if err := s.achievements.Append(ctx, award); err != nil {
		s.logger.Warn(ctx, "award append failed",
			logger.String("badge", champion.ID),
			logger.Error(err),
		)
	}
	return p.UserID, nil
}

// GenerateReport aggregates the logs over inclusive calendar dates.
func (s *Service) GenerateReport(ctx context.Context, startDate, endDate time.Time) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return report.Report{}, ErrNotStarted
	}

	genStart := time.Now()
	start, end := report.DayBounds(startDate, endDate)
	events := s.events.Range(ctx, start, end)
	research := s.events.ResearchRange(ctx, start, end)
	r := report.Generate(events, research, start, end)

	metrics.RecordReportGenerated()
	metrics.RecordReportDuration(float64(time.Since(genStart).Milliseconds()))
	s.logger.Info(ctx, "report generated",
		logger.Int("events", len(events)),
		logger.Int("researchEvents", len(research)),
	)
	return r, nil
}

// ResearchEvents returns the raw research set over inclusive calendar dates,
// for the JSON and CSV exports.
func (s *Service) ResearchEvents(ctx context.Context, startDate, endDate time.Time) ([]model.ResearchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	start, end := report.DayBounds(startDate, endDate)
	return s.events.ResearchRange(ctx, start, end), nil
}

// Drain blocks until the tracking queue is empty or ctx is done. Test and
// CLI helper for flushing the ingestion pipeline before reading the logs.
func (s *Service) Drain(ctx context.Context) error {
	for {
		s.mu.RLock()
		started, q, pool := s.started, s.queue, s.pool
		s.mu.RUnlock()
		if !started {
			return ErrNotStarted
		}
		// Caught up when every accepted event has been fully processed, not
		// merely dequeued.
		if pool.Processed() >= q.Enqueued(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Stats returns engine statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["events"] = s.events.Count(ctx)
		stats["researchEvents"] = s.events.ResearchCount(ctx)
		stats["learners"] = len(s.progress.All(ctx))
		stats["sessionsTracked"] = s.tracker.Size()

		metrics.UpdateQueueSize(s.queue.Len(ctx))
		metrics.UpdateSessionsTracked(s.tracker.Size())
	}

	return stats
}
