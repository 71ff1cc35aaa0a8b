package service

import (
	"time"

	"github.com/okian/lumo/pkg/logger"
)

// Default engine configuration constants.
const (
	defaultWorkerCount      = 2
	defaultQueueSize        = 10000
	defaultSessionCacheSize = 10000
	defaultMaxBoardLimit    = 100
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the tracking queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSessionCacheSize bounds the session tracker.
func WithSessionCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.sessionCacheSize = size
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard query limits.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxBoardLimit = limit
		}
	}
}

// WithWeeklyWindow sets the trailing window for the weekly leaderboard.
func WithWeeklyWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.weeklyWindow = window
		}
	}
}

// WithActivityPoints overrides per-activity point values.
func WithActivityPoints(overrides map[string]int) Option {
	return func(s *Service) {
		s.activityOverrides = overrides
	}
}

// WithFallbackPoints sets the point value for unknown activity types.
func WithFallbackPoints(pts int) Option {
	return func(s *Service) {
		if pts >= 0 {
			s.fallbackPoints = pts
		}
	}
}

// WithClock overrides the engine's time source. Used by tests to simulate
// multi-day activity.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}
