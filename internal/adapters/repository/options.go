package repository

import (
	"time"

	"github.com/okian/lumo/pkg/logger"
)

// LogOption applies a configuration option to the InMemoryEventLog.
type LogOption func(*InMemoryEventLog)

// WithClock overrides the insert-timestamp source. Used by tests to pin
// timestamps.
func WithClock(clock func() time.Time) LogOption {
	return func(l *InMemoryEventLog) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the event log.
func WithLogger(lg logger.Logger) LogOption {
	return func(l *InMemoryEventLog) {
		if lg != nil {
			l.log = lg
		}
	}
}
