package session

// defaultMaxSessions bounds the tracker when no option is supplied.
const defaultMaxSessions = 10000

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSessions bounds the number of tracked sessions. Zero or negative
// means unbounded.
func WithMaxSessions(n int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = n
	}
}
