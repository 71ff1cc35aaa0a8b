// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the /metrics listen address, e.g. ":9091".
	// Empty disables the metrics endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// QueueSize bounds the in-memory tracking queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// SessionCacheSize bounds the session tracker.
	SessionCacheSize int `koanf:"session_cache_size"`

	// MaxLeaderboardLimit caps leaderboard query limits.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// WeeklyWindowDays sets the trailing window of the weekly leaderboard.
	WeeklyWindowDays int `koanf:"weekly_window_days"`

	// ActivityPoints overrides point values per activity type.
	ActivityPoints map[string]int `koanf:"activity_points"`

	// DefaultActivityPoints is used for unknown activity types.
	DefaultActivityPoints int `koanf:"default_activity_points"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		MetricsAddr:           ":9091",
		QueueSize:             10_000,
		WorkerCount:           2,
		SessionCacheSize:      10_000,
		MaxLeaderboardLimit:   100,
		WeeklyWindowDays:      7,
		ActivityPoints:        map[string]int{},
		DefaultActivityPoints: 5,
	}
}
