// Package points resolves activity types to point values.
package points

import "github.com/okian/lumo/internal/domain/model"

// Default point values per activity type. Unknown types fall back to
// defaultFallback so new activity types never hard-fail old callers.
const (
	defaultLessonCompleted = 10
	defaultTypingLesson    = 15
	defaultSafetyLesson    = 15
	defaultCodingPuzzle    = 20
	defaultPerfectScore    = 25
	defaultFallback        = 5
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithOverrides replaces point values for the given activity types. Values
// below zero are ignored.
func WithOverrides(overrides map[string]int) Option {
	return func(r *Resolver) {
		for activity, pts := range overrides {
			if pts >= 0 {
				r.byActivity[model.ActivityType(activity)] = pts
			}
		}
	}
}

// WithFallback sets the value for unknown activity types.
func WithFallback(pts int) Option {
	return func(r *Resolver) {
		if pts >= 0 {
			r.fallback = pts
		}
	}
}

// Resolver is a pure activity-to-points table.
type Resolver struct {
	byActivity map[model.ActivityType]int
	fallback   int
}

// NewResolver creates a resolver with built-in defaults and options applied.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		byActivity: map[model.ActivityType]int{
			model.ActivityLessonCompleted: defaultLessonCompleted,
			model.ActivityTypingLesson:    defaultTypingLesson,
			model.ActivitySafetyLesson:    defaultSafetyLesson,
			model.ActivityCodingPuzzle:    defaultCodingPuzzle,
			model.ActivityPerfectScore:    defaultPerfectScore,
		},
		fallback: defaultFallback,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the point value for an activity type.
func (r *Resolver) Resolve(activity model.ActivityType) int {
	if pts, ok := r.byActivity[activity]; ok {
		return pts
	}
	return r.fallback
}
