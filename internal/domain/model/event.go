// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"time"
)

// AnonymousUser is recorded on events when no identity is available.
const AnonymousUser = "anonymous"

// EventType classifies a tracked learner action.
type EventType string

// Enumerated event types. Every tracked action carries exactly one of these.
const (
	EventLessonInteraction EventType = "lesson_interaction"
	EventGamification      EventType = "gamification"
	EventLearningProgress  EventType = "learning_progress"
	EventEngagement        EventType = "engagement"
	EventAccessibility     EventType = "accessibility"
	EventConnectivity      EventType = "connectivity"
	EventLanguageUsage     EventType = "language_usage"
)

// Valid reports whether t is one of the enumerated event types.
func (t EventType) Valid() bool {
	switch t {
	case EventLessonInteraction, EventGamification, EventLearningProgress,
		EventEngagement, EventAccessibility, EventConnectivity, EventLanguageUsage:
		return true
	}
	return false
}

// ResearchRelevant reports whether events of this type are copied into the
// research log. All enumerated types currently are.
func (t EventType) ResearchRelevant() bool {
	return t.Valid()
}

// Payload is the tagged union of per-type event payloads. Kind must match the
// Type field of the enclosing Event.
type Payload interface {
	Kind() EventType
}

// LessonInteraction describes a single interaction within a lesson.
type LessonInteraction struct {
	LessonID        string  `json:"lesson_id"`
	InteractionType string  `json:"interaction_type"` // started, completed, answer_submitted, hint_used
	Progress        float64 `json:"progress"`         // 0..1 fraction of the lesson
	Score           int     `json:"score"`
}

func (LessonInteraction) Kind() EventType { return EventLessonInteraction }

// InteractionCompleted marks the interaction that counts toward lesson
// completion rates.
const InteractionCompleted = "completed"

// Gamification records a badge, point or level change shown to the learner.
type Gamification struct {
	Action  string `json:"action"` // points_awarded, badge_earned, level_up
	BadgeID string `json:"badge_id,omitempty"`
	Points  int    `json:"points,omitempty"`
}

func (Gamification) Kind() EventType { return EventGamification }

// LearningProgress reports fractional progress through a lesson.
type LearningProgress struct {
	LessonID string  `json:"lesson_id"`
	Progress float64 `json:"progress"` // 0..1
}

func (LearningProgress) Kind() EventType { return EventLearningProgress }

// Engagement records a generic engagement signal such as a page view or click.
type Engagement struct {
	EngagementType string `json:"engagement_type"` // page_view, click, audio_play, ...
	Target         string `json:"target,omitempty"`
	DurationMS     int64  `json:"duration_ms,omitempty"`
}

func (Engagement) Kind() EventType { return EventEngagement }

// EngagementPageView is the engagement type counted as a page view for
// session statistics.
const EngagementPageView = "page_view"

// Accessibility records use of an accessibility feature.
type Accessibility struct {
	Feature string `json:"feature"` // high_contrast, large_text, screen_reader, ...
	Enabled bool   `json:"enabled"`
}

func (Accessibility) Kind() EventType { return EventAccessibility }

// Connectivity records an online/offline transition or probe.
type Connectivity struct {
	Online         bool   `json:"online"`
	ConnectionType string `json:"connection_type,omitempty"`
}

func (Connectivity) Kind() EventType { return EventConnectivity }

// LanguageUsage records which interface language was active and where.
type LanguageUsage struct {
	Language string `json:"language"` // BCP 47 style code, e.g. "en", "nd"
	Context  string `json:"context,omitempty"`
}

func (LanguageUsage) Kind() EventType { return EventLanguageUsage }

// Event is one recorded learner action. EventID and Timestamp are assigned by
// the event log on insert; events are never mutated or deleted afterwards.
type Event struct {
	EventID   string
	Type      EventType
	Payload   Payload
	Timestamp time.Time
	SessionID string
	UserID    string
}

// ResearchEvent is a denormalized copy of a research-relevant Event enriched
// with session-derived metrics captured at insert time.
type ResearchEvent struct {
	Event
	SessionDuration time.Duration
	PageViews       int
	TotalEvents     int
}

// PayloadJSON renders the payload as a JSON document for exports. A nil
// payload renders as an empty object.
func PayloadJSON(p Payload) string {
	if p == nil {
		return "{}"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}
