package model

import "time"

// ActivityType names a gamified activity submitted by the UI layer.
type ActivityType string

// Known activity types. Unknown values are tolerated by the progress updater:
// they still earn points and advance the streak but touch no counter.
const (
	ActivityLessonCompleted ActivityType = "lesson_completed"
	ActivityTypingLesson    ActivityType = "typing_lesson"
	ActivitySafetyLesson    ActivityType = "safety_lesson"
	ActivityCodingPuzzle    ActivityType = "coding_puzzle"
	ActivityPerfectScore    ActivityType = "perfect_score"
)

// Progress is one learner's cumulative gamification state. All counters are
// monotonically non-decreasing; Level is derived from TotalPoints and never
// stored independently of it.
type Progress struct {
	UserID           string
	TotalPoints      int
	Level            int
	Badges           []string // badge ids in earn order, never shrinks
	LessonsCompleted int
	TypingLessons    int
	SafetyLessons    int
	CodingPuzzles    int
	PerfectScores    int
	Streak           int
	LastActivity     time.Time // zero value means no activity yet
}

// NewProgress returns the default record for a learner with no recorded
// activity. The default is never persisted until the first activity.
func NewProgress(userID string) Progress {
	return Progress{UserID: userID, Level: 1}
}

// HasBadge reports whether the badge id has already been earned.
func (p Progress) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AddBadge appends the badge id if not already held. Returns true when the
// badge was newly added.
func (p *Progress) AddBadge(id string) bool {
	if p.HasBadge(id) {
		return false
	}
	p.Badges = append(p.Badges, id)
	return true
}

// Copy returns a deep copy so snapshots handed to readers cannot alias the
// stored badge slice.
func (p Progress) Copy() Progress {
	c := p
	c.Badges = append([]string(nil), p.Badges...)
	return c
}

// Award is one append-only record of a badge being earned, with the badge's
// point value at award time. The weekly leaderboard is computed over awards
// because cumulative totals carry no time dimension.
type Award struct {
	AwardID   string
	UserID    string
	BadgeID   string
	Points    int
	AwardedAt time.Time
}
