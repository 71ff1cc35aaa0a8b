// Package badge holds the static badge catalog and the pure rule engine that
// maps progress counters to earned badges.
package badge

import "github.com/okian/lumo/internal/domain/model"

// Counter names a progress counter a requirement can test.
type Counter string

// Counters addressable by badge requirements.
const (
	CounterLessonsCompleted Counter = "lessons_completed"
	CounterTypingLessons    Counter = "typing_lessons"
	CounterSafetyLessons    Counter = "safety_lessons"
	CounterCodingPuzzles    Counter = "coding_puzzles"
	CounterPerfectScores    Counter = "perfect_scores"
	CounterTotalPoints      Counter = "total_points"
	CounterStreak           Counter = "streak"
)

// RequirementKind discriminates requirement predicates.
type RequirementKind string

const (
	// KindCounter awards when a progress counter reaches a threshold.
	KindCounter RequirementKind = "counter"
	// KindWeeklyLeaderboard awards for holding a weekly leaderboard position.
	// Not evaluated by Evaluate; the engine crowns it from ranking results.
	KindWeeklyLeaderboard RequirementKind = "weekly_leaderboard"
)

// Requirement is a typed predicate over progress counters.
type Requirement struct {
	Kind      RequirementKind
	Counter   Counter
	Threshold int
	Position  int // for KindWeeklyLeaderboard
}

// Badge is one entry of the static catalog. Points are awarded once, into the
// achievements log, and do not feed TotalPoints.
type Badge struct {
	ID          string
	Name        string
	Description string
	Points      int
	Requirement Requirement
}

// WeeklyChampionID is the badge crowned from the weekly leaderboard.
const WeeklyChampionID = "weekly_champion"

func counter(c Counter, n int) Requirement {
	return Requirement{Kind: KindCounter, Counter: c, Threshold: n}
}

// catalog is immutable static configuration loaded at startup; there is no
// dynamic registration.
var catalog = []Badge{
	{ID: "first_lesson", Name: "First Lesson!", Description: "Complete your first lesson", Points: 10, Requirement: counter(CounterLessonsCompleted, 1)},
	{ID: "dedicated_learner", Name: "Dedicated Learner", Description: "Complete 10 lessons", Points: 25, Requirement: counter(CounterLessonsCompleted, 10)},
	{ID: "lesson_master", Name: "Lesson Master", Description: "Complete 25 lessons", Points: 50, Requirement: counter(CounterLessonsCompleted, 25)},
	{ID: "typing_novice", Name: "Typing Novice", Description: "Finish 5 typing lessons", Points: 15, Requirement: counter(CounterTypingLessons, 5)},
	{ID: "typing_pro", Name: "Typing Pro", Description: "Finish 15 typing lessons", Points: 40, Requirement: counter(CounterTypingLessons, 15)},
	{ID: "safety_scout", Name: "Safety Scout", Description: "Finish 5 online safety lessons", Points: 15, Requirement: counter(CounterSafetyLessons, 5)},
	{ID: "safety_champion", Name: "Safety Champion", Description: "Finish 15 online safety lessons", Points: 40, Requirement: counter(CounterSafetyLessons, 15)},
	{ID: "puzzle_solver", Name: "Puzzle Solver", Description: "Solve 5 coding puzzles", Points: 20, Requirement: counter(CounterCodingPuzzles, 5)},
	{ID: "puzzle_master", Name: "Puzzle Master", Description: "Solve 20 coding puzzles", Points: 60, Requirement: counter(CounterCodingPuzzles, 20)},
	{ID: "perfectionist", Name: "Perfectionist", Description: "Earn your first perfect score", Points: 15, Requirement: counter(CounterPerfectScores, 1)},
	{ID: "flawless_five", Name: "Flawless Five", Description: "Earn 5 perfect scores", Points: 35, Requirement: counter(CounterPerfectScores, 5)},
	{ID: "three_day_streak", Name: "On a Roll", Description: "Learn 3 days in a row", Points: 15, Requirement: counter(CounterStreak, 3)},
	{ID: "week_streak", Name: "Unstoppable", Description: "Learn 7 days in a row", Points: 30, Requirement: counter(CounterStreak, 7)},
	{ID: "point_collector", Name: "Point Collector", Description: "Collect 500 points", Points: 50, Requirement: counter(CounterTotalPoints, 500)},
	{ID: WeeklyChampionID, Name: "Weekly Champion", Description: "Top the weekly leaderboard", Points: 100, Requirement: Requirement{Kind: KindWeeklyLeaderboard, Position: 1}},
}

// Catalog returns a copy of the badge catalog.
func Catalog() []Badge {
	return append([]Badge(nil), catalog...)
}

// ByID looks up a catalog entry. The second return is false for unknown ids.
func ByID(id string) (Badge, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// counterValue reads the named counter off a progress record.
func counterValue(p model.Progress, c Counter) int {
	switch c {
	case CounterLessonsCompleted:
		return p.LessonsCompleted
	case CounterTypingLessons:
		return p.TypingLessons
	case CounterSafetyLessons:
		return p.SafetyLessons
	case CounterCodingPuzzles:
		return p.CodingPuzzles
	case CounterPerfectScores:
		return p.PerfectScores
	case CounterTotalPoints:
		return p.TotalPoints
	case CounterStreak:
		return p.Streak
	}
	return 0
}

// Evaluate returns the catalog badges whose counter requirement is satisfied
// by p and that p has not already earned. It is pure: the caller must merge
// the result into p.Badges before evaluating again, or the same badges will
// be reported as newly earned on every call.
func Evaluate(p model.Progress) []Badge {
	var earned []Badge
	for _, b := range catalog {
		if b.Requirement.Kind != KindCounter {
			continue
		}
		if p.HasBadge(b.ID) {
			continue
		}
		if counterValue(p, b.Requirement.Counter) >= b.Requirement.Threshold {
			earned = append(earned, b)
		}
	}
	return earned
}
