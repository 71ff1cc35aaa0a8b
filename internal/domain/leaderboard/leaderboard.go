// Package leaderboard ranks learner progress records by points.
package leaderboard

import (
	"context"
	"sort"
	"time"

	"github.com/okian/lumo/internal/domain/level"
	"github.com/okian/lumo/internal/domain/model"
)

// DefaultWeeklyWindow is the trailing window for the weekly board.
const DefaultWeeklyWindow = 7 * 24 * time.Hour

// Entry is one all-time leaderboard row.
type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalPoints int    `json:"total_points"`
	Level       int    `json:"level"`
	LevelName   string `json:"level_name"`
	Badges      int    `json:"badges"`
	Streak      int    `json:"streak"`
}

// WeeklyEntry is one weekly leaderboard row. WeeklyPoints sums badge awards
// inside the window; the profile fields come from the learner's own progress
// record.
type WeeklyEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	WeeklyPoints int    `json:"weekly_points"`
	TotalPoints  int    `json:"total_points"`
	Level        int    `json:"level"`
	LevelName    string `json:"level_name"`
}

// ProgressLookup resolves a user id to their current progress record.
type ProgressLookup func(ctx context.Context, userID string) model.Progress

// AllTime ranks records descending by total points, taking up to limit rows.
// Ties keep the records' given order, which the progress store supplies as
// first-insert order, so repeated reads rank ties identically.
func AllTime(records []model.Progress, limit int) ([]Entry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	ranked := append([]model.Progress(nil), records...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPoints > ranked[j].TotalPoints
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Entry, len(ranked))
	for i, p := range ranked {
		out[i] = Entry{
			Rank:        i + 1,
			UserID:      p.UserID,
			TotalPoints: p.TotalPoints,
			Level:       p.Level,
			LevelName:   level.Name(p.Level),
			Badges:      len(p.Badges),
			Streak:      p.Streak,
		}
	}
	return out, nil
}

// Weekly sums badge-award points per user over the trailing window ending at
// now and ranks descending. Ties keep first-award order. Profile fields are
// resolved per user through lookup.
func Weekly(ctx context.Context, awards []model.Award, lookup ProgressLookup, limit int, now time.Time, window time.Duration) ([]WeeklyEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		window = DefaultWeeklyWindow
	}
	cutoff := now.Add(-window)

	points := make(map[string]int)
	var order []string // first-award order for stable ties
	for _, a := range awards {
		if a.AwardedAt.Before(cutoff) || a.AwardedAt.After(now) {
			continue
		}
		if _, seen := points[a.UserID]; !seen {
			order = append(order, a.UserID)
		}
		points[a.UserID] += a.Points
	}

	sort.SliceStable(order, func(i, j int) bool {
		return points[order[i]] > points[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]WeeklyEntry, len(order))
	for i, userID := range order {
		entry := WeeklyEntry{
			Rank:         i + 1,
			UserID:       userID,
			WeeklyPoints: points[userID],
		}
		if lookup != nil {
			p := lookup(ctx, userID)
			entry.TotalPoints = p.TotalPoints
			entry.Level = p.Level
			entry.LevelName = level.Name(p.Level)
		}
		out[i] = entry
	}
	return out, nil
}
