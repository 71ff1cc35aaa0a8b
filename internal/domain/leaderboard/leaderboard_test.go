package leaderboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/lumo/internal/domain/leaderboard"
	"github.com/okian/lumo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func progressWith(userID string, points int) model.Progress {
	p := model.NewProgress(userID)
	p.TotalPoints = points
	return p
}

func TestAllTime(t *testing.T) {
	Convey("Given progress records for several learners", t, func() {
		records := []model.Progress{
			progressWith("a", 120),
			progressWith("b", 300),
			progressWith("c", 120),
			progressWith("d", 10),
		}

		Convey("When building the full board", func() {
			board, err := leaderboard.AllTime(records, 10)
			So(err, ShouldBeNil)

			Convey("Then rows are ranked descending with contiguous ranks", func() {
				So(board, ShouldHaveLength, 4)
				So(board[0].UserID, ShouldEqual, "b")
				So(board[0].Rank, ShouldEqual, 1)
				So(board[3].UserID, ShouldEqual, "d")
				So(board[3].Rank, ShouldEqual, 4)
			})

			Convey("And ties keep the input order", func() {
				So(board[1].UserID, ShouldEqual, "a")
				So(board[2].UserID, ShouldEqual, "c")
			})
		})

		Convey("When the limit truncates the board", func() {
			board, err := leaderboard.AllTime(records, 2)
			So(err, ShouldBeNil)
			So(board, ShouldHaveLength, 2)
			So(board[1].UserID, ShouldEqual, "a")
		})

		Convey("When the limit is invalid", func() {
			_, err := leaderboard.AllTime(records, 0)
			So(errors.Is(err, leaderboard.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When there are no records", func() {
			board, err := leaderboard.AllTime(nil, 5)
			So(err, ShouldBeNil)
			So(board, ShouldBeEmpty)
		})
	})
}

func TestWeekly(t *testing.T) {
	Convey("Given badge awards across two weeks", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

		awards := []model.Award{
			{UserID: "a", BadgeID: "first_lesson", Points: 10, AwardedAt: now.AddDate(0, 0, -1)},
			{UserID: "b", BadgeID: "perfectionist", Points: 15, AwardedAt: now.AddDate(0, 0, -2)},
			{UserID: "a", BadgeID: "three_day_streak", Points: 15, AwardedAt: now.AddDate(0, 0, -3)},
			// Outside the window, must not count.
			{UserID: "b", BadgeID: "point_collector", Points: 50, AwardedAt: now.AddDate(0, 0, -10)},
			// In the future, must not count.
			{UserID: "c", BadgeID: "week_streak", Points: 30, AwardedAt: now.Add(time.Hour)},
		}

		lookup := func(_ context.Context, userID string) model.Progress {
			p := model.NewProgress(userID)
			p.TotalPoints = 999
			p.Level = 4
			return p
		}

		Convey("When building the weekly board", func() {
			board, err := leaderboard.Weekly(ctx, awards, lookup, 10, now, leaderboard.DefaultWeeklyWindow)
			So(err, ShouldBeNil)

			Convey("Then only in-window awards count", func() {
				So(board, ShouldHaveLength, 2)
				So(board[0].UserID, ShouldEqual, "a")
				So(board[0].WeeklyPoints, ShouldEqual, 25)
				So(board[1].UserID, ShouldEqual, "b")
				So(board[1].WeeklyPoints, ShouldEqual, 15)
			})

			Convey("And profile fields come from the lookup", func() {
				So(board[0].TotalPoints, ShouldEqual, 999)
				So(board[0].Level, ShouldEqual, 4)
				So(board[0].LevelName, ShouldEqual, "Adventurer")
			})
		})

		Convey("When two learners tie on weekly points", func() {
			tied := []model.Award{
				{UserID: "x", BadgeID: "first_lesson", Points: 10, AwardedAt: now.Add(-2 * time.Hour)},
				{UserID: "y", BadgeID: "first_lesson", Points: 10, AwardedAt: now.Add(-time.Hour)},
			}
			board, err := leaderboard.Weekly(ctx, tied, nil, 10, now, leaderboard.DefaultWeeklyWindow)
			So(err, ShouldBeNil)

			Convey("Then first-award order breaks the tie", func() {
				So(board[0].UserID, ShouldEqual, "x")
				So(board[1].UserID, ShouldEqual, "y")
			})
		})

		Convey("When no lookup is supplied", func() {
			board, err := leaderboard.Weekly(ctx, awards, nil, 10, now, 0)
			So(err, ShouldBeNil)
			So(board[0].TotalPoints, ShouldEqual, 0)
		})

		Convey("When the limit is invalid", func() {
			_, err := leaderboard.Weekly(ctx, awards, nil, 0, now, leaderboard.DefaultWeeklyWindow)
			So(errors.Is(err, leaderboard.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}
