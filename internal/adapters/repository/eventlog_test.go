package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/lumo/internal/adapters/repository"
	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// manualClock hands out strictly increasing timestamps for deterministic
// range queries.
type manualClock struct {
	now time.Time
}

func (c *manualClock) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestEventLog_Append(t *testing.T) {
	Convey("Given an empty event log", t, func() {
		ctx := context.Background()
		clock := &manualClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		log := repository.NewInMemoryEventLog(repository.WithClock(clock.next))

		Convey("When an event is appended", func() {
			stored, ok := log.Append(ctx, model.Event{
				Type:      model.EventLessonInteraction,
				Payload:   model.LessonInteraction{LessonID: "lesson-1", InteractionType: model.InteractionCompleted},
				SessionID: "s-1",
				UserID:    "learner-1",
			})

			Convey("Then the stored copy carries an id and a log-assigned timestamp", func() {
				So(ok, ShouldBeTrue)
				So(stored.EventID, ShouldNotBeEmpty)
				So(stored.Timestamp.IsZero(), ShouldBeFalse)
				So(log.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When an event has no user", func() {
			stored, ok := log.Append(ctx, model.Event{
				Type:    model.EventEngagement,
				Payload: model.Engagement{EngagementType: model.EngagementPageView},
			})

			Convey("Then it is attributed to the anonymous user", func() {
				So(ok, ShouldBeTrue)
				So(stored.UserID, ShouldEqual, model.AnonymousUser)
			})
		})

		Convey("When the log is closed", func() {
			So(log.Close(), ShouldBeNil)
			_, ok := log.Append(ctx, model.Event{Type: model.EventEngagement})

			Convey("Then appends degrade to dropped no-ops", func() {
				So(ok, ShouldBeFalse)
				So(log.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestEventLog_Range(t *testing.T) {
	Convey("Given a log with events spread over time", t, func() {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		clock := &manualClock{now: base}
		log := repository.NewInMemoryEventLog(repository.WithClock(clock.next))

		users := []string{"a", "b", "a", "c", "a"}
		for _, u := range users {
			_, ok := log.Append(ctx, model.Event{
				Type:    model.EventLearningProgress,
				Payload: model.LearningProgress{LessonID: "lesson-1", Progress: 0.5},
				UserID:  u,
			})
			So(ok, ShouldBeTrue)
		}

		Convey("When querying the full window", func() {
			events := log.Range(ctx, base, base.Add(time.Hour))

			Convey("Then all events come back in chronological order", func() {
				So(events, ShouldHaveLength, 5)
				for i := 1; i < len(events); i++ {
					So(events[i].Timestamp.After(events[i-1].Timestamp), ShouldBeTrue)
				}
			})
		})

		Convey("When querying a sub-window", func() {
			// Events sit at base+1s .. base+5s.
			events := log.Range(ctx, base.Add(2*time.Second), base.Add(4*time.Second))

			Convey("Then only events inside the window are returned", func() {
				So(events, ShouldHaveLength, 3)
			})
		})

		Convey("When querying a window before any event", func() {
			So(log.Range(ctx, base.Add(-time.Hour), base), ShouldBeEmpty)
		})

		Convey("When filtering by user", func() {
			events := repository.FilterByUser(log.Range(ctx, base, base.Add(time.Hour)), "a")

			Convey("Then only that user's events remain, still ordered", func() {
				So(events, ShouldHaveLength, 3)
				for _, e := range events {
					So(e.UserID, ShouldEqual, "a")
				}
			})
		})
	})
}

func TestEventLog_Research(t *testing.T) {
	Convey("Given an event log", t, func() {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		clock := &manualClock{now: base}
		log := repository.NewInMemoryEventLog(repository.WithClock(clock.next))

		stored, ok := log.Append(ctx, model.Event{
			Type:      model.EventAccessibility,
			Payload:   model.Accessibility{Feature: "high_contrast", Enabled: true},
			SessionID: "s-9",
			UserID:    "learner-9",
		})
		So(ok, ShouldBeTrue)

		Convey("When a research event wrapping it is appended", func() {
			ok := log.AppendResearch(ctx, model.ResearchEvent{
				Event:           stored,
				SessionDuration: 90 * time.Second,
				PageViews:       4,
				TotalEvents:     12,
			})

			Convey("Then it is stored separately from raw events", func() {
				So(ok, ShouldBeTrue)
				So(log.ResearchCount(ctx), ShouldEqual, 1)
				So(log.Count(ctx), ShouldEqual, 1)
			})

			Convey("And it is returned by research range queries", func() {
				research := log.ResearchRange(ctx, base, base.Add(time.Hour))
				So(research, ShouldHaveLength, 1)
				So(research[0].EventID, ShouldEqual, stored.EventID)
				So(research[0].PageViews, ShouldEqual, 4)
			})
		})

		Convey("When the log is closed", func() {
			So(log.Close(), ShouldBeNil)

			Convey("Then research appends are dropped", func() {
				So(log.AppendResearch(ctx, model.ResearchEvent{Event: stored}), ShouldBeFalse)
			})
		})
	})
}

func TestFilterByType(t *testing.T) {
	Convey("Given a mixed slice of events", t, func() {
		events := []model.Event{
			{Type: model.EventLessonInteraction},
			{Type: model.EventEngagement},
			{Type: model.EventLessonInteraction},
		}

		Convey("Then filtering keeps only the requested type", func() {
			So(repository.FilterByType(events, model.EventLessonInteraction), ShouldHaveLength, 2)
			So(repository.FilterByType(events, model.EventConnectivity), ShouldBeEmpty)
		})
	})
}
