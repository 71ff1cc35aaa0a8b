package report_test

import (
	"testing"
	"time"

	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func event(t model.EventType, p model.Payload, session, user string, offset time.Duration) model.Event {
	return model.Event{
		Type:      t,
		Payload:   p,
		Timestamp: base.Add(offset),
		SessionID: session,
		UserID:    user,
	}
}

func TestGenerate_Empty(t *testing.T) {
	Convey("Given no events at all", t, func() {
		r := report.Generate(nil, nil, base, base.AddDate(0, 0, 7))

		Convey("Then every aggregate is zero rather than NaN", func() {
			So(r.Summary.TotalSessions, ShouldEqual, 0)
			So(r.Summary.AvgEventsPerSession, ShouldEqual, 0)
			So(r.Summary.AvgSessionMinutes, ShouldEqual, 0)
			So(r.Engagement.LessonCompletionRate, ShouldEqual, 0)
			So(r.Learning.AvgProgress, ShouldEqual, 0)
			So(r.Accessibility.UsageRate, ShouldEqual, 0)
			So(r.Connectivity.OfflineRate, ShouldEqual, 0)
		})

		Convey("And the zero-valued floor rates still trip their rules", func() {
			types := make(map[string]string)
			for _, rec := range r.Recommendations {
				types[rec.Type] = rec.Priority
			}
			So(r.Recommendations, ShouldHaveLength, 2)
			So(types["lesson_design"], ShouldEqual, report.PriorityHigh)
			So(types["accessibility"], ShouldEqual, report.PriorityMedium)
			So(types, ShouldNotContainKey, "offline_support")
		})
	})
}

func TestGenerate_Summary(t *testing.T) {
	Convey("Given events over two sessions", t, func() {
		events := []model.Event{
			event(model.EventEngagement, model.Engagement{EngagementType: "click"}, "s-1", "u-1", 0),
			event(model.EventEngagement, model.Engagement{EngagementType: "click"}, "s-1", "u-1", 10*time.Minute),
			event(model.EventEngagement, model.Engagement{EngagementType: "click"}, "s-2", "u-2", 0),
			event(model.EventEngagement, model.Engagement{EngagementType: "click"}, "s-2", "u-2", 4*time.Minute),
		}

		r := report.Generate(events, nil, base, base.Add(time.Hour))

		Convey("Then session and user counts are distinct counts", func() {
			So(r.Summary.TotalSessions, ShouldEqual, 2)
			So(r.Summary.TotalUsers, ShouldEqual, 2)
			So(r.Summary.TotalEvents, ShouldEqual, 4)
		})

		Convey("And averages derive from per-session spans", func() {
			So(r.Summary.AvgEventsPerSession, ShouldEqual, 2.0)
			So(r.Summary.AvgSessionMinutes, ShouldEqual, 7.0)
		})
	})
}

func TestGenerate_EngagementAndRecommendations(t *testing.T) {
	Convey("Given lesson interactions with a poor completion rate", t, func() {
		var events []model.Event
		for i := 0; i < 10; i++ {
			interaction := "started"
			if i < 3 {
				interaction = model.InteractionCompleted
			}
			events = append(events, event(
				model.EventLessonInteraction,
				model.LessonInteraction{LessonID: "lesson-1", InteractionType: interaction},
				"s-1", "u-1", time.Duration(i)*time.Minute,
			))
		}

		r := report.Generate(events, nil, base, base.Add(time.Hour))

		Convey("Then the completion rate reflects completed interactions", func() {
			So(r.Engagement.LessonInteractionEvents, ShouldEqual, 10)
			So(r.Engagement.LessonCompletionRate, ShouldAlmostEqual, 0.3)
		})

		Convey("And a high-priority lesson design recommendation fires", func() {
			types := make(map[string]string)
			for _, rec := range r.Recommendations {
				types[rec.Type] = rec.Priority
			}
			So(types["lesson_design"], ShouldEqual, report.PriorityHigh)
		})

		Convey("And the low accessibility usage recommendation fires too", func() {
			types := make(map[string]string)
			for _, rec := range r.Recommendations {
				types[rec.Type] = rec.Priority
			}
			So(types["accessibility"], ShouldEqual, report.PriorityMedium)
		})
	})

	Convey("Given a healthy completion rate", t, func() {
		var events []model.Event
		for i := 0; i < 10; i++ {
			interaction := model.InteractionCompleted
			if i >= 8 {
				interaction = "started"
			}
			events = append(events, event(
				model.EventLessonInteraction,
				model.LessonInteraction{LessonID: "lesson-1", InteractionType: interaction},
				"s-1", "u-1", time.Duration(i)*time.Minute,
			))
		}

		r := report.Generate(events, nil, base, base.Add(time.Hour))

		Convey("Then no lesson design recommendation fires", func() {
			for _, rec := range r.Recommendations {
				So(rec.Type, ShouldNotEqual, "lesson_design")
			}
		})
	})
}

func TestGenerate_Learning(t *testing.T) {
	Convey("Given research events across lessons", t, func() {
		research := []model.ResearchEvent{
			{Event: event(model.EventLearningProgress, model.LearningProgress{LessonID: "alpha", Progress: 0.2}, "s", "u", 0)},
			{Event: event(model.EventLearningProgress, model.LearningProgress{LessonID: "alpha", Progress: 0.8}, "s", "u", 30*time.Minute)},
			{Event: event(model.EventLearningProgress, model.LearningProgress{LessonID: "beta", Progress: 0.5}, "s", "u", 0)},
			{Event: event(model.EventLessonInteraction, model.LessonInteraction{LessonID: "beta", InteractionType: "started"}, "s", "u", time.Minute)},
		}

		r := report.Generate(nil, research, base, base.Add(time.Hour))

		Convey("Then event counts split by type", func() {
			So(r.Learning.LearningProgressEvents, ShouldEqual, 3)
			So(r.Learning.LessonInteractionEvents, ShouldEqual, 1)
		})

		Convey("And average progress covers learning progress events", func() {
			So(r.Learning.AvgProgress, ShouldAlmostEqual, 0.5)
		})

		Convey("And top lessons rank by frequency", func() {
			So(r.Learning.TopLessons, ShouldHaveLength, 2)
			So(r.Learning.TopLessons[0].Key, ShouldEqual, "alpha")
			So(r.Learning.TopLessons[0].Count, ShouldEqual, 2)
			So(r.Learning.TopLessons[1].Key, ShouldEqual, "beta")
			So(r.Learning.TopLessons[1].Count, ShouldEqual, 2)
		})

		Convey("And per-lesson stats carry spans and averages", func() {
			So(r.Learning.Lessons, ShouldHaveLength, 2)
			So(r.Learning.Lessons[0].LessonID, ShouldEqual, "alpha")
			So(r.Learning.Lessons[0].Events, ShouldEqual, 2)
			So(r.Learning.Lessons[0].AvgProgress, ShouldAlmostEqual, 0.5)
			So(r.Learning.Lessons[0].Minutes, ShouldAlmostEqual, 30.0)
		})
	})
}

func TestGenerate_Connectivity(t *testing.T) {
	Convey("Given mostly offline connectivity events", t, func() {
		var events []model.Event
		for i := 0; i < 10; i++ {
			events = append(events, event(
				model.EventConnectivity,
				model.Connectivity{Online: i >= 4},
				"s-1", "u-1", time.Duration(i)*time.Minute,
			))
		}

		r := report.Generate(events, nil, base, base.Add(time.Hour))

		Convey("Then online and offline are counted", func() {
			So(r.Connectivity.Events, ShouldEqual, 10)
			So(r.Connectivity.Offline, ShouldEqual, 4)
			So(r.Connectivity.OfflineRate, ShouldAlmostEqual, 0.4)
		})

		Convey("And the offline support recommendation fires", func() {
			found := false
			for _, rec := range r.Recommendations {
				if rec.Type == "offline_support" {
					found = true
					So(rec.Priority, ShouldEqual, report.PriorityHigh)
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestGenerate_Language(t *testing.T) {
	Convey("Given language usage events", t, func() {
		events := []model.Event{
			event(model.EventLanguageUsage, model.LanguageUsage{Language: "nd", Context: "lesson"}, "s", "u", 0),
			event(model.EventLanguageUsage, model.LanguageUsage{Language: "en", Context: "lesson"}, "s", "u", time.Minute),
			event(model.EventLanguageUsage, model.LanguageUsage{Language: "nd", Context: "menu"}, "s", "u", 2*time.Minute),
		}

		r := report.Generate(events, nil, base, base.Add(time.Hour))

		Convey("Then the full language distribution is reported", func() {
			So(r.Language.Events, ShouldEqual, 3)
			So(r.Language.Languages, ShouldHaveLength, 2)
			So(r.Language.Languages[0].Key, ShouldEqual, "nd")
			So(r.Language.Languages[0].Count, ShouldEqual, 2)
		})

		Convey("And contexts rank with first-seen tie-breaks", func() {
			So(r.Language.TopContexts[0].Key, ShouldEqual, "lesson")
		})
	})
}

func TestDayBounds(t *testing.T) {
	Convey("Given two calendar dates", t, func() {
		start, end := report.DayBounds(
			time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC),
			time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC),
		)

		Convey("Then the window spans whole days inclusively", func() {
			So(start, ShouldResemble, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
			So(end.After(time.Date(2026, 3, 5, 23, 59, 58, 0, time.UTC)), ShouldBeTrue)
			So(end.Before(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})
	})
}

func TestTopStability(t *testing.T) {
	Convey("Given engagement types with tied counts", t, func() {
		var events []model.Event
		types := []string{"click", "scroll", "click", "scroll", "hover"}
		for i, et := range types {
			events = append(events, event(
				model.EventEngagement,
				model.Engagement{EngagementType: et},
				"s", "u", time.Duration(i)*time.Second,
			))
		}

		r1 := report.Generate(events, nil, base, base.Add(time.Hour))
		r2 := report.Generate(events, nil, base, base.Add(time.Hour))

		Convey("Then repeated generation orders ties identically", func() {
			So(r1.Engagement.TopEngagementTypes, ShouldResemble, r2.Engagement.TopEngagementTypes)
			So(r1.Engagement.TopEngagementTypes[0].Key, ShouldEqual, "click")
			So(r1.Engagement.TopEngagementTypes[1].Key, ShouldEqual, "scroll")
			So(r1.Engagement.TopEngagementTypes[2].Key, ShouldEqual, "hover")
		})
	})
}
