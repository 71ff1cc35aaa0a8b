// Package report aggregates the event and research logs over a date range
// into a structured research report. Every sub-report is a pure reducer over
// the filtered event set; all rates and averages are defined as 0 when their
// denominator is empty.
package report

import (
	"sort"
	"time"

	"github.com/okian/lumo/internal/domain/model"
)

const topN = 5

// CountItem is one key with its occurrence count, ordered by frequency with
// first-seen tie-breaks.
type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary describes the overall shape of the window.
type Summary struct {
	TotalSessions       int     `json:"total_sessions"`
	TotalUsers          int     `json:"total_users"`
	TotalEvents         int     `json:"total_events"`
	TotalResearchEvents int     `json:"total_research_events"`
	AvgEventsPerSession float64 `json:"avg_events_per_session"`
	AvgSessionMinutes   float64 `json:"avg_session_minutes"`
}

// Engagement aggregates engagement-flavored activity.
type Engagement struct {
	EngagementEvents        int         `json:"engagement_events"`
	LessonInteractionEvents int         `json:"lesson_interaction_events"`
	GamificationEvents      int         `json:"gamification_events"`
	TopEngagementTypes      []CountItem `json:"top_engagement_types"`
	LessonCompletionRate    float64     `json:"lesson_completion_rate"`
}

// LessonStat is the per-lesson aggregation inside the learning sub-report.
type LessonStat struct {
	LessonID    string  `json:"lesson_id"`
	Events      int     `json:"events"`
	AvgProgress float64 `json:"avg_progress"`
	Minutes     float64 `json:"minutes"` // span between first and last event
}

// Learning aggregates the research log's learning signal.
type Learning struct {
	LearningProgressEvents  int          `json:"learning_progress_events"`
	LessonInteractionEvents int          `json:"lesson_interaction_events"`
	AvgProgress             float64      `json:"avg_progress"`
	TopLessons              []CountItem  `json:"top_lessons"`
	Lessons                 []LessonStat `json:"lessons"`
}

// Accessibility aggregates accessibility feature usage.
type Accessibility struct {
	Events      int         `json:"events"`
	TopFeatures []CountItem `json:"top_features"`
	UsageRate   float64     `json:"usage_rate"` // accessibility events / all events
}

// Language aggregates interface language usage.
type Language struct {
	Events      int         `json:"events"`
	Languages   []CountItem `json:"languages"` // full frequency distribution
	TopContexts []CountItem `json:"top_contexts"`
}

// Connectivity aggregates online/offline signals.
type Connectivity struct {
	Events      int     `json:"events"`
	Online      int     `json:"online"`
	Offline     int     `json:"offline"`
	OfflineRate float64 `json:"offline_rate"`
}

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Recommendation is one rule-driven suggestion derived from the sub-reports.
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// Report is the on-demand aggregation over a date-bounded window. It is
// never persisted.
type Report struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	Summary         Summary          `json:"summary"`
	Engagement      Engagement       `json:"engagement"`
	Learning        Learning         `json:"learning"`
	Accessibility   Accessibility    `json:"accessibility"`
	Language        Language         `json:"language"`
	Connectivity    Connectivity     `json:"connectivity"`
	Recommendations []Recommendation `json:"recommendations"`
}

// DayBounds widens two calendar dates to an inclusive [startOfDay, endOfDay]
// window in the dates' locations.
func DayBounds(startDate, endDate time.Time) (start, end time.Time) {
	start = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	end = time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), endDate.Location())
	return start, end
}

// Generate builds a report from pre-filtered event sets. Callers pass the
// result of range queries over [start, end]; Generate itself does not
// re-filter.
func Generate(events []model.Event, research []model.ResearchEvent, start, end time.Time) Report {
	r := Report{
		GeneratedAt: time.Now(),
		Start:       start,
		End:         end,
	}

	r.Summary = summarize(events, research)
	r.Engagement = reduceEngagement(events)
	r.Learning = reduceLearning(research)
	r.Accessibility = reduceAccessibility(events)
	r.Language = reduceLanguage(events)
	r.Connectivity = reduceConnectivity(events)
	r.Recommendations = recommend(r)

	return r
}

func summarize(events []model.Event, research []model.ResearchEvent) Summary {
	s := Summary{
		TotalEvents:         len(events),
		TotalResearchEvents: len(research),
	}

	type span struct{ first, last time.Time }
	sessions := make(map[string]*span)
	users := make(map[string]struct{})
	for _, e := range events {
		users[e.UserID] = struct{}{}
		sp, ok := sessions[e.SessionID]
		if !ok {
			sessions[e.SessionID] = &span{first: e.Timestamp, last: e.Timestamp}
			continue
		}
		if e.Timestamp.Before(sp.first) {
			sp.first = e.Timestamp
		}
		if e.Timestamp.After(sp.last) {
			sp.last = e.Timestamp
		}
	}

	s.TotalSessions = len(sessions)
	s.TotalUsers = len(users)
	if s.TotalSessions > 0 {
		s.AvgEventsPerSession = float64(s.TotalEvents) / float64(s.TotalSessions)
		var totalMinutes float64
		for _, sp := range sessions {
			totalMinutes += sp.last.Sub(sp.first).Minutes()
		}
		s.AvgSessionMinutes = totalMinutes / float64(s.TotalSessions)
	}
	return s
}

func reduceEngagement(events []model.Event) Engagement {
	var out Engagement
	engagementTypes := newCounter()
	completed := 0

	for _, e := range events {
		switch e.Type {
		case model.EventEngagement:
			out.EngagementEvents++
			if p, ok := e.Payload.(model.Engagement); ok {
				engagementTypes.add(p.EngagementType)
			}
		case model.EventLessonInteraction:
			out.LessonInteractionEvents++
			if p, ok := e.Payload.(model.LessonInteraction); ok && p.InteractionType == model.InteractionCompleted {
				completed++
			}
		case model.EventGamification:
			out.GamificationEvents++
		}
	}

	out.TopEngagementTypes = engagementTypes.top(topN)
	if out.LessonInteractionEvents > 0 {
		out.LessonCompletionRate = float64(completed) / float64(out.LessonInteractionEvents)
	}
	return out
}

func reduceLearning(research []model.ResearchEvent) Learning {
	var out Learning
	lessons := newCounter()

	type acc struct {
		events        int
		progressSum   float64
		progressCount int
		first, last   time.Time
	}
	perLesson := make(map[string]*acc)
	var lessonOrder []string

	var progressSum float64
	progressCount := 0

	observe := func(lessonID string, ts time.Time, progress float64, hasProgress bool) {
		if lessonID == "" {
			return
		}
		lessons.add(lessonID)
		a, ok := perLesson[lessonID]
		if !ok {
			a = &acc{first: ts, last: ts}
			perLesson[lessonID] = a
			lessonOrder = append(lessonOrder, lessonID)
		}
		a.events++
		if ts.Before(a.first) {
			a.first = ts
		}
		if ts.After(a.last) {
			a.last = ts
		}
		if hasProgress {
			a.progressSum += progress
			a.progressCount++
		}
	}

	for _, e := range research {
		switch e.Type {
		case model.EventLearningProgress:
			out.LearningProgressEvents++
			if p, ok := e.Payload.(model.LearningProgress); ok {
				progressSum += p.Progress
				progressCount++
				observe(p.LessonID, e.Timestamp, p.Progress, true)
			}
		case model.EventLessonInteraction:
			out.LessonInteractionEvents++
			if p, ok := e.Payload.(model.LessonInteraction); ok {
				observe(p.LessonID, e.Timestamp, p.Progress, p.Progress > 0)
			}
		}
	}

	if progressCount > 0 {
		out.AvgProgress = progressSum / float64(progressCount)
	}
	out.TopLessons = lessons.top(topN)

	out.Lessons = make([]LessonStat, 0, len(lessonOrder))
	for _, id := range lessonOrder {
		a := perLesson[id]
		stat := LessonStat{
			LessonID: id,
			Events:   a.events,
			Minutes:  a.last.Sub(a.first).Minutes(),
		}
		if a.progressCount > 0 {
			stat.AvgProgress = a.progressSum / float64(a.progressCount)
		}
		out.Lessons = append(out.Lessons, stat)
	}
	return out
}

func reduceAccessibility(events []model.Event) Accessibility {
	var out Accessibility
	features := newCounter()

	for _, e := range events {
		if e.Type != model.EventAccessibility {
			continue
		}
		out.Events++
		if p, ok := e.Payload.(model.Accessibility); ok {
			features.add(p.Feature)
		}
	}

	out.TopFeatures = features.top(topN)
	if len(events) > 0 {
		out.UsageRate = float64(out.Events) / float64(len(events))
	}
	return out
}

func reduceLanguage(events []model.Event) Language {
	var out Language
	languages := newCounter()
	contexts := newCounter()

	for _, e := range events {
		if e.Type != model.EventLanguageUsage {
			continue
		}
		out.Events++
		if p, ok := e.Payload.(model.LanguageUsage); ok {
			languages.add(p.Language)
			contexts.add(p.Context)
		}
	}

	out.Languages = languages.top(len(languages.counts))
	out.TopContexts = contexts.top(topN)
	return out
}

func reduceConnectivity(events []model.Event) Connectivity {
	var out Connectivity

	for _, e := range events {
		if e.Type != model.EventConnectivity {
			continue
		}
		out.Events++
		if p, ok := e.Payload.(model.Connectivity); ok {
			if p.Online {
				out.Online++
			} else {
				out.Offline++
			}
		}
	}

	if out.Events > 0 {
		out.OfflineRate = float64(out.Offline) / float64(out.Events)
	}
	return out
}

// Recommendation rule thresholds.
const (
	completionRateFloor    = 0.7
	accessibilityRateFloor = 0.1
	offlineRateCeiling     = 0.3
)

// recommend applies the fixed rule list against the sub-report rates. Rates
// default to 0 on empty denominators, so a window without lesson or
// accessibility activity still trips the floor rules.
func recommend(r Report) []Recommendation {
	var recs []Recommendation
	if r.Engagement.LessonCompletionRate < completionRateFloor {
		recs = append(recs, Recommendation{
			Type:     "lesson_design",
			Priority: PriorityHigh,
			Message:  "Lesson completion rate is low; review lesson length and difficulty.",
		})
	}
	if r.Accessibility.UsageRate < accessibilityRateFloor {
		recs = append(recs, Recommendation{
			Type:     "accessibility",
			Priority: PriorityMedium,
			Message:  "Accessibility features see little use; promote them in onboarding.",
		})
	}
	if r.Connectivity.OfflineRate > offlineRateCeiling {
		recs = append(recs, Recommendation{
			Type:     "offline_support",
			Priority: PriorityHigh,
			Message:  "A large share of usage is offline; strengthen offline content delivery.",
		})
	}
	return recs
}

// counter counts string keys while remembering first-seen order so top-K
// output is stable under ties.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if key == "" {
		return
	}
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to n items ordered by count desc, first-seen order on ties.
func (c *counter) top(n int) []CountItem {
	keys := append([]string(nil), c.order...)
	// stable sort keeps first-seen order within equal counts
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]CountItem, len(keys))
	for i, k := range keys {
		out[i] = CountItem{Key: k, Count: c.counts[k]}
	}
	return out
}
