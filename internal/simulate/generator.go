package simulate

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/lumo/internal/domain/model"
)

// Workload shape constants.
const (
	lessonPoolSize   = 12
	languagePoolSize = 3
	offlineShare     = 0.2 // fraction of connectivity probes reporting offline
	completionShare  = 0.6 // fraction of lesson interactions that complete
)

var activityTypes = []model.ActivityType{
	model.ActivityLessonCompleted,
	model.ActivityTypingLesson,
	model.ActivitySafetyLesson,
	model.ActivityCodingPuzzle,
	model.ActivityPerfectScore,
}

var engagementTypes = []string{
	model.EngagementPageView,
	"click",
	"audio_play",
	"drag_drop",
}

var accessibilityFeatures = []string{
	"high_contrast",
	"large_text",
	"screen_reader",
	"reduced_motion",
}

var languages = []string{"en", "nd", "sn"}

// learner is one synthetic user with a stable id and a session per day.
type learner struct {
	id  string
	rng *rand.Rand
}

// newLearners builds n learners with deterministic per-learner randomness
// derived from seed, so runs are reproducible.
func newLearners(n int, seed uint64) []learner {
	out := make([]learner, n)
	for i := range out {
		out[i] = learner{
			id:  "learner-" + uuid.New().String()[:8] + "-" + strconv.Itoa(i),
			rng: rand.New(rand.NewPCG(seed, uint64(i))),
		}
	}
	return out
}

// nextActivity picks a weighted activity type for the learner.
func (l *learner) nextActivity() model.ActivityType {
	return activityTypes[l.rng.IntN(len(activityTypes))]
}

// nextPayload synthesizes one tracking payload for the learner.
func (l *learner) nextPayload() model.Payload {
	lessonID := "lesson-" + strconv.Itoa(l.rng.IntN(lessonPoolSize))
	switch l.rng.IntN(7) {
	case 0:
		interaction := "started"
		if l.rng.Float64() < completionShare {
			interaction = model.InteractionCompleted
		}
		return model.LessonInteraction{
			LessonID:        lessonID,
			InteractionType: interaction,
			Progress:        l.rng.Float64(),
			Score:           l.rng.IntN(101),
		}
	case 1:
		return model.Gamification{Action: "points_awarded", Points: 10}
	case 2:
		return model.LearningProgress{LessonID: lessonID, Progress: l.rng.Float64()}
	case 3:
		return model.Engagement{
			EngagementType: engagementTypes[l.rng.IntN(len(engagementTypes))],
			Target:         lessonID,
		}
	case 4:
		return model.Accessibility{
			Feature: accessibilityFeatures[l.rng.IntN(len(accessibilityFeatures))],
			Enabled: true,
		}
	case 5:
		return model.Connectivity{Online: l.rng.Float64() >= offlineShare}
	default:
		return model.LanguageUsage{
			Language: languages[l.rng.IntN(languagePoolSize)],
			Context:  "lesson",
		}
	}
}
