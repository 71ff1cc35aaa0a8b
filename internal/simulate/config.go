// Package simulate drives the analytics engine with a synthetic learner
// workload and verifies the resulting progress, rankings and report.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	Learners         int    // number of synthetic learners
	Days             int    // number of simulated calendar days
	ActivitiesPerDay int    // gamified activities per learner per day
	EventsPerDay     int    // tracking events per learner per day
	TopN             int    // leaderboard rows to print
	ReportJSON       string // path for the report JSON export, empty to skip
	ResearchCSV      string // path for the research CSV export, empty to skip
	Verbose          bool
}

// Stats holds simulation statistics.
type Stats struct {
	ActivitiesRecorded int
	BadgesEarned       int
	EventsTracked      int
	EventsDropped      int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
