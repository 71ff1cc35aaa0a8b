package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/lumo/internal/simulate"
)

// Default configuration constants.
const (
	defaultLearners   = 25
	defaultDays       = 7
	defaultActivities = 4
	defaultEvents     = 20
	defaultTopN       = 10
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		learners    = flag.Int("learners", defaultLearners, "Number of simulated learners")
		days        = flag.Int("days", defaultDays, "Number of simulated days of activity")
		activities  = flag.Int("activities", defaultActivities, "Learning activities per learner per day")
		events      = flag.Int("events", defaultEvents, "Tracking events per learner per day")
		topN        = flag.Int("top", defaultTopN, "Number of leaderboard entries to verify")
		reportJSON  = flag.String("report", "", "Output file for the generated report JSON")
		researchCSV = flag.String("research", "", "Output file for the research event CSV export")
		logFile     = flag.String("log", "", "Log file for simulation output (default: simulation_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Setup logging
	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		Learners:         *learners,
		Days:             *days,
		ActivitiesPerDay: *activities,
		EventsPerDay:     *events,
		TopN:             *topN,
		ReportJSON:       *reportJSON,
		ResearchCSV:      *researchCSV,
		Verbose:          *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
