package simulate

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	service "github.com/okian/lumo/internal/app"
	"github.com/okian/lumo/internal/domain/report"
	"github.com/okian/lumo/pkg/logger"
)

// File permission constants.
const (
	exportFilePermission = 0600
)

// Run executes a complete simulation: spin up an engine with a synthetic
// clock, replay a multi-day workload, then print rankings and export the
// research report.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulate")

	log.Info(ctx, "starting simulation",
		logger.Int("learners", cfg.Learners),
		logger.Int("days", cfg.Days),
		logger.Int("activitiesPerDay", cfg.ActivitiesPerDay),
		logger.Int("eventsPerDay", cfg.EventsPerDay),
	)

	// Simulated time starts at the beginning of the window and is advanced
	// day by day; the engine reads it through its clock option.
	startDay := time.Now().AddDate(0, 0, -cfg.Days+1)
	startDay = time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 9, 0, 0, 0, time.Local)
	var simNow atomic.Pointer[time.Time]
	simNow.Store(&startDay)

	svc := service.New(
		service.WithClock(func() time.Time { return *simNow.Load() }),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer svc.Stop(ctx)

	learners := newLearners(cfg.Learners, uint64(cfg.Learners)*7919)

	for day := 0; day < cfg.Days; day++ {
		dayStart := startDay.AddDate(0, 0, day)
		for li := range learners {
			l := &learners[li]
			sessionID := fmt.Sprintf("session-%s-d%d", l.id, day)

			for a := 0; a < cfg.ActivitiesPerDay; a++ {
				at := dayStart.Add(time.Duration(a) * time.Minute)
				simNow.Store(&at)

				res, err := svc.RecordActivity(ctx, l.id, l.nextActivity())
				if err != nil {
					return fmt.Errorf("record activity for %s: %w", l.id, err)
				}
				stats.ActivitiesRecorded++
				stats.BadgesEarned += len(res.NewBadges)
			}

			for e := 0; e < cfg.EventsPerDay; e++ {
				at := dayStart.Add(time.Duration(cfg.ActivitiesPerDay+e) * time.Minute)
				simNow.Store(&at)

				if svc.Track(ctx, l.id, sessionID, l.nextPayload()) {
					stats.EventsTracked++
				} else {
					stats.EventsDropped++
				}
			}
		}
		// Let the ingestion pipeline drain before the clock jumps a day.
		if err := svc.Drain(ctx); err != nil {
			return fmt.Errorf("drain ingestion queue: %w", err)
		}
	}

	if err := verify(ctx, svc, cfg, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if err := export(ctx, svc, cfg, startDay); err != nil {
		return err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "simulation completed",
		logger.Int("activities", stats.ActivitiesRecorded),
		logger.Int("badges", stats.BadgesEarned),
		logger.Int("eventsTracked", stats.EventsTracked),
		logger.Int("eventsDropped", stats.EventsDropped),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}

// export writes the report JSON and research CSV when paths are configured.
func export(ctx context.Context, svc *service.Service, cfg *Config, startDay time.Time) error {
	endDay := startDay.AddDate(0, 0, cfg.Days-1)

	r, err := svc.GenerateReport(ctx, startDay, endDay)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if cfg.ReportJSON != "" {
		b, err := report.ExportJSON(r)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.ReportJSON, b, exportFilePermission); err != nil {
			return fmt.Errorf("write report json: %w", err)
		}
	}

	if cfg.ResearchCSV != "" {
		research, err := svc.ResearchEvents(ctx, startDay, endDay)
		if err != nil {
			return err
		}
		b, err := report.ExportResearchCSV(research)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.ResearchCSV, b, exportFilePermission); err != nil {
			return fmt.Errorf("write research csv: %w", err)
		}
	}
	return nil
}

// verify checks the invariants a correct run must satisfy: full streaks,
// contiguous leaderboard ranks, and a report whose totals match what was
// ingested.
func verify(ctx context.Context, svc *service.Service, cfg *Config, stats *Stats) error {
	log := logger.Get().Named("simulate")

	board, err := svc.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	for i, entry := range board {
		if entry.Rank != i+1 {
			return fmt.Errorf("leaderboard rank gap at position %d: got rank %d", i, entry.Rank)
		}
		if i > 0 && board[i-1].TotalPoints < entry.TotalPoints {
			return fmt.Errorf("leaderboard out of order at rank %d", entry.Rank)
		}
		if cfg.Verbose {
			log.Info(ctx, "leaderboard entry",
				logger.Int("rank", entry.Rank),
				logger.String("user", entry.UserID),
				logger.Int("points", entry.TotalPoints),
				logger.Int("level", entry.Level),
			)
		}
	}

	// Every learner was active every day, so streaks must equal the day count.
	for _, entry := range board {
		p, err := svc.Progress(ctx, entry.UserID)
		if err != nil {
			return err
		}
		if p.Streak != cfg.Days {
			return fmt.Errorf("streak for %s: got %d, want %d", entry.UserID, p.Streak, cfg.Days)
		}
	}

	weekly, err := svc.WeeklyLeaderboard(ctx, cfg.TopN)
	if err != nil {
		return fmt.Errorf("weekly leaderboard: %w", err)
	}
	log.Info(ctx, "verification passed",
		logger.Int("allTimeEntries", len(board)),
		logger.Int("weeklyEntries", len(weekly)),
		logger.Int("activities", stats.ActivitiesRecorded),
	)
	return nil
}
