package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/okian/lumo/internal/app"
	"github.com/okian/lumo/internal/config"
	"github.com/okian/lumo/internal/domain/model"
	"github.com/okian/lumo/internal/domain/report"
	"github.com/okian/lumo/pkg/logger"
	"github.com/okian/lumo/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
	exportFilePermission   = 0600
)

// activityRecord is one line of a JSONL activity replay file.
type activityRecord struct {
	UserID   string `json:"user_id"`
	Activity string `json:"activity"`
	Points   *int   `json:"points,omitempty"`
}

func main() {
	var (
		activityFile = flag.String("activities", "", "JSONL activity file to replay (one record per line)")
		reportJSON   = flag.String("report", "", "Write a report JSON export to this path")
		researchCSV  = flag.String("research", "", "Write a research event CSV export to this path")
		reportDays   = flag.Int("report-days", 7, "Number of trailing days the report covers")
		topN         = flag.Int("top", 10, "Number of leaderboard entries to print")
	)
	flag.Parse()

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the engine with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithSessionCacheSize(cfg.SessionCacheSize),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		app.WithWeeklyWindow(time.Duration(cfg.WeeklyWindowDays)*24*time.Hour),
		app.WithActivityPoints(cfg.ActivityPoints),
		app.WithFallbackPoints(cfg.DefaultActivityPoints),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// Metrics and health endpoints.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
			return
		}
	}()

	if *activityFile != "" {
		if err := replayActivities(ctx, svc, *activityFile); err != nil {
			loggerInstance.Error(ctx, "activity replay failed", logger.Error(err))
		}
	}

	printLeaderboards(ctx, svc, *topN)

	if *reportJSON != "" || *researchCSV != "" {
		if err := writeExports(ctx, svc, *reportJSON, *researchCSV, *reportDays); err != nil {
			loggerInstance.Error(ctx, "export failed", logger.Error(err))
		}
	}

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "stopped")
}

// replayActivities feeds every record of a JSONL file into the engine.
func replayActivities(ctx context.Context, svc *app.Service, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open activity file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	log := logger.Get()
	scanner := bufio.NewScanner(file)
	line, replayed := 0, 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec activityRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn(ctx, "skipping malformed activity record", logger.Int("line", line), logger.Error(err))
			continue
		}
		var res app.ActivityResult
		if rec.Points != nil {
			res, err = svc.RecordActivity(ctx, rec.UserID, model.ActivityType(rec.Activity), *rec.Points)
		} else {
			res, err = svc.RecordActivity(ctx, rec.UserID, model.ActivityType(rec.Activity))
		}
		if err != nil {
			log.Warn(ctx, "skipping activity record", logger.Int("line", line), logger.Error(err))
			continue
		}
		replayed++
		for _, b := range res.NewBadges {
			log.Info(ctx, "badge earned", logger.String("user", rec.UserID), logger.String("badge", b.ID))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read activity file: %w", err)
	}
	log.Info(ctx, "activity replay finished", logger.Int("replayed", replayed), logger.Int("lines", line))
	return nil
}

// printLeaderboards logs the current all-time and weekly rankings.
func printLeaderboards(ctx context.Context, svc *app.Service, topN int) {
	log := logger.Get()

	board, err := svc.Leaderboard(ctx, topN)
	if err != nil {
		log.Error(ctx, "leaderboard failed", logger.Error(err))
		return
	}
	for _, e := range board {
		log.Info(ctx, "leaderboard",
			logger.Int("rank", e.Rank),
			logger.String("user", e.UserID),
			logger.Int("points", e.TotalPoints),
			logger.Int("level", e.Level),
			logger.String("levelName", e.LevelName),
			logger.Int("streak", e.Streak),
		)
	}

	weekly, err := svc.WeeklyLeaderboard(ctx, topN)
	if err != nil {
		log.Error(ctx, "weekly leaderboard failed", logger.Error(err))
		return
	}
	for _, e := range weekly {
		log.Info(ctx, "weekly leaderboard",
			logger.Int("rank", e.Rank),
			logger.String("user", e.UserID),
			logger.Int("weeklyPoints", e.WeeklyPoints),
		)
	}
}

// writeExports generates a report over the trailing window and writes the
// requested export files.
func writeExports(ctx context.Context, svc *app.Service, reportJSON, researchCSV string, days int) error {
	end := time.Now()
	start := end.AddDate(0, 0, -days+1)

	r, err := svc.GenerateReport(ctx, start, end)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if reportJSON != "" {
		b, err := report.ExportJSON(r)
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportJSON, b, exportFilePermission); err != nil {
			return fmt.Errorf("write report json: %w", err)
		}
	}

	if researchCSV != "" {
		research, err := svc.ResearchEvents(ctx, start, end)
		if err != nil {
			return err
		}
		b, err := report.ExportResearchCSV(research)
		if err != nil {
			return err
		}
		if err := os.WriteFile(researchCSV, b, exportFilePermission); err != nil {
			return fmt.Errorf("write research csv: %w", err)
		}
	}
	return nil
}

// startServiceMetricsUpdater periodically refreshes engine gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := svc.Stats(ctx)
			if queueLen, ok := stats["queueLength"].(int); ok {
				metrics.UpdateQueueSize(queueLen)
			}
			if learners, ok := stats["learners"].(int); ok {
				metrics.UpdateLearnersTotal(learners)
			}
			if workerCount, ok := stats["workerCount"].(int); ok {
				metrics.UpdateWorkerCount(workerCount)
			}
		}
	}
}
