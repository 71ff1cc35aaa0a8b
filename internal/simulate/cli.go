package simulate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/lumo/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Lumo Simulation Tool
====================

Drives the analytics engine with a synthetic multi-day workload and
validates streaks, leaderboards and report totals.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -learners int
        Number of simulated learners (default 25)
  -days int
        Number of simulated days of activity (default 7)
  -activities int
        Learning activities per learner per day (default 4)
  -events int
        Tracking events per learner per day (default 20)
  -top int
        Number of leaderboard entries to verify (default 10)
  -report string
        Output file for the generated report JSON (optional)
  -research string
        Output file for the research event CSV export (optional)
  -log string
        Log file for simulation output (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate a week of activity with defaults
  go run cmd/simulate/main.go

  # A month of heavy usage with exports
  go run cmd/simulate/main.go -days 30 -learners 100 -report report.json -research research.csv
`)
}
