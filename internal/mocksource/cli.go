package mocksource

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/engagehq/pulse/pkg/logger"
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
		logFile = "mock_sources_" + timestamp + ".log"
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

// ShowHelp prints usage information for the mock sources tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pulse Mock Sources
==================

Serves a synthetic Slack directory, channel history and Linear issue feed
so the aggregation pipeline can run end to end without credentials.

Usage:
  go run cmd/mock-sources/main.go [options]

Options:
  -addr string
        Listen address (default ":9091")
  -members int
        Number of directory members to generate (default 100)
  -messages int
        Number of channel messages to generate (default 5000)
  -issues int
        Number of completed issues to generate (default 500)
  -window int
        Days over which timestamps are spread (default 30)
  -page int
        Page size for paginated endpoints (default 200)
  -log string
        Log file for server output (default: mock_sources_TIMESTAMP.log)
  -help
        Show help

Point the service at the mock with:
  PULSE_SLACK_API_URL=http://localhost:9091 \
  PULSE_LINEAR_API_URL=http://localhost:9091/graphql \
  PULSE_SLACK_TOKEN=mock PULSE_SLACK_CHANNEL_ID=C000000 \
  PULSE_LINEAR_API_KEY=mock go run cmd/main.go
`)
}
