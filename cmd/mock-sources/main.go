package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/engagehq/pulse/internal/mocksource"
)

// Default configuration constants.
const (
	defaultAddr     = ":9091"
	defaultMembers  = 100
	defaultMessages = 5000
	defaultIssues   = 500
	defaultWindow   = 30
	defaultPage     = 200
	defaultTimeout  = 10 * time.Second
)

func main() {
	var (
		addr     = flag.String("addr", defaultAddr, "Listen address")
		members  = flag.Int("members", defaultMembers, "Number of directory members to generate")
		messages = flag.Int("messages", defaultMessages, "Number of channel messages to generate")
		issues   = flag.Int("issues", defaultIssues, "Number of completed issues to generate")
		window   = flag.Int("window", defaultWindow, "Days over which timestamps are spread")
		page     = flag.Int("page", defaultPage, "Page size for paginated endpoints")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP read/write timeout")
		logFile  = flag.String("log", "", "Log file for server output (default: mock_sources_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		mocksource.ShowHelp()
		return
	}

	// Setup logging
	if err := mocksource.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &mocksource.Config{
		Addr:       *addr,
		Members:    *members,
		Messages:   *messages,
		Issues:     *issues,
		WindowDays: *window,
		PageSize:   *page,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	org := mocksource.GenerateOrg(ctx, config)
	srv := mocksource.NewServer(org, config)
	if err := srv.Run(ctx); err != nil {
		os.Stderr.WriteString("mock sources failed: " + err.Error() + "\n")
	}
}
