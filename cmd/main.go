package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/engagehq/pulse/internal/adapters/http/api"
	"github.com/engagehq/pulse/internal/adapters/http/swagger"
	"github.com/engagehq/pulse/internal/adapters/source"
	app "github.com/engagehq/pulse/internal/app"
	"github.com/engagehq/pulse/internal/config"
	"github.com/engagehq/pulse/internal/domain/model"
	"github.com/engagehq/pulse/pkg/logger"
	"github.com/engagehq/pulse/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
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

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithWeights(model.Weights{Slack: cfg.WeightSlack, Linear: cfg.WeightLinear}),
		app.WithWindowDays(cfg.WindowDays),
		app.WithCapacities(cfg.EmployeeHours, cfg.ContractorHours, cfg.UnknownHours),
		app.WithSources(buildSlackSource(cfg), buildLinearSource(cfg)),
		app.WithDataFile(cfg.DataFile),
		app.WithMergeCacheSize(cfg.MergeCacheSize),
		app.WithFetchTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start the periodic aggregation loop
	go startRefreshLoop(ctx, svc, cfg.RefreshIntervalMinutes)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register the API reference under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, cfg.MaxTableLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildSlackSource constructs the Slack adapter from config. A missing
// token still yields a client; it reports itself unavailable on use.
func buildSlackSource(cfg *config.Config) source.DirectorySource {
	opts := []source.SlackOption{
		source.WithSlackRate(cfg.SlackRatePerSecond),
	}
	if cfg.SlackAPIURL != "" {
		opts = append(opts, source.WithSlackAPIURL(cfg.SlackAPIURL))
	}
	return source.NewSlackClient(cfg.SlackToken, cfg.SlackChannelID, opts...)
}

// buildLinearSource constructs the Linear adapter from config.
func buildLinearSource(cfg *config.Config) source.TrackerSource {
	var opts []source.LinearOption
	if cfg.LinearAPIURL != "" {
		opts = append(opts, source.WithLinearAPIURL(cfg.LinearAPIURL))
	}
	return source.NewLinearClient(cfg.LinearAPIKey, opts...)
}

// startRefreshLoop triggers an aggregation run on startup and then every
// interval. A zero interval disables the loop after the initial run.
func startRefreshLoop(ctx context.Context, svc *app.Service, intervalMinutes int) {
	runOnce := func() {
		if _, err := svc.Refresh(ctx); err != nil {
			logger.Get().Warn(ctx, "scheduled aggregation run skipped", logger.Error(err))
		}
	}

	runOnce()

	if intervalMinutes <= 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval) // Update every 10 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
