// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and environment.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr" validate:"required"`

	// SlackToken and SlackChannelID authenticate the messaging source.
	// Empty values are valid: the source reports unavailable and the
	// pipeline runs with degraded coverage.
	SlackToken     string `koanf:"slack_token"`
	SlackChannelID string `koanf:"slack_channel_id"`

	// SlackAPIURL overrides the Slack Web API base URL (mock sources).
	SlackAPIURL string `koanf:"slack_api_url"`

	// SlackRatePerSecond caps Slack Web API calls.
	SlackRatePerSecond float64 `koanf:"slack_rate_per_second" validate:"gte=0"`

	// LinearAPIKey authenticates the issue-tracker source; empty is valid.
	LinearAPIKey string `koanf:"linear_api_key"`

	// LinearAPIURL overrides the Linear GraphQL endpoint (mock sources).
	LinearAPIURL string `koanf:"linear_api_url"`

	// WindowDays is the aggregation window ending now.
	WindowDays int `koanf:"window_days" validate:"gt=0"`

	// WeightSlack and WeightLinear are the per-source scoring weights.
	// Negative values are rejected here, before they can ever reach the
	// scoring engine.
	WeightSlack  float64 `koanf:"weight_slack" validate:"gte=0"`
	WeightLinear float64 `koanf:"weight_linear" validate:"gte=0"`

	// Capacity assumptions in hours per period by role classification.
	EmployeeHours   float64 `koanf:"employee_hours" validate:"gt=0"`
	ContractorHours float64 `koanf:"contractor_hours" validate:"gt=0"`

	// UnknownHours applies to identities absent from the directory. Kept
	// low so small scores are not diluted by a full-time denominator.
	UnknownHours float64 `koanf:"unknown_hours" validate:"gt=0"`

	// DataFile is the CSV snapshot path, rewritten on every run.
	DataFile string `koanf:"data_file" validate:"required"`

	// RefreshIntervalMinutes drives the periodic aggregation loop.
	// 0 disables periodic refresh; runs then happen only via the API.
	RefreshIntervalMinutes int `koanf:"refresh_interval_minutes" validate:"gte=0"`

	// MaxTableLimit caps GET /leaderboard?limit.
	MaxTableLimit int `koanf:"max_table_limit" validate:"gt=0"`

	// MergeCacheSize bounds the fingerprint-addressed merge cache.
	MergeCacheSize int `koanf:"merge_cache_size"`

	// FetchTimeoutSeconds bounds each source fetch.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds" validate:"gt=0"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9090",
		SlackRatePerSecond:     1,
		WindowDays:             30,
		WeightSlack:            0.1,
		WeightLinear:           1.0,
		EmployeeHours:          40,
		ContractorHours:        20,
		UnknownHours:           20,
		DataFile:               "data/engagement.csv",
		RefreshIntervalMinutes: 60,
		MaxTableLimit:          500,
		MergeCacheSize:         16,
		FetchTimeoutSeconds:    30,
	}
}
