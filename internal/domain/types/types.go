// Package types contains common types used across the application
package types

// Entry represents one ranked row of the engagement table. Field names
// mirror the column names consumed by the dashboard.
type Entry struct {
	Rank         int     `json:"rank"`
	Email        string  `json:"email"`
	User         string  `json:"user"`
	Role         string  `json:"role"`
	Avatar       string  `json:"avatar,omitempty"`
	SlackCount   int     `json:"slack_count"`
	LinearCount  int     `json:"linear_count"`
	WorkingHours float64 `json:"working_hours"`
	SlackScore   float64 `json:"slack_score"`
	LinearScore  float64 `json:"linear_score"`
	TotalScore   float64 `json:"total_score"`
	Productivity float64 `json:"productivity"`
}

// Summary holds the table-level counters exposed alongside the ranking.
type Summary struct {
	TotalMembers  int `json:"total_members"`
	ActiveMembers int `json:"active_members"`
}

// Stats is the /stats payload: the table summary plus run, coverage, and
// persistence state. Run fields are zero until the service has started
// and completed at least one aggregation.
type Stats struct {
	Started      bool    `json:"started"`
	WeightSlack  float64 `json:"weight_slack"`
	WeightLinear float64 `json:"weight_linear"`
	WindowDays   int     `json:"window_days"`

	Summary

	CoverageGaps       int    `json:"coverage_gaps"`
	SlackAvailable     bool   `json:"slack_available"`
	LinearAvailable    bool   `json:"linear_available"`
	MergeCacheHits     int64  `json:"merge_cache_hits"`
	MergeCacheMisses   int64  `json:"merge_cache_misses"`
	LastRunID          string `json:"last_run_id,omitempty"`
	LastRunAt          string `json:"last_run_at,omitempty"`
	DataFileModifiedAt string `json:"data_file_modified_at,omitempty"`
}
