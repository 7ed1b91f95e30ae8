// Package source fetches raw activity data from the external platforms.
//
// Adapters here are the pipeline's outer boundary: they either return raw
// records or report unavailability via ErrUnavailable. They never abort an
// aggregation run; the caller treats an unavailable source as an empty
// contribution with degraded coverage.
package source

import (
	"context"
	"time"

	"github.com/engagehq/pulse/internal/domain/model"
)

// DirectorySource exposes the messaging platform: the member list used to
// build the identity directory and the raw message traffic for a window.
type DirectorySource interface {
	// Members returns the raw member list.
	Members(ctx context.Context) ([]model.MemberRecord, error)

	// Messages returns raw message records posted within [start, end].
	Messages(ctx context.Context, start, end time.Time) ([]model.Message, error)
}

// TrackerSource exposes the issue tracker.
type TrackerSource interface {
	// CompletedIssues returns issues completed at or after since.
	CompletedIssues(ctx context.Context, since time.Time) ([]model.Issue, error)
}
