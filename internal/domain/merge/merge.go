// Package merge joins directory profiles and per-source activity counts
// into a single identity-keyed engagement table.
package merge

import (
	"sort"

	"github.com/engagehq/pulse/internal/domain/model"
)

// defaultFallbackHours is the capacity assumed for identities missing from
// the directory. Kept at the contractor level so productivity is not
// distorted by dividing small scores over a full-time denominator.
const defaultFallbackHours = 20

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithFallbackHours sets the capacity assumed for identities that are
// absent from the directory.
func WithFallbackHours(hours float64) Option {
	return func(e *Engine) {
		if hours > 0 {
			e.fallbackHours = hours
		}
	}
}

// Engine performs the union-then-left-join over the three inputs.
type Engine struct {
	fallbackHours float64
}

// NewEngine creates a merge engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{fallbackHours: defaultFallbackHours}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge produces one record per identity in the union of the directory keys
// and both count-source key sets. Identities missing from the directory get
// a synthesized profile (name equal to the email, Unknown role, fallback
// capacity). Counts default to 0 when a source has no rows for an identity,
// so an unavailable source degrades coverage without dropping anyone.
// Negative counts violate the source contract and are clamped to 0.
//
// The result is ordered by email so identical inputs always produce an
// identical table.
func (e *Engine) Merge(profiles map[string]model.Profile, slack, linear []model.SourceCount) []model.MergedRecord {
	slackByEmail := sumCounts(slack)
	linearByEmail := sumCounts(linear)

	universe := make(map[string]struct{}, len(profiles)+len(slackByEmail)+len(linearByEmail))
	for email := range profiles {
		universe[email] = struct{}{}
	}
	for email := range slackByEmail {
		universe[email] = struct{}{}
	}
	for email := range linearByEmail {
		universe[email] = struct{}{}
	}

	records := make([]model.MergedRecord, 0, len(universe))
	for email := range universe {
		profile, ok := profiles[email]
		if !ok {
			profile = model.Profile{
				Name:          email,
				Role:          model.RoleUnknown,
				CapacityHours: e.fallbackHours,
			}
		}

		records = append(records, model.MergedRecord{
			Email:        email,
			Name:         profile.Name,
			Role:         profile.Role,
			Avatar:       profile.Avatar,
			SlackCount:   slackByEmail[email],
			LinearCount:  linearByEmail[email],
			WorkingHours: profile.CapacityHours,
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Email < records[j].Email })
	return records
}

// sumCounts folds raw count rows into a per-email total. Sources may return
// several rows for the same identity; each row clamps at 0 first.
func sumCounts(counts []model.SourceCount) map[string]int {
	byEmail := make(map[string]int, len(counts))
	for _, c := range counts {
		n := c.Count
		if n < 0 {
			n = 0
		}
		byEmail[c.Email] += n
	}
	return byEmail
}
