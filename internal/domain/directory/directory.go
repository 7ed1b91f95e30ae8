// Package directory builds the canonical identity directory from raw
// messaging-platform member records.
package directory

import (
	"sort"

	"github.com/engagehq/pulse/internal/domain/model"
)

// Default capacity assumptions in hours per period.
const (
	defaultEmployeeHours   = 40
	defaultContractorHours = 20
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithEmployeeHours sets the capacity assumed for employees.
func WithEmployeeHours(hours float64) Option {
	return func(r *Resolver) {
		if hours > 0 {
			r.employeeHours = hours
		}
	}
}

// WithContractorHours sets the capacity assumed for contractors.
func WithContractorHours(hours float64) Option {
	return func(r *Resolver) {
		if hours > 0 {
			r.contractorHours = hours
		}
	}
}

// Resolver turns raw member records into the canonical email-keyed directory.
type Resolver struct {
	employeeHours   float64
	contractorHours float64
}

// NewResolver creates a Resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		employeeHours:   defaultEmployeeHours,
		contractorHours: defaultContractorHours,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Directory is the resolved identity mapping for one aggregation run.
type Directory struct {
	// Profiles maps email to resolved attributes. Only records with a
	// resolvable email and a usable profile appear here.
	Profiles map[string]model.Profile

	// Gaps counts member records skipped because no email could be
	// resolved. Reported as degraded coverage, never an error.
	Gaps int

	emailByID map[string]string
}

// Resolve builds the directory from raw member records. Automated accounts,
// deactivated accounts, and records without profile data are excluded.
// Restricted and ultra-restricted accounts classify as contractors, every
// other resolvable account as an employee. The display name prefers the
// real name and falls back to the short handle.
//
// The id-to-email index is built from every record carrying both fields,
// including excluded ones, so messages from deactivated users still
// translate during count resolution.
func (r *Resolver) Resolve(members []model.MemberRecord) Directory {
	d := Directory{
		Profiles:  make(map[string]model.Profile, len(members)),
		emailByID: make(map[string]string, len(members)),
	}

	for _, m := range members {
		if m.ID != "" && m.Email != "" {
			d.emailByID[m.ID] = m.Email
		}

		if m.IsBot || m.IsDeleted || !m.HasProfile {
			continue
		}
		if m.Email == "" {
			d.Gaps++
			continue
		}

		role := model.RoleEmployee
		capacity := r.employeeHours
		if m.IsRestricted || m.IsUltraRestricted {
			role = model.RoleContractor
			capacity = r.contractorHours
		}

		name := m.RealName
		if name == "" {
			name = m.Name
		}
		if name == "" {
			name = m.Email
		}

		d.Profiles[m.Email] = model.Profile{
			Name:          name,
			Role:          role,
			CapacityHours: capacity,
			Avatar:        m.Avatar,
		}
	}

	return d
}

// EmailFor translates a platform-internal user id to an email.
func (d Directory) EmailFor(id string) (string, bool) {
	email, ok := d.emailByID[id]
	return email, ok
}

// CountByEmail sums raw messages into per-email counts using the id-to-email
// index. Messages from unknown user ids are dropped; they cannot be merged.
// The result is ordered by email for reproducibility.
func (d Directory) CountByEmail(msgs []model.Message) []model.SourceCount {
	byEmail := make(map[string]int)
	for _, m := range msgs {
		email, ok := d.emailByID[m.UserID]
		if !ok {
			continue
		}
		byEmail[email]++
	}

	counts := make([]model.SourceCount, 0, len(byEmail))
	for email, n := range byEmail {
		counts = append(counts, model.SourceCount{Email: email, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Email < counts[j].Email })
	return counts
}
