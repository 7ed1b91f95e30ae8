// Package model contains domain models passed between layers.
package model

// Role classifies how a person is engaged with the organization.
type Role string

// Role values. Identities missing from the directory are Unknown.
const (
	RoleEmployee   Role = "Employee"
	RoleContractor Role = "Contractor"
	RoleUnknown    Role = "Unknown"
)

// MemberRecord is a raw directory row as returned by the messaging platform.
// Fields mirror the Slack users.list member schema.
type MemberRecord struct {
	ID                string // platform-internal user id
	Email             string // may be empty; such records cannot be merged
	RealName          string
	Name              string // short handle, fallback display name
	Avatar            string // opaque image reference
	IsBot             bool
	IsDeleted         bool
	IsRestricted      bool // single-channel guest
	IsUltraRestricted bool // multi-channel guest
	HasProfile        bool
}

// Profile holds the resolved directory attributes for one identity.
type Profile struct {
	Name          string
	Role          Role
	CapacityHours float64
	Avatar        string
}

// SourceCount is one raw per-identity count row from a single source.
// A source may return several rows for the same email; they are summed
// before the merge.
type SourceCount struct {
	Email string
	Count int
}

// Message is a raw message record keyed by the platform-internal user id.
// Translation to email happens in the directory resolver.
type Message struct {
	UserID string
}

// Issue is a completed issue-tracker item attributed to an assignee email.
type Issue struct {
	AssigneeEmail string
}

// Weights holds the per-source scoring weights. Both must be non-negative;
// validation happens at the configuration boundary.
type Weights struct {
	Slack  float64
	Linear float64
}

// MergedRecord is one row of the merged engagement table. The count and
// hours fields are the merge output; the score fields are derived by the
// scoring engine and recomputed whenever weights change.
type MergedRecord struct {
	Email        string
	Name         string
	Role         Role
	Avatar       string
	SlackCount   int
	LinearCount  int
	WorkingHours float64

	SlackScore   float64
	LinearScore  float64
	TotalScore   float64
	Productivity float64
}
