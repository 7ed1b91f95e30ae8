package mocksource

import "time"

// Config holds configuration for the mock source server.
type Config struct {
	Addr       string        // Listen address
	Members    int           // Number of directory members to generate
	Messages   int           // Number of channel messages to generate
	Issues     int           // Number of completed issues to generate
	WindowDays int           // Spread of message/issue timestamps
	PageSize   int           // Page size for paginated endpoints
	Timeout    time.Duration // Read/write timeout for the HTTP server
	LogFile    string        // Log file for server output
	Verbose    bool          // Enable verbose logging
}

// member is a directory entry in Slack users.list shape.
type member struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	RealName          string         `json:"real_name"`
	Deleted           bool           `json:"deleted"`
	IsBot             bool           `json:"is_bot"`
	IsRestricted      bool           `json:"is_restricted"`
	IsUltraRestricted bool           `json:"is_ultra_restricted"`
	Profile           *memberProfile `json:"profile,omitempty"`
}

type memberProfile struct {
	Email   string `json:"email"`
	Image48 string `json:"image_48"`
}

// message is a channel message in conversations.history shape.
type message struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
	Text string `json:"text"`
	TS   string `json:"ts"`
}

// issue is a completed issue in Linear GraphQL node shape.
type issue struct {
	Assignee    *issueAssignee `json:"assignee"`
	CompletedAt string         `json:"completedAt"`
}

type issueAssignee struct {
	Email string `json:"email"`
}

// Org is a complete synthetic organization served by the mock endpoints.
type Org struct {
	Members  []member
	Messages []message
	Issues   []issue
}
