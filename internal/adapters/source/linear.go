package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/engagehq/pulse/internal/domain/model"
)

// Linear client defaults.
const (
	defaultLinearAPIURL  = "https://api.linear.app/graphql"
	defaultLinearTimeout = 15 * time.Second
)

// completedIssuesQuery selects issues completed at or after a date along
// with their assignee email.
const completedIssuesQuery = `query($since: DateTimeOrDuration!) {
  issues(filter: { completedAt: { gte: $since } }) {
    nodes {
      assignee { email }
      completedAt
    }
  }
}`

// LinearOption applies a configuration option to the LinearClient.
type LinearOption func(*LinearClient)

// WithLinearAPIURL overrides the GraphQL endpoint.
func WithLinearAPIURL(u string) LinearOption {
	return func(c *LinearClient) {
		if u != "" {
			c.apiURL = u
		}
	}
}

// WithLinearHTTPClient sets a custom HTTP client.
func WithLinearHTTPClient(hc *http.Client) LinearOption {
	return func(c *LinearClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// LinearClient talks to the Linear GraphQL API. A client without an API key
// reports ErrUnavailable on every call without touching the network.
type LinearClient struct {
	apiKey string
	apiURL string
	http   *http.Client
}

// NewLinearClient creates a Linear client for the given API key.
func NewLinearClient(apiKey string, opts ...LinearOption) *LinearClient {
	c := &LinearClient{
		apiKey: apiKey,
		apiURL: defaultLinearAPIURL,
		http:   &http.Client{Timeout: defaultLinearTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type linearIssuesResponse struct {
	Data struct {
		Issues struct {
			Nodes []struct {
				Assignee *struct {
					Email string `json:"email"`
				} `json:"assignee"`
				CompletedAt string `json:"completedAt"`
			} `json:"nodes"`
		} `json:"issues"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CompletedIssues returns issues completed at or after since, attributed to
// their assignee email. Unassigned issues and issues whose assignee has no
// email are dropped; they cannot be merged.
func (c *LinearClient) CompletedIssues(ctx context.Context, since time.Time) ([]model.Issue, error) {
	const op = "linear.completed_issues"
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: missing api key: %w", op, ErrUnavailable)
	}

	body, err := json.Marshal(map[string]any{
		"query": completedIssuesQuery,
		"variables": map[string]any{
			"since": since.Format("2006-01-02"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal query: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: %w: status %d: %s", op, ErrUnavailable, resp.StatusCode, raw)
	}

	var parsed linearIssuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: %w: decode: %v", op, ErrUnavailable, err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("%s: %w: graphql: %s", op, ErrUnavailable, parsed.Errors[0].Message)
	}

	var issues []model.Issue
	for _, n := range parsed.Data.Issues.Nodes {
		if n.Assignee == nil || n.Assignee.Email == "" {
			continue
		}
		issues = append(issues, model.Issue{AssigneeEmail: n.Assignee.Email})
	}
	return issues, nil
}
