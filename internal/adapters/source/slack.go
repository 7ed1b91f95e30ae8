package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/engagehq/pulse/internal/domain/model"
)

// Slack client defaults.
const (
	defaultSlackAPIURL    = "https://slack.com/api"
	defaultSlackPageLimit = 1000
	defaultSlackTimeout   = 15 * time.Second
	defaultSlackRate      = 1 // requests per second, Slack tier-2 safe
)

// SlackOption applies a configuration option to the SlackClient.
type SlackOption func(*SlackClient)

// WithSlackAPIURL overrides the API base URL, mainly for tests and the
// local mock sources.
func WithSlackAPIURL(u string) SlackOption {
	return func(c *SlackClient) {
		if u != "" {
			c.apiURL = u
		}
	}
}

// WithSlackHTTPClient sets a custom HTTP client.
func WithSlackHTTPClient(hc *http.Client) SlackOption {
	return func(c *SlackClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSlackRate sets the request rate limit in requests per second.
func WithSlackRate(perSecond float64) SlackOption {
	return func(c *SlackClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithSlackPageLimit sets the page size for paginated calls.
func WithSlackPageLimit(n int) SlackOption {
	return func(c *SlackClient) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

// SlackClient talks to the Slack Web API. A client without a token is
// valid: every call reports ErrUnavailable without touching the network,
// so a missing credential degrades coverage instead of failing the run.
type SlackClient struct {
	token     string
	channelID string
	apiURL    string
	pageLimit int
	http      *http.Client
	limiter   *rate.Limiter
}

// NewSlackClient creates a Slack client for the given token and channel.
func NewSlackClient(token, channelID string, opts ...SlackOption) *SlackClient {
	c := &SlackClient{
		token:     token,
		channelID: channelID,
		apiURL:    defaultSlackAPIURL,
		pageLimit: defaultSlackPageLimit,
		http:      &http.Client{Timeout: defaultSlackTimeout},
		limiter:   rate.NewLimiter(rate.Limit(defaultSlackRate), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// slackMember mirrors the users.list member schema.
type slackMember struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	RealName          string `json:"real_name"`
	Deleted           bool   `json:"deleted"`
	IsBot             bool   `json:"is_bot"`
	IsRestricted      bool   `json:"is_restricted"`
	IsUltraRestricted bool   `json:"is_ultra_restricted"`
	Profile           *struct {
		Email   string `json:"email"`
		Image48 string `json:"image_48"`
	} `json:"profile"`
}

type slackUsersResponse struct {
	OK               bool          `json:"ok"`
	Error            string        `json:"error"`
	Members          []slackMember `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type slackHistoryResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages []struct {
		User string `json:"user"`
	} `json:"messages"`
	HasMore          bool `json:"has_more"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// Members fetches the full member list, following cursor pagination.
func (c *SlackClient) Members(ctx context.Context) ([]model.MemberRecord, error) {
	const op = "slack.members"
	if c.token == "" {
		return nil, fmt.Errorf("%s: missing token: %w", op, ErrUnavailable)
	}

	var members []model.MemberRecord
	cursor := ""
	for {
		params := url.Values{"limit": {strconv.Itoa(c.pageLimit)}}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp slackUsersResponse
		if err := c.call(ctx, "users.list", params, &resp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !resp.OK {
			return nil, fmt.Errorf("%s: api error %q: %w", op, resp.Error, ErrUnavailable)
		}

		for _, m := range resp.Members {
			rec := model.MemberRecord{
				ID:                m.ID,
				Name:              m.Name,
				RealName:          m.RealName,
				IsBot:             m.IsBot,
				IsDeleted:         m.Deleted,
				IsRestricted:      m.IsRestricted,
				IsUltraRestricted: m.IsUltraRestricted,
				HasProfile:        m.Profile != nil,
			}
			if m.Profile != nil {
				rec.Email = m.Profile.Email
				rec.Avatar = m.Profile.Image48
			}
			members = append(members, rec)
		}

		cursor = resp.ResponseMetadata.NextCursor
		if cursor == "" {
			return members, nil
		}
	}
}

// Messages fetches channel history within [start, end], following cursor
// pagination. Only the authoring user id is retained.
func (c *SlackClient) Messages(ctx context.Context, start, end time.Time) ([]model.Message, error) {
	const op = "slack.messages"
	if c.token == "" || c.channelID == "" {
		return nil, fmt.Errorf("%s: missing token or channel: %w", op, ErrUnavailable)
	}

	var msgs []model.Message
	cursor := ""
	for {
		params := url.Values{
			"channel": {c.channelID},
			"oldest":  {strconv.FormatFloat(float64(start.Unix()), 'f', 6, 64)},
			"latest":  {strconv.FormatFloat(float64(end.Unix()), 'f', 6, 64)},
			"limit":   {strconv.Itoa(c.pageLimit)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp slackHistoryResponse
		if err := c.call(ctx, "conversations.history", params, &resp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !resp.OK {
			return nil, fmt.Errorf("%s: api error %q: %w", op, resp.Error, ErrUnavailable)
		}

		for _, m := range resp.Messages {
			if m.User == "" {
				continue // system messages carry no author
			}
			msgs = append(msgs, model.Message{UserID: m.User})
		}

		if !resp.HasMore || resp.ResponseMetadata.NextCursor == "" {
			return msgs, nil
		}
		cursor = resp.ResponseMetadata.NextCursor
	}
}

// call performs one rate-limited GET against a Web API method.
func (c *SlackClient) call(ctx context.Context, method string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}
