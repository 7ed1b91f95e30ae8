package mocksource

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/engagehq/pulse/pkg/logger"
)

// Server defaults.
const (
	defaultPageSize        = 200
	defaultTimeout         = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Server serves a synthetic organization over Slack- and Linear-shaped
// HTTP endpoints, so the aggregation pipeline can run end to end without
// credentials or network access.
type Server struct {
	org      *Org
	pageSize int
	srv      *http.Server
}

// NewServer creates a mock source server for the given organization.
func NewServer(org *Org, config *Config) *Server {
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	s := &Server{
		org:      org,
		pageSize: pageSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users.list", s.handleUsersList)
	mux.HandleFunc("/conversations.history", s.handleHistory)
	mux.HandleFunc("/graphql", s.handleGraphQL)

	s.srv = &http.Server{
		Addr:         config.Addr,
		Handler:      mux,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  defaultIdleTimeout,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info(ctx, "mock sources listening",
			logger.String("addr", s.srv.Addr),
			logger.Int("members", len(s.org.Members)),
			logger.Int("messages", len(s.org.Messages)),
			logger.Int("issues", len(s.org.Issues)),
		)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// page slices [0, total) into a cursor window. The cursor is a plain
// offset; an empty next cursor marks the last page.
func (s *Server) page(r *http.Request, total int) (from, to int, next string) {
	from, _ = strconv.Atoi(r.URL.Query().Get("cursor"))
	if from < 0 || from > total {
		from = total
	}

	limit := s.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	to = from + limit
	if to >= total {
		return from, total, ""
	}
	return from, to, strconv.Itoa(to)
}

// handleUsersList mirrors the Slack users.list response schema.
func (s *Server) handleUsersList(w http.ResponseWriter, r *http.Request) {
	from, to, next := s.page(r, len(s.org.Members))

	resp := map[string]any{
		"ok":      true,
		"members": s.org.Members[from:to],
		"response_metadata": map[string]string{
			"next_cursor": next,
		},
	}
	writeJSON(w, resp)
}

// handleHistory mirrors the Slack conversations.history response schema,
// honoring the oldest/latest window filter.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("channel") == "" {
		writeJSON(w, map[string]any{"ok": false, "error": "channel_not_found"})
		return
	}

	oldest := parseSlackTS(r.URL.Query().Get("oldest"))
	latest := parseSlackTS(r.URL.Query().Get("latest"))

	window := make([]message, 0, len(s.org.Messages))
	for _, m := range s.org.Messages {
		ts := parseSlackTS(m.TS)
		if oldest > 0 && ts < oldest {
			continue
		}
		if latest > 0 && ts > latest {
			continue
		}
		window = append(window, m)
	}

	from, to, next := s.page(r, len(window))
	resp := map[string]any{
		"ok":       true,
		"messages": window[from:to],
		"has_more": next != "",
		"response_metadata": map[string]string{
			"next_cursor": next,
		},
	}
	writeJSON(w, resp)
}

// graphQLRequest is the envelope the Linear client posts.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// handleGraphQL answers the completed-issues query, honoring the since
// variable when it parses as a date.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{
			"errors": []map[string]string{{"message": "malformed request"}},
		})
		return
	}

	var since time.Time
	if raw, ok := req.Variables["since"].(string); ok {
		since, _ = time.Parse("2006-01-02", raw)
	}

	nodes := make([]issue, 0, len(s.org.Issues))
	for _, i := range s.org.Issues {
		if !since.IsZero() {
			completed, err := time.Parse(time.RFC3339, i.CompletedAt)
			if err != nil || completed.Before(since) {
				continue
			}
		}
		nodes = append(nodes, i)
	}

	resp := map[string]any{
		"data": map[string]any{
			"issues": map[string]any{
				"nodes": nodes,
			},
		},
	}
	writeJSON(w, resp)
}

// parseSlackTS converts a Slack "seconds.micros" timestamp to seconds.
func parseSlackTS(raw string) float64 {
	ts, _ := strconv.ParseFloat(raw, 64)
	return ts
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
