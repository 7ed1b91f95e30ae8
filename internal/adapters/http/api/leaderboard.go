// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/engagehq/pulse/internal/domain/model"
)

// LeaderboardDependencies defines the interface for table queries.
type LeaderboardDependencies interface {
	Rankings(ctx context.Context, limit int) ([]Entry, error)
	RankingsWith(ctx context.Context, limit int, w model.Weights) ([]Entry, error)
}

// LeaderboardHandler handles ranked-table requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests. Optional
// w_slack and w_linear parameters re-score the cached merged table for this
// response only, backing the dashboard's what-if sliders.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	n := h.maxLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}

	wSlackStr, wLinearStr := q.Get("w_slack"), q.Get("w_linear")
	if wSlackStr == "" && wLinearStr == "" {
		entries, err := h.deps.Rankings(r.Context(), n)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	weights, err := parseWeights(wSlackStr, wLinearStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_weights", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := h.deps.RankingsWith(r.Context(), n, weights)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
