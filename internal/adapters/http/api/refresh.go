// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	app "github.com/engagehq/pulse/internal/app"
)

// RefreshDependencies defines the interface for triggering aggregation runs.
type RefreshDependencies interface {
	Refresh(ctx context.Context) (string, error)
}

// RefreshHandler handles aggregation trigger requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshResponse mirrors the POST /refresh reply.
type refreshResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

// HandleRefresh handles POST /refresh requests. Only one run may be in
// flight; a concurrent trigger gets 409.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	runID, err := h.deps.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrRunInProgress) {
			writeError(w, http.StatusConflict, "run_in_progress", NewKind(op, ErrRunBusy))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Status: "completed", RunID: runID})
}
