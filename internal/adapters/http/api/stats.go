// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/engagehq/pulse/internal/domain/types"
)

// StatsProvider exposes the service's run and coverage state.
type StatsProvider interface {
	GetStats() types.Stats
}

// StatsHandler serves the pipeline state snapshot.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
