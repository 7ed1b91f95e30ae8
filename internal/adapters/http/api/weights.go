// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/engagehq/pulse/internal/domain/model"
)

// WeightsDependencies defines the interface for weight updates.
type WeightsDependencies interface {
	Rescore(ctx context.Context, w model.Weights) error
}

// WeightsHandler handles weight update requests.
type WeightsHandler struct {
	deps WeightsDependencies
}

// NewWeightsHandler creates a new weights handler.
func NewWeightsHandler(deps WeightsDependencies) *WeightsHandler {
	return &WeightsHandler{deps: deps}
}

// weightsRequest mirrors the PUT /weights body.
type weightsRequest struct {
	Slack  float64 `json:"slack"`
	Linear float64 `json:"linear"`
}

func (wr weightsRequest) validate() error {
	if !validWeight(wr.Slack) || !validWeight(wr.Linear) {
		return errors.New("weights must be finite and non-negative")
	}
	return nil
}

// HandlePutWeights handles PUT /weights requests. The new weights apply to
// the cached merged table immediately; no source data is re-fetched.
func (h *WeightsHandler) HandlePutWeights(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_weights"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req weightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_weights", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Rescore(r.Context(), model.Weights{Slack: req.Slack, Linear: req.Linear}); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "rescored",
		"slack":  req.Slack,
		"linear": req.Linear,
	})
}

// parseWeights parses query-string weight overrides. Both parameters must
// be supplied together.
func parseWeights(slackStr, linearStr string) (model.Weights, error) {
	if slackStr == "" || linearStr == "" {
		return model.Weights{}, errors.New("w_slack and w_linear must be supplied together")
	}
	slack, err := strconv.ParseFloat(slackStr, 64)
	if err != nil {
		return model.Weights{}, errors.New("invalid w_slack")
	}
	linear, err := strconv.ParseFloat(linearStr, 64)
	if err != nil {
		return model.Weights{}, errors.New("invalid w_linear")
	}
	w := model.Weights{Slack: slack, Linear: linear}
	if !validWeight(w.Slack) || !validWeight(w.Linear) {
		return model.Weights{}, errors.New("weights must be finite and non-negative")
	}
	return w, nil
}

func validWeight(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
