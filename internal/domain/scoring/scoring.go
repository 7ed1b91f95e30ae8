// Package scoring computes weighted engagement scores over merged records.
package scoring

import (
	"github.com/engagehq/pulse/internal/domain/model"
)

// Default per-source weights, matching the dashboard's slider defaults.
const (
	defaultSlackWeight  = 0.1
	defaultLinearWeight = 1.0
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the per-source weights. Negative weights are ignored;
// validation belongs to the configuration boundary, this is a last-resort
// guard so the engine never operates on invalid parameters.
func WithWeights(w model.Weights) Option {
	return func(e *Engine) {
		if w.Slack >= 0 && w.Linear >= 0 {
			e.weights = w
		}
	}
}

// Engine derives score fields from merged records. It is pure: the same
// records and weights always produce the same output, and recomputing with
// new weights needs no source data.
type Engine struct {
	weights model.Weights
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights: model.Weights{Slack: defaultSlackWeight, Linear: defaultLinearWeight},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the engine's current weights.
func (e *Engine) Weights() model.Weights {
	return e.weights
}

// Score returns a new slice with all derived fields populated:
//
//	slack_score  = slack_count * slack weight
//	linear_score = linear_count * linear weight
//	total_score  = slack_score + linear_score
//	productivity = total_score / effective hours
//
// Effective hours substitutes 1 when working hours are 0 so productivity
// stays finite. The input slice is not modified.
func (e *Engine) Score(records []model.MergedRecord) []model.MergedRecord {
	return ScoreWith(records, e.weights)
}

// ScoreWith applies an explicit weight pair, for callers simulating weight
// changes without touching the engine's configured defaults.
func ScoreWith(records []model.MergedRecord, w model.Weights) []model.MergedRecord {
	out := make([]model.MergedRecord, len(records))
	for i, r := range records {
		r.SlackScore = float64(r.SlackCount) * w.Slack
		r.LinearScore = float64(r.LinearCount) * w.Linear
		r.TotalScore = r.SlackScore + r.LinearScore

		hours := r.WorkingHours
		if hours <= 0 {
			hours = 1
		}
		r.Productivity = r.TotalScore / hours

		out[i] = r
	}
	return out
}
