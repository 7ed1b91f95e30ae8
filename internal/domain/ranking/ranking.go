// Package ranking orders scored records into the display-ready table.
package ranking

import (
	"sort"

	"github.com/engagehq/pulse/internal/domain/model"
	"github.com/engagehq/pulse/internal/domain/types"
)

// Table is the terminal, display-ready artifact of an aggregation run.
type Table struct {
	Entries []types.Entry
	Summary types.Summary
}

// Build sorts records by total score descending, breaking ties by email
// ascending so equal scores order reproducibly across runs, then assigns
// 1-based positional ranks. It performs no computation beyond ordering and
// counting; scores must already be populated.
func Build(records []model.MergedRecord) Table {
	sorted := make([]model.MergedRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		return sorted[i].Email < sorted[j].Email
	})

	t := Table{
		Entries: make([]types.Entry, len(sorted)),
		Summary: types.Summary{TotalMembers: len(sorted)},
	}
	for i, r := range sorted {
		t.Entries[i] = types.Entry{
			Rank:         i + 1,
			Email:        r.Email,
			User:         r.Name,
			Role:         string(r.Role),
			Avatar:       r.Avatar,
			SlackCount:   r.SlackCount,
			LinearCount:  r.LinearCount,
			WorkingHours: r.WorkingHours,
			SlackScore:   r.SlackScore,
			LinearScore:  r.LinearScore,
			TotalScore:   r.TotalScore,
			Productivity: r.Productivity,
		}
		if r.TotalScore > 0 {
			t.Summary.ActiveMembers++
		}
	}
	return t
}
