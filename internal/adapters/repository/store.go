// Package repository defines the ranked-table store interface and errors.
package repository

import (
	"context"

	"github.com/engagehq/pulse/internal/domain/ranking"
	"github.com/engagehq/pulse/internal/domain/types"
)

// Store provides read access to the current ranked table and accepts a
// full replacement after each aggregation run. There is no incremental
// update path: every run rebuilds the whole table.
type Store interface {
	// Replace swaps in a freshly built table.
	Replace(ctx context.Context, table ranking.Table)

	// Ranked returns up to limit entries in rank order. A limit of 0 or
	// less returns the whole table; upper bounds are enforced at the API
	// boundary, not here.
	Ranked(ctx context.Context, limit int) ([]types.Entry, error)

	// Rank returns the entry for an email. Returns ErrNotFound if the
	// identity is not in the table.
	Rank(ctx context.Context, email string) (types.Entry, error)

	// Summary returns the table-level counters.
	Summary(ctx context.Context) types.Summary

	// Count returns the number of identities in the table.
	Count(ctx context.Context) int
}
