package repository

import (
	"context"
	"sync"

	"github.com/engagehq/pulse/internal/domain/ranking"
	"github.com/engagehq/pulse/internal/domain/types"
)

var _ Store = (*TableStore)(nil)

// TableStore is the in-memory Store implementation. The table is replaced
// wholesale after each run; reads serve the latest snapshot under a
// read lock and an email index answers rank lookups in constant time.
type TableStore struct {
	mu      sync.RWMutex
	table   ranking.Table
	byEmail map[string]int // email -> index into table.Entries
}

// NewTableStore creates an empty table store.
func NewTableStore() *TableStore {
	return &TableStore{byEmail: make(map[string]int)}
}

// Replace swaps in a freshly built table.
func (s *TableStore) Replace(_ context.Context, table ranking.Table) {
	idx := make(map[string]int, len(table.Entries))
	for i, e := range table.Entries {
		idx[e.Email] = i
	}

	s.mu.Lock()
	s.table = table
	s.byEmail = idx
	s.mu.Unlock()
}

// Ranked returns up to limit entries in rank order.
func (s *TableStore) Ranked(_ context.Context, limit int) ([]types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.table.Entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]types.Entry, n)
	copy(out, s.table.Entries[:n])
	return out, nil
}

// Rank returns the entry for an email.
func (s *TableStore) Rank(_ context.Context, email string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byEmail[email]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	return s.table.Entries[i], nil
}

// Summary returns the table-level counters.
func (s *TableStore) Summary(_ context.Context) types.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Summary
}

// Count returns the number of identities in the table.
func (s *TableStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table.Entries)
}
