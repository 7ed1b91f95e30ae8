package merge

import (
	"sync"

	"github.com/engagehq/pulse/internal/domain/model"
)

// defaultCacheSize bounds the number of merged tables kept in memory.
const defaultCacheSize = 16

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithMaxEntries sets the maximum number of merged tables to keep.
// A size of 0 or less disables caching entirely.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) {
		c.maxEntries = n
	}
}

// Cache keeps merged tables addressed by input fingerprint. Entries are
// evicted oldest-first once the bound is reached; a new fetch producing a
// new fingerprint naturally supersedes prior entries.
type Cache struct {
	mu         sync.RWMutex
	tables     map[string][]model.MergedRecord
	order      []string
	maxEntries int

	hits   int64
	misses int64
}

// NewCache creates a bounded merge cache with configuration options.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		tables:     make(map[string][]model.MergedRecord),
		maxEntries: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached table for key, if present. Callers
// receive their own slice so downstream scoring never mutates the cache.
func (c *Cache) Get(key string) ([]model.MergedRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.tables[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	out := make([]model.MergedRecord, len(table))
	copy(out, table)
	return out, true
}

// Put stores a merged table under key, evicting the oldest entry when full.
func (c *Cache) Put(key string, table []model.MergedRecord) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[key]; exists {
		return
	}
	for len(c.tables) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.tables, oldest)
	}

	stored := make([]model.MergedRecord, len(table))
	copy(stored, table)
	c.tables[key] = stored
	c.order = append(c.order, key)
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
