// Package cache memoizes standardized month loads. Entries are keyed by the
// logical identity (dataset, month) with a bounded time-to-live. The cache
// is advisory: loads are pure and idempotent, so concurrent population of
// the same key is allowed and harmless.
package cache

import (
	"sync"
	"time"

	"traffic-analytics/internal/domain"
)

// Key identifies one month of one dataset.
type Key struct {
	Dataset string
	Month   string
}

// MonthCache is a TTL cache of standardized records.
type MonthCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[Key]entry
}

type entry struct {
	records  []domain.Record
	loadedAt time.Time
}

// New creates a cache with the given TTL. A non-positive TTL disables
// caching entirely.
func New(ttl time.Duration) *MonthCache {
	return &MonthCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]entry),
	}
}

// Get returns the cached records for the key if present and fresh.
func (c *MonthCache) Get(key Key) ([]domain.Record, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.loadedAt) > c.ttl {
		return nil, false
	}
	return e.records, true
}

// Put stores records for the key, stamping the load time.
func (c *MonthCache) Put(key Key, records []domain.Record) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry{records: records, loadedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops the entry for the key.
func (c *MonthCache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
