// Package view is the pipeline controller between parsed payloads and the
// rendering layer: it detects the grid, normalizes channels in chunks, caches
// the normalized series per data source, and answers re-windowing requests
// without re-normalizing from scratch.
package view

import (
	"sync"

	"github.com/jkeres/shiftview/pkg/series"
	"github.com/jkeres/shiftview/pkg/telemetry"
	"github.com/jkeres/shiftview/pkg/timegrid"
)

// CacheKey identifies one normalized dataset. The bucket size is part of the
// key because normalized timestamps depend on it.
type CacheKey struct {
	Vehicle  string
	Date     string // yyyy-mm-dd
	Shift    string
	BucketMs int64
}

// entry holds one fully normalized, gap-broken dataset.
type entry struct {
	resolution   timegrid.Resolution
	timestamps   []int64
	analogChans  []telemetry.Channel
	digitalChans []telemetry.Channel
	analog       map[string][]series.Point
	digital      map[string][]series.DigitalPoint
}

// Cache is the explicit normalized-series cache. It replaces a process-wide
// implicit singleton: the load controller owns it and invalidates it
// wholesale on every data-source change.
type Cache struct {
	mu      sync.RWMutex
	entries map[CacheKey]*entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]*entry)}
}

func (c *Cache) get(key CacheKey) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) put(key CacheKey, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Invalidate drops one dataset.
func (c *Cache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every dataset, forcing full recomputation on the next call.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]*entry)
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
