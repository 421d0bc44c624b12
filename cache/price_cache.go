// Package cache holds the last-known price per tracked product. It is the
// only state shared between the scheduler, the HTTP handlers and ad-hoc
// checks, so all access goes through one lock.
package cache

import (
	"sync"
	"time"

	"tomantrack/scraper"
)

// Snapshot is the outcome of the most recent price check for one product.
// Result is nil for every failure class (extraction miss, malformed
// numeral, fetch failure); Status and Err say which.
type Snapshot struct {
	Result    *scraper.ExtractedPrice
	Status    string
	Err       string
	CheckedAt time.Time
}

// PriceCache maps product URL to its latest snapshot. Keyed by URL rather
// than list position so deleting a product cannot alias another product's
// cached price.
type PriceCache struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// New creates an empty price cache
func New() *PriceCache {
	return &PriceCache{
		snapshots: make(map[string]Snapshot),
	}
}

// Get returns the snapshot for a product URL, if one exists
func (c *PriceCache) Get(url string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.snapshots[url]
	return snap, ok
}

// Put stores the snapshot for a product URL
func (c *PriceCache) Put(url string, snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots[url] = snap
}

// Delete evicts the snapshot for a product URL
func (c *PriceCache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.snapshots, url)
}

// Len returns the number of cached snapshots
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.snapshots)
}
