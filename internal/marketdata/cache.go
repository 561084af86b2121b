package marketdata

import (
	"fmt"
	"sync"
	"time"

	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

// Cache is a TTL-keyed store for fetched price series. Entries expire by
// age; there is no size bound since the working set is a handful of
// ticker/date-range pairs.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	series  series.PriceSeries
	expires time.Time
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Key identifies a fetch by ticker and date range.
func Key(ticker string, from, to time.Time) string {
	return fmt.Sprintf("%s|%s|%s", ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// Get returns the cached series for key if it has not expired.
func (c *Cache) Get(key string) (series.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return series.PriceSeries{}, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return series.PriceSeries{}, false
	}
	return entry.series, true
}

// Put stores a series under key with a fresh expiry.
func (c *Cache) Put(key string, s series.PriceSeries) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{series: s, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
