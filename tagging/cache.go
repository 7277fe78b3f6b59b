package tagging

import (
	"sync"
	"sync/atomic"

	"github.com/robinvdvleuten/xbrl/reference"
)

type cacheKey struct {
	field         string
	statementType string
}

// cacheEntry is everything about a lookup except the value it was made for.
type cacheEntry struct {
	tags      []reference.FinancialTag
	mandatory bool
	messages  []string
}

// Cache remembers tag lookups per (field, statement type). Values are never
// cached, only the tags and the mandatory flag. A Cache is safe for
// concurrent use and may be shared between taggers.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

func (c *Cache) get(key cacheKey) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return entry, ok
}

// put stores entry unless another caller got there first. Two concurrent
// misses on the same key compute the same entry, so either one may win.
func (c *Cache) put(key cacheKey, entry cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = entry
	}
}

// Hits returns the number of lookups served from the cache.
func (c *Cache) Hits() int64 {
	if c == nil {
		return 0
	}
	return c.hits.Load()
}

// Misses returns the number of lookups that had to be computed.
func (c *Cache) Misses() int64 {
	if c == nil {
		return 0
	}
	return c.misses.Load()
}

// Len returns the number of cached lookups.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset empties the cache and zeroes the counters.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}
