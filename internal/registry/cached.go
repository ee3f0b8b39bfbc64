package registry

import (
	"context"
	"sync"
	"time"
)

type cachedEntry struct {
	text      string
	timestamp time.Time
}

// Cached wraps a base registry behind a TTL-gated lookup map.
type Cached struct {
	Base Registry
	TTL  time.Duration

	mu      sync.Mutex
	entries map[string]cachedEntry
}

func NewCached(base Registry, ttl time.Duration) *Cached {
	return &Cached{Base: base, TTL: ttl, entries: map[string]cachedEntry{}}
}

func (c *Cached) Resolve(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	c.mu.Unlock()
	if ok && time.Since(entry.timestamp) <= c.TTL {
		return entry.text, nil
	}

	text, err := c.Base.Resolve(ctx, id)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[id] = cachedEntry{text: text, timestamp: time.Now()}
	c.mu.Unlock()
	return text, nil
}

// Invalidate drops the cached entry for id, if any.
func (c *Cached) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// CacheStats reports this registry's internal lookup cache: entry count
// and average age as in the script cache's Stats, plus the oldest entry's
// age in place of per-tag counts.
type CacheStats struct {
	Count     int
	AverageAge time.Duration
	OldestAge  time.Duration
}

func (c *Cached) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return CacheStats{}
	}
	var totalAge, oldest time.Duration
	now := time.Now()
	for _, e := range c.entries {
		age := now.Sub(e.timestamp)
		totalAge += age
		if age > oldest {
			oldest = age
		}
	}
	return CacheStats{
		Count:      len(c.entries),
		AverageAge: totalAge / time.Duration(len(c.entries)),
		OldestAge:  oldest,
	}
}
