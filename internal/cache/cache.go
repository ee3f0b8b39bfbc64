// Package cache implements the script cache: a bounded, TTL-gated store
// keyed by script identifier, with LRU-trim eviction on overflow and a
// content-hash check for invalidating entries whose source text changed
// underneath them.
package cache

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"
)

// Entry is a cached planning result: the loaded script payload (left as
// any so this package has no dependency on the engine's script type),
// its insertion time, its content hash, and the tag distinguishing the
// main script from an imported dependency.
type Entry struct {
	Script      any
	Timestamp   time.Time
	ContentHash uint64
	Source      string // "main" or "dependency"
}

// Stats summarises the current cache contents.
type Stats struct {
	Count       int
	AverageAge  time.Duration
	BySourceTag map[string]int
}

// Policy bounds the cache's size and entry lifetime.
type Policy struct {
	MaxAge  time.Duration
	MaxSize int
}

func DefaultPolicy() Policy {
	return Policy{MaxAge: 10 * time.Minute, MaxSize: 200}
}

// Cache is a script cache guarded by a single mutex; entries are evicted
// lazily on get and swept in cleanup, never on a background timer.
type Cache struct {
	mu      sync.Mutex
	policy  Policy
	entries map[string]Entry
}

func New(policy Policy) *Cache {
	return &Cache{policy: policy, entries: map[string]Entry{}}
}

// PolicyPartial bulk-updates a subset of a cache's policy fields.
type PolicyPartial struct {
	MaxAge  *time.Duration
	MaxSize *int
}

func (c *Cache) SetPolicy(p PolicyPartial) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.MaxAge != nil {
		c.policy.MaxAge = *p.MaxAge
	}
	if p.MaxSize != nil {
		c.policy.MaxSize = *p.MaxSize
	}
}

func (c *Cache) Policy() Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// Get returns the entry for id if present and not older than the
// configured MaxAge. A stale entry is evicted as a side effect of the
// lookup.
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return Entry{}, false
	}
	if c.policy.MaxAge > 0 && time.Since(entry.Timestamp) > c.policy.MaxAge {
		delete(c.entries, id)
		return Entry{}, false
	}
	return entry, true
}

// Put stores entry under id, stamping it with the current time unless
// the caller already set one.
func (c *Cache) Put(id string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	c.entries[id] = entry
}

// Invalidate unconditionally removes the entry for id.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// InvalidateIfContentChanged recomputes the content hash of text and
// evicts the existing entry for id if it no longer matches. It reports
// whether an eviction occurred.
func (c *Cache) InvalidateIfContentChanged(id, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return false
	}
	if entry.ContentHash == ContentHash(text) {
		return false
	}
	delete(c.entries, id)
	return true
}

// Cleanup sweeps expired entries, then trims the oldest-first down to
// MaxSize if still over.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepExpired()
	c.trimToMaxSize()
}

func (c *Cache) sweepExpired() {
	if c.policy.MaxAge <= 0 {
		return
	}
	now := time.Now()
	for id, entry := range c.entries {
		if now.Sub(entry.Timestamp) > c.policy.MaxAge {
			delete(c.entries, id)
		}
	}
}

func (c *Cache) trimToMaxSize() {
	if c.policy.MaxSize <= 0 || len(c.entries) <= c.policy.MaxSize {
		return
	}
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.entries[ids[i]].Timestamp.Before(c.entries[ids[j]].Timestamp)
	})
	excess := len(ids) - c.policy.MaxSize
	for i := 0; i < excess; i++ {
		delete(c.entries, ids[i])
	}
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]Entry{}
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{Count: len(c.entries), BySourceTag: map[string]int{}}
	if len(c.entries) == 0 {
		return stats
	}
	now := time.Now()
	var totalAge time.Duration
	for _, entry := range c.entries {
		totalAge += now.Sub(entry.Timestamp)
		stats.BySourceTag[entry.Source]++
	}
	stats.AverageAge = totalAge / time.Duration(len(c.entries))
	return stats
}

// ContentHash computes a stable fingerprint for source text: an FNV-1a
// fold-hash combined with the text's length and its first and last byte.
// The extra mixing only separates texts that differ in length or at their
// edges; a difference at an interior position is left to the FNV-1a sum.
func ContentHash(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()

	var first, last byte
	if len(text) > 0 {
		first = text[0]
		last = text[len(text)-1]
	}
	sum ^= uint64(len(text)) * 1099511628211
	sum ^= uint64(first)<<8 | uint64(last)
	return sum
}
