package audit

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type cacheEntry struct {
	audit     *Audit
	timestamp time.Time
}

// resultCache holds finished audits for ttl. A non-positive ttl disables it.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

func newResultCache(ttl time.Duration, maxSize int, now func() time.Time) *resultCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     now,
	}
}

func (c *resultCache) enabled() bool { return c.ttl > 0 }

// cacheKey hashes the normalized URL together with every option that
// changes the result.
func cacheKey(url string, opts Options) string {
	raw := fmt.Sprintf("%s|%d|%d|%d", url, opts.MinKeywordLength, opts.TopKeywordCount, opts.MinParagraphWords)
	hash := md5.Sum([]byte(raw))
	return hex.EncodeToString(hash[:])
}

func (c *resultCache) get(key string) (*Audit, bool) {
	if !c.enabled() {
		return nil, false
	}
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if found && c.now().Sub(entry.timestamp) < c.ttl {
		c.hits.Add(1)
		return entry.audit, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *resultCache) contains(key string) bool {
	if !c.enabled() {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[key]
	return found && c.now().Sub(entry.timestamp) < c.ttl
}

func (c *resultCache) put(key string, a *Audit) {
	if !c.enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{audit: a, timestamp: c.now()}
	if len(c.entries) > c.maxSize {
		c.evictOldest(len(c.entries) - c.maxSize)
	}
}

// cleanup drops expired entries and trims to maxSize. It returns how many
// entries were removed.
func (c *resultCache) cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.entries)
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) >= c.ttl {
			delete(c.entries, key)
		}
	}
	if len(c.entries) > c.maxSize {
		c.evictOldest(len(c.entries) - c.maxSize)
	}
	return before - len(c.entries)
}

// evictOldest removes the n oldest entries. Caller holds mu.
func (c *resultCache) evictOldest(n int) {
	type aged struct {
		key       string
		timestamp time.Time
	}
	entries := make([]aged, 0, len(c.entries))
	for key, entry := range c.entries {
		entries = append(entries, aged{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].timestamp.Equal(entries[j].timestamp) {
			return entries[i].key < entries[j].key
		}
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < n && i < len(entries); i++ {
		delete(c.entries, entries[i].key)
	}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
