package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/brettboylen/originality-tracker/analyzer"
	"github.com/brettboylen/originality-tracker/models"
)

// resultCache is a content-addressed cache of analysis results. Entries
// expire after ttl and are swept lazily on writes. Concurrent builds for the
// same key are allowed to race; the last write wins and both produce the
// same result.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result    models.AnalysisResult
	timestamp time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey derives the cache key from the post text. Hash collisions map two
// distinct texts to the same entry, which is tolerated.
func cacheKey(text string) string {
	return fmt.Sprintf("post_%d", analyzer.TextHash(text))
}

func (c *resultCache) Get(key string, now time.Time) (models.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || now.Sub(entry.timestamp) > c.ttl {
		return models.AnalysisResult{}, false
	}
	return entry.result, true
}

func (c *resultCache) Put(key string, result models.AnalysisResult, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{result: result, timestamp: now}
}

func (c *resultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
