// File path: internal/chat/cache.go
package chat

import (
	"strings"
	"sync"
	"time"
)

const cacheContextSnippet = 100

type cacheEntry struct {
	response   string
	insertedAt time.Time
}

// responseCache memoizes (query, recent-context) -> response for a short TTL
// so repeated questions in the same conversational context skip the external
// generation call. Eviction is oldest-inserted once the capacity is exceeded,
// not LRU.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	cap     int
	entries map[string]cacheEntry
	order   []string
}

func newResponseCache(ttl time.Duration, capacity int) *responseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 50
	}
	return &responseCache{
		ttl:     ttl,
		cap:     capacity,
		entries: make(map[string]cacheEntry, capacity),
	}
}

func (c *responseCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Since(entry.insertedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.response, true
}

func (c *responseCache) put(key, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{response: response, insertedAt: time.Now()}
	for len(c.entries) > c.cap && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *responseCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry, c.cap)
	c.order = nil
}

// cacheKey combines the normalized query with a truncated snippet of recent
// conversation text, so the same question asked in a different conversational
// context is not incorrectly cache-hit.
func cacheKey(query string, history []Turn) string {
	var recent strings.Builder
	for _, turn := range history {
		recent.WriteString(turn.Content)
		recent.WriteString(" ")
	}
	snippet := recent.String()
	if len(snippet) > cacheContextSnippet {
		snippet = snippet[len(snippet)-cacheContextSnippet:]
	}
	return strings.ToLower(strings.TrimSpace(query)) + "|" + snippet
}
