package catalog

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/shared"
)

// CollectionCache maps a canonical request identity to the complete item sequence of a paginated collection.
//
// Implementations are write-once per live key: a Put for a key that already holds an unexpired entry is ignored.
type CollectionCache interface {
	Get(identity string) ([]json.RawMessage, bool)
	Put(identity string, items []json.RawMessage) error
}

type cacheEntry struct {
	items     []json.RawMessage
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process [CollectionCache] with an optional TTL. A zero TTL keeps entries for the
// lifetime of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

// Get returns the items stored for identity. Expired entries are evicted and reported as a miss.
func (c *MemoryCache) Get(identity string) ([]json.RawMessage, bool) {
	c.mu.RLock()
	entry, ok := c.entries[identity]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		if current, ok := c.entries[identity]; ok && current.expired(c.now()) {
			delete(c.entries, identity)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.items, true
}

// Put stores items under identity unless a live entry already exists.
func (c *MemoryCache) Put(identity string, items []json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.entries[identity]; ok && !entry.expired(now) {
		return nil
	}

	entry := cacheEntry{items: items}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}
	c.entries[identity] = entry
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// TieredCache serves reads from a fast front cache and falls back to a persistent back cache, promoting hits.
// Writes go to both. Back cache failures are logged and never fail a fetch.
type TieredCache struct {
	front  CollectionCache
	back   CollectionCache
	logger *log.Logger
}

// NewTieredCache layers front over back.
func NewTieredCache(front, back CollectionCache, logger *log.Logger) *TieredCache {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &TieredCache{front: front, back: back, logger: logger}
}

func (c *TieredCache) Get(identity string) ([]json.RawMessage, bool) {
	if items, ok := c.front.Get(identity); ok {
		return items, true
	}

	items, ok := c.back.Get(identity)
	if !ok {
		return nil, false
	}
	if err := c.front.Put(identity, items); err != nil {
		c.logger.Warn("failed to promote cached collection", "identity", identity, "error", err)
	}
	return items, true
}

func (c *TieredCache) Put(identity string, items []json.RawMessage) error {
	if err := c.front.Put(identity, items); err != nil {
		return err
	}
	if err := c.back.Put(identity, items); err != nil {
		c.logger.Warn("failed to persist collection", "identity", identity, "error", err)
	}
	return nil
}
