package adapters

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/huddlehq/huddle/huddle/history"
)

// LRUCache is an in-process preview cache with per-entry TTL. Entries are
// evicted least-recently-used first once capacity is reached; expired
// entries are dropped lazily on access.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// NewLRUCache creates a new LRU cache with the specified capacity.
func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a value from the cache.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expires) {
		c.order.Remove(elem)
		delete(c.items, key)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return entry.value, true
}

// Set stores a value in the cache with a TTL in seconds.
func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(time.Duration(ttlSeconds) * time.Second)

	if elem, exists := c.items[key]; exists {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.expires = expires
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value, expires: expires})

	for c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}

	return nil
}

// Len returns the number of cached entries, including not-yet-collected
// expired ones.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Ensure LRUCache implements the PreviewCache interface.
var _ history.PreviewCache = (*LRUCache)(nil)
