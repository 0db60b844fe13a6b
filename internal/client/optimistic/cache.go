package optimistic

import (
	"sync"

	"github.com/guia-app/guia/internal/client/models"
)

// Cache is the client's view of per-entity state, keyed by entity id.
type Cache[V comparable] struct {
	mu sync.RWMutex
	m  map[models.ID]V
}

func NewCache[V comparable]() *Cache[V] {
	return &Cache[V]{m: make(map[models.ID]V)}
}

func (c *Cache[V]) Get(key models.ID) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *Cache[V]) Set(key models.ID, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = v
}

func (c *Cache[V]) Delete(key models.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.m)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// restore puts prev back under key if the entry still holds want. had
// tells whether prev existed before the mutation.
func (c *Cache[V]) restore(key models.ID, want, prev V, had bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.m[key]
	if !ok || cur != want {
		return false
	}
	if had {
		c.m[key] = prev
	} else {
		delete(c.m, key)
	}
	return true
}

// swap applies fn to the current value and stores the result.
func (c *Cache[V]) swap(key models.ID, fn func(V) V) (prev, next V, had bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had = c.m[key]
	next = fn(prev)
	c.m[key] = next
	return prev, next, had
}
