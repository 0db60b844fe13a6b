package optimistic

import (
	"context"
	"errors"
	"sync"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/logging"
)

var (
	// ErrInFlight is returned when a mutation for the same key has not
	// resolved yet.
	ErrInFlight = errors.New("an update for this item is already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("controller closed")
)

// Commit sends a mutation to the server. prev is the value before the
// optimistic change.
type Commit[V comparable] func(ctx context.Context, prev V) error

// Controller runs optimistic mutations against a Cache, one per key at a
// time.
type Controller[V comparable] struct {
	cache  *Cache[V]
	logger logging.Logger

	mu     sync.Mutex
	busy   map[models.ID]struct{}
	epoch  uint64
	closed bool
}

func NewController[V comparable](cache *Cache[V], logger logging.Logger) *Controller[V] {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller[V]{cache: cache, logger: logger, busy: make(map[models.ID]struct{})}
}

// Cache returns the cache the controller writes to.
func (c *Controller[V]) Cache() *Cache[V] { return c.cache }

// Busy reports whether a mutation for key is in flight.
func (c *Controller[V]) Busy(key models.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[key]
	return ok
}

// Mutate stores apply(current) in the cache, then runs commit. If commit
// fails and the entry still holds the optimistic value, the previous value
// is restored; a newer value written meanwhile is kept. It returns the
// cached value after resolution.
func (c *Controller[V]) Mutate(ctx context.Context, key models.ID, apply func(V) V, commit Commit[V]) (V, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		var zero V
		return zero, ErrClosed
	}
	if _, ok := c.busy[key]; ok {
		c.mu.Unlock()
		cur, _ := c.cache.Get(key)
		return cur, ErrInFlight
	}
	c.busy[key] = struct{}{}
	epoch := c.epoch
	prev, next, had := c.cache.swap(key, apply)
	c.mu.Unlock()

	err := commit(ctx, prev)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// reset while in flight: the key may belong to a newer mutation
		return next, err
	}
	delete(c.busy, key)
	if c.closed {
		return next, err
	}
	if err != nil {
		if c.cache.restore(key, next, prev, had) {
			c.logger.Debug(ctx, "optimistic update rolled back", "key", key, "error", err)
		}
	}
	cur, _ := c.cache.Get(key)
	return cur, err
}

// Seed stores a server value for key unless a mutation for key is in
// flight. It reports whether the value was stored.
func (c *Controller[V]) Seed(key models.ID, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if _, ok := c.busy[key]; ok {
		return false
	}
	c.cache.Set(key, v)
	return true
}

// Reset empties the cache and forgets mutations in flight. Their
// resolutions no longer touch the cache.
func (c *Controller[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	clear(c.busy)
	c.cache.Clear()
}

// Close detaches the controller. Mutations still in flight resolve without
// touching the cache and new ones fail with ErrClosed.
func (c *Controller[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
