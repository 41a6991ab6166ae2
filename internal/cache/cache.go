// Package cache holds catalog responses in memory so that paging back and forth
// through the storefront does not hit the API on every keypress.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

type slot[V any] struct {
	value V
	until time.Time
}

func (s slot[V]) live(now time.Time) bool {
	return !now.After(s.until)
}

// load is a fetch in progress. Callers missing on the same key wait on done.
type load[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// Cache maps keys to values that stay fresh for a fixed TTL after they are stored.
// It is safe for concurrent use by every SSH session.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	slots    map[K]slot[V]
	inflight map[K]*load[V]
	// gen changes on every write, so a load that started before a write does not
	// overwrite it.
	gen     uint64
	ttl     time.Duration
	nowFunc func() time.Time
}

// New returns an empty cache.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		slots:    make(map[K]slot[V]),
		inflight: make(map[K]*load[V]),
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.slots[key]; ok && s.live(c.nowFunc()) {
		return s.value, true
	}
	var zero V
	return zero, false
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.slots[key] = slot[V]{value: value, until: c.nowFunc().Add(c.ttl)}
}

// GetOrLoad returns the fresh value for key or fetches it with fn. Concurrent
// misses on one key share a single fetch. Errors are returned to every waiter
// and nothing is stored.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, fn func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if s, ok := c.slots[key]; ok && s.live(c.nowFunc()) {
		c.mu.Unlock()
		return s.value, nil
	}
	if l, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		return c.wait(ctx, key, l, fn)
	}
	l := &load[V]{done: make(chan struct{})}
	c.inflight[key] = l
	gen := c.gen
	c.mu.Unlock()

	l.value, l.err = fn(ctx)

	c.mu.Lock()
	delete(c.inflight, key)
	if l.err == nil && gen == c.gen {
		c.slots[key] = slot[V]{value: l.value, until: c.nowFunc().Add(c.ttl)}
	}
	c.mu.Unlock()
	close(l.done)

	return l.value, l.err
}

func (c *Cache[K, V]) wait(ctx context.Context, key K, l *load[V], fn func(context.Context) (V, error)) (V, error) {
	select {
	case <-l.done:
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
	// The session that started the fetch went away. Ours is still here, so retry.
	if isCancellation(l.err) && ctx.Err() == nil {
		return c.GetOrLoad(ctx, key, fn)
	}
	return l.value, l.err
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	delete(c.slots, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.slots = make(map[K]slot[V])
}

// Values returns every value that is still fresh, in no particular order.
func (c *Cache[K, V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.nowFunc()
	out := make([]V, 0, len(c.slots))
	for _, s := range c.slots {
		if s.live(now) {
			out = append(out, s.value)
		}
	}
	return out
}

// Sweep frees stale slots and reports how many it freed.
func (c *Cache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	n := 0
	for key, s := range c.slots {
		if !s.live(now) {
			delete(c.slots, key)
			n++
		}
	}
	return n
}

// Len counts stored slots, stale ones included until the next Sweep.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}
