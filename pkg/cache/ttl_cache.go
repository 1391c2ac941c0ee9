// Package cache provides an in-process TTL cache driven by an injectable clock.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache maps string keys to values that expire after a fixed TTL.
// It is safe for concurrent use.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
	ttl   time.Duration
	clock clock.Clock
}

// New creates a cache whose entries live for ttl according to clk.
func New[V any](ttl time.Duration, clk clock.Clock) *TTLCache[V] {
	if clk == nil {
		clk = clock.New()
	}
	return &TTLCache[V]{
		items: make(map[string]entry[V]),
		ttl:   ttl,
		clock: clk,
	}
}

// Get returns the value under key unless it is missing or expired
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || !c.clock.Now().Before(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores value under key for one TTL
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

// Delete removes the given keys and returns how many were present
func (c *TTLCache[V]) Delete(keys ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range keys {
		if _, ok := c.items[key]; ok {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Sweep drops expired entries and returns how many were removed
func (c *TTLCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Run sweeps every interval until ctx is done. onSweep, when set, receives
// the number of entries removed by each sweep.
func (c *TTLCache[V]) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := c.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
