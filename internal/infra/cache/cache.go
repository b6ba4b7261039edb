// Package cache provides a small in-memory TTL cache. The bot uses it
// for scraped currency boards so a burst of rate requests does not
// hammer the upstream page.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	deadline time.Time
}

// InMemory is a thread-safe TTL cache. Expired entries are dropped
// lazily: on lookup, and in bulk whenever a write lands more than one
// TTL after the previous sweep. No background goroutine.
type InMemory[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]entry[T]
	lastSweep time.Time
}

// New creates a cache whose entries live for ttl.
func New[T any](ttl time.Duration) *InMemory[T] {
	return &InMemory[T]{
		ttl:       ttl,
		entries:   make(map[string]entry[T]),
		lastSweep: time.Now(),
	}
}

// Get returns the value for key, or false if absent or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if time.Now().After(e.deadline) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{value: value, deadline: now.Add(c.ttl)}

	if now.Sub(c.lastSweep) > c.ttl {
		for k, e := range c.entries {
			if now.After(e.deadline) {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}
}

// Delete removes key if present.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
