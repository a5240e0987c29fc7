package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache is an in-process expiring key-value store for short-lived
// secrets such as captcha challenges. Expired entries are invisible to
// readers immediately; a background sweep reclaims their memory on a
// fixed interval. Callers that need a distributed store can swap this
// component out without touching call sites.
type Cache struct {
	mu            sync.RWMutex
	entries       map[string]entry
	sweepInterval time.Duration
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// New creates a cache that sweeps expired entries every sweepInterval.
func New(sweepInterval time.Duration) *Cache {
	return &Cache{
		entries:       make(map[string]entry),
		sweepInterval: sweepInterval,
	}
}

// Start runs the eviction sweep until the context is cancelled.
func (c *Cache) Start(ctx context.Context) {
	logger := log.With().Str("component", "cache").Logger()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down cache sweep")
			return
		case <-ticker.C:
			evicted := c.sweep()
			if evicted > 0 {
				logger.Debug().Int("evicted", evicted).Msg("swept expired entries")
			}
		}
	}
}

// Set stores a value under key for the given TTL, replacing any
// previous value.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the live value for key. Expired entries report as absent
// even before the sweep has run.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Take returns the live value for key and removes it in the same
// critical section, so a one-shot secret can be consumed exactly once.
func (c *Cache) Take(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	delete(c.entries, key)
	if time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of entries, live or not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}
