// Package cache provides lookup cache implementations: a process-local
// map for single-node runs and Redis for shared deployments.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/acquirex/reconcile/pkg/enrich"
)

type memoryEntry struct {
	result    enrich.Result
	expiresAt time.Time
}

// MemoryCache implements cache.LookupCache with in-memory storage.
type MemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached result, or nil on a miss or expired entry.
func (c *MemoryCache) Get(_ context.Context, key string) (*enrich.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	result := entry.result
	return &result, nil
}

// Set stores a result with the given TTL.
func (c *MemoryCache) Set(_ context.Context, key string, r *enrich.Result, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{result: *r, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes one entry.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
