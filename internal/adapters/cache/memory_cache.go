// Package cache provides ReplyCache implementations: in-memory for single
// instances, SQLite and MySQL for caches that survive restarts.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/backend"
)

type memoryEntry struct {
	resp      *backend.Response
	expiresAt time.Time
}

// MemoryCache is an in-memory reply cache with TTL expiry
type MemoryCache struct {
	entries     map[string]*memoryEntry
	mu          sync.RWMutex
	ttl         time.Duration
	cleanupFreq time.Duration
	logger      *zap.Logger
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache and starts its cleanup task
func NewMemoryCache(ttl, cleanupFreq time.Duration, logger *zap.Logger) *MemoryCache {
	c := &MemoryCache{
		entries:     make(map[string]*memoryEntry),
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
	go c.startCleanupTask()
	return c
}

// Get retrieves the cached response for a sender
func (c *MemoryCache) Get(_ context.Context, sender string) (*backend.Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[sender]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, backend.ErrCacheMiss
	}
	return entry.resp, nil
}

// Put stores the response for a sender
func (c *MemoryCache) Put(_ context.Context, sender string, resp *backend.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sender] = &memoryEntry{
		resp:      resp,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Close stops the cleanup task
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0
	for sender, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, sender)
			expired++
		}
	}
	if expired > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expired))
	}
}

func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}
