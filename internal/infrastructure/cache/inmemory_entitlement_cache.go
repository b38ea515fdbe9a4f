package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	ledgerapp "github.com/modelmart/backend/internal/application/ledger"
)

// entry represents a cached ownership value with expiration
type entry struct {
	owned     bool
	expiresAt time.Time
}

type entitlementKey struct {
	buyerID uuid.UUID
	modelID uuid.UUID
}

// InMemoryEntitlementCache implements EntitlementCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryEntitlementCache struct {
	mu        sync.RWMutex
	entries   map[entitlementKey]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryEntitlementCache creates a new in-memory entitlement cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryEntitlementCache() *InMemoryEntitlementCache {
	cache := &InMemoryEntitlementCache{
		entries:  make(map[entitlementKey]entry),
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get retrieves a cached ownership value. The second return value reports
// whether a live entry was found.
func (c *InMemoryEntitlementCache) Get(ctx context.Context, buyerID, modelID uuid.UUID) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[entitlementKey{buyerID: buyerID, modelID: modelID}]
	if !exists {
		return false, false, nil
	}

	if time.Now().After(e.expiresAt) {
		return false, false, nil // Expired, treat as a miss
	}

	return e.owned, true, nil
}

// Set stores an ownership value with a TTL
func (c *InMemoryEntitlementCache) Set(ctx context.Context, buyerID, modelID uuid.UUID, owned bool, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entitlementKey{buyerID: buyerID, modelID: modelID}] = entry{
		owned:     owned,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Invalidate removes a single cached entry
func (c *InMemoryEntitlementCache) Invalidate(ctx context.Context, buyerID, modelID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, entitlementKey{buyerID: buyerID, modelID: modelID})
	return nil
}

// InvalidateBuyer removes every cached entry for a buyer
func (c *InMemoryEntitlementCache) InvalidateBuyer(ctx context.Context, buyerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if key.buyerID == buyerID {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryEntitlementCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryEntitlementCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryEntitlementCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryEntitlementCache implements EntitlementCache
var _ ledgerapp.EntitlementCache = (*InMemoryEntitlementCache)(nil)
