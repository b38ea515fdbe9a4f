// Package cache provides entitlement caching in front of the purchase ledger.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	ledgerapp "github.com/modelmart/backend/internal/application/ledger"
)

// Constants for Redis cache configuration
const (
	entitlementKeyPrefix = "entitlement:"
	defaultScanBatchSize = 100
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisEntitlementCache implements EntitlementCache using Redis.
// Entries are plain "1"/"0" strings keyed by buyer and model.
type RedisEntitlementCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisEntitlementCacheOption is a functional option for configuring the cache
type RedisEntitlementCacheOption func(*RedisEntitlementCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisEntitlementCacheOption {
	return func(c *RedisEntitlementCache) {
		c.logger = logger
	}
}

// NewRedisEntitlementCache creates a new Redis-based entitlement cache
func NewRedisEntitlementCache(cfg RedisConfig, opts ...RedisEntitlementCacheOption) (*RedisEntitlementCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisEntitlementCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisEntitlementCacheWithClient creates a cache with an existing Redis client.
// Note: The caller retains ownership of the client and is responsible for closing it.
func NewRedisEntitlementCacheWithClient(client *redis.Client, opts ...RedisEntitlementCacheOption) *RedisEntitlementCache {
	cache := &RedisEntitlementCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// entitlementKey generates the cache key for a buyer and model pair
func (c *RedisEntitlementCache) entitlementKey(buyerID, modelID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", entitlementKeyPrefix, buyerID.String(), modelID.String())
}

// Get retrieves a cached ownership value. The second return value reports
// whether an entry was found at all.
func (c *RedisEntitlementCache) Get(ctx context.Context, buyerID, modelID uuid.UUID) (bool, bool, error) {
	key := c.entitlementKey(buyerID, modelID)

	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("Entitlement cache miss",
			zap.String("buyer_id", buyerID.String()),
			zap.String("model_id", modelID.String()))
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get entitlement from cache: %w", err)
	}

	return value == "1", true, nil
}

// Set stores an ownership value with a TTL
func (c *RedisEntitlementCache) Set(ctx context.Context, buyerID, modelID uuid.UUID, owned bool, ttl time.Duration) error {
	key := c.entitlementKey(buyerID, modelID)

	value := "0"
	if owned {
		value = "1"
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set entitlement in cache: %w", err)
	}

	c.logger.Debug("Cached entitlement",
		zap.String("buyer_id", buyerID.String()),
		zap.String("model_id", modelID.String()),
		zap.Bool("owned", owned),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes a single cached entry
func (c *RedisEntitlementCache) Invalidate(ctx context.Context, buyerID, modelID uuid.UUID) error {
	key := c.entitlementKey(buyerID, modelID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete entitlement from cache: %w", err)
	}

	return nil
}

// InvalidateBuyer removes every cached entry for a buyer.
// Used when an account is deleted or its purchases are recomputed.
func (c *RedisEntitlementCache) InvalidateBuyer(ctx context.Context, buyerID uuid.UUID) error {
	// Use SCAN to avoid blocking Redis with the KEYS command
	pattern := entitlementKeyPrefix + buyerID.String() + ":*"
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated buyer entitlement cache",
		zap.String("buyer_id", buyerID.String()),
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases any resources held by the cache
func (c *RedisEntitlementCache) Close() error {
	// Only close client if we own it
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisEntitlementCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisEntitlementCache implements EntitlementCache
var _ ledgerapp.EntitlementCache = (*RedisEntitlementCache)(nil)
