package cache

import (
	"fmt"

	"go.uber.org/zap"

	ledgerapp "github.com/modelmart/backend/internal/application/ledger"
	"github.com/modelmart/backend/internal/infrastructure/config"
)

// EntitlementCacheFactory creates entitlement caches based on configuration
type EntitlementCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// EntitlementCacheFactoryOption is a functional option for configuring the factory
type EntitlementCacheFactoryOption func(*EntitlementCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) EntitlementCacheFactoryOption {
	return func(f *EntitlementCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) EntitlementCacheFactoryOption {
	return func(f *EntitlementCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewEntitlementCacheFactory creates a new factory
func NewEntitlementCacheFactory(cfg config.RedisConfig, opts ...EntitlementCacheFactoryOption) *EntitlementCacheFactory {
	f := &EntitlementCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based entitlement cache
func (f *EntitlementCacheFactory) CreateRedisCache() (ledgerapp.EntitlementCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisEntitlementCache(redisCfg, WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis entitlement cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory entitlement cache.
// This is suitable for single-instance deployments and testing.
// WARNING: In-memory caches do not share state across process instances,
// so different replicas may briefly disagree on a fresh purchase.
func (f *EntitlementCacheFactory) CreateInMemoryCache() ledgerapp.EntitlementCache {
	return NewInMemoryEntitlementCache()
}

// CreateCache creates an entitlement cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory if Redis is not available
// and AllowInMemoryFallback is true.
func (f *EntitlementCacheFactory) CreateCache() (ledgerapp.EntitlementCache, error) {
	// Try Redis first
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis entitlement cache")
		return cache, nil
	}

	// Check if fallback is allowed
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for entitlement cache but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.logger.Warn("Redis unavailable, falling back to in-memory entitlement cache. "+
		"Replicas may briefly disagree on a fresh purchase.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
