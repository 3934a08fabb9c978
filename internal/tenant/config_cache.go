package tenant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConfigCache bounds store lookups for routing configuration. Every
// configuration mutation invalidates the cached entry, so changes take
// effect on the next request; the TTL only bounds staleness across
// processes that missed an invalidation.
type ConfigCache interface {
	Get(ctx context.Context, tenantID string) (*RoutingConfig, bool)
	Set(ctx context.Context, tenantID string, cfg *RoutingConfig)
	Invalidate(ctx context.Context, tenantID string)
}

const cacheKeyPrefix = "backoffice:tenant:routing:"

// cachedConfig is the Redis wire form of a routing configuration. The API
// surface hides the credential behind json:"-", so the cache serializes
// through this private shape to keep it across processes.
type cachedConfig struct {
	RoutingConfig
	Credential string `json:"credential"`
}

func encodeCachedConfig(cfg *RoutingConfig) ([]byte, error) {
	return json.Marshal(cachedConfig{RoutingConfig: *cfg, Credential: cfg.Credential})
}

func decodeCachedConfig(data []byte) (*RoutingConfig, error) {
	var entry cachedConfig
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	cfg := entry.RoutingConfig
	cfg.Credential = entry.Credential
	return &cfg, nil
}

// RedisConfigCache is a ConfigCache shared across processes.
type RedisConfigCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisConfigCache creates a Redis-backed ConfigCache with the given TTL.
func NewRedisConfigCache(client redis.UniversalClient, ttl time.Duration) *RedisConfigCache {
	return &RedisConfigCache{client: client, ttl: ttl}
}

func (c *RedisConfigCache) Get(ctx context.Context, tenantID string) (*RoutingConfig, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+tenantID).Bytes()
	if err != nil {
		return nil, false
	}
	cfg, err := decodeCachedConfig(data)
	if err != nil {
		return nil, false
	}
	return cfg, true
}

func (c *RedisConfigCache) Set(ctx context.Context, tenantID string, cfg *RoutingConfig) {
	data, err := encodeCachedConfig(cfg)
	if err != nil {
		return
	}
	// Cache failures only cost an extra store lookup.
	_ = c.client.Set(ctx, cacheKeyPrefix+tenantID, data, c.ttl).Err()
}

func (c *RedisConfigCache) Invalidate(ctx context.Context, tenantID string) {
	_ = c.client.Del(ctx, cacheKeyPrefix+tenantID).Err()
}

type cacheEntry struct {
	value     *RoutingConfig
	expiresAt time.Time
}

// InMemoryConfigCache is a per-process ConfigCache for single-node
// deployments and tests.
type InMemoryConfigCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewInMemoryConfigCache creates a map-backed ConfigCache with the given TTL.
func NewInMemoryConfigCache(ttl time.Duration) *InMemoryConfigCache {
	return &InMemoryConfigCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *InMemoryConfigCache) Get(ctx context.Context, tenantID string) (*RoutingConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[tenantID]
	if !found || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (c *InMemoryConfigCache) Set(ctx context.Context, tenantID string, cfg *RoutingConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[tenantID] = cacheEntry{
		value:     cfg,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *InMemoryConfigCache) Invalidate(ctx context.Context, tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}
