package permcache

import (
	"github.com/medocupa/access-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewFromConfig builds the two-tier cache used by the server: an in-process
// LRU in front of Redis. Both tiers expire with the permission freshness
// window, never with the session lifetime. The memory tier is returned for
// size reporting.
func NewFromConfig(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (*Cache, *MemoryStore) {
	memoryTier := NewMemoryStore(cfg.PermissionCacheSize, cfg.PermissionCacheTTL)
	durableTier := NewRedisStore(rdb, cfg.PermissionCacheTTL)
	return New(cfg.PermissionCacheTTL, log, memoryTier, durableTier), memoryTier
}
