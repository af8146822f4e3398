package permcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore is the durable tier. Records live under
// "menu_permissions_<userID>" and expire with the freshness window.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Load(ctx context.Context, userID string) (*Entry, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.MenuPermissionsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("read permission cache: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode permission cache: %w", err)
	}
	if entry.Permissions.Grants == nil {
		entry.Permissions.Grants = make(map[string]model.Grant)
	}
	return &entry, nil
}

func (s *RedisStore) Save(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode permission cache: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.MenuPermissionsKey(entry.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write permission cache: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, config.CacheKey.MenuPermissionsKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete permission cache: %w", err)
	}
	return nil
}
