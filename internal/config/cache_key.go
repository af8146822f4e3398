package config

import (
	"fmt"
)

// MenuPermissionsPrefix prefixes every durable permission-cache record.
const MenuPermissionsPrefix = "menu_permissions_"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key for an identity's session record
func (r *CacheKeyStruct) SessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

// MenuPermissionsKey returns the cache key for an identity's resolved permissions
func (r *CacheKeyStruct) MenuPermissionsKey(userID string) string {
	return MenuPermissionsPrefix + userID
}

// MenuPermissionsPattern matches every permission cache record
func (r *CacheKeyStruct) MenuPermissionsPattern() string {
	return MenuPermissionsPrefix + "*"
}

// UserEventsChannel returns the Redis PubSub channel name for an identity's session events
func (r *CacheKeyStruct) UserEventsChannel(userID string) string {
	return fmt.Sprintf("user:%s:events", userID)
}

// RateLimitKey returns the counter key of a client within a rate-limit window
func (r *CacheKeyStruct) RateLimitKey(scope, client string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, client, window)
}

var CacheKey = NewCacheKeyStruct()
