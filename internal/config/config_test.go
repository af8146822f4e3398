package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PERMISSION_CACHE_TTL_SECONDS", "")
	t.Setenv("DIRECTORY_MODE", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.PermissionCacheTTL)
	assert.Equal(t, DirectoryModeDemo, cfg.DirectoryMode)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PERMISSION_CACHE_TTL_SECONDS", "60")
	t.Setenv("DIRECTORY_MODE", "Postgres")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")

	cfg := Load()

	assert.Equal(t, time.Minute, cfg.PermissionCacheTTL)
	assert.Equal(t, DirectoryModePostgres, cfg.DirectoryMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "menu_permissions_u-1", CacheKey.MenuPermissionsKey("u-1"))
	assert.Equal(t, "session:u-1", CacheKey.SessionKey("u-1"))
	assert.Equal(t, "user:u-1:events", CacheKey.UserEventsChannel("u-1"))
	assert.Equal(t, "menu_permissions_*", CacheKey.MenuPermissionsPattern())
	assert.Equal(t, "ratelimit:login:10.0.0.1:42", CacheKey.RateLimitKey("login", "10.0.0.1", 42))
}
