package permcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(t *testing.T) (*Cache, *MemoryStore, *RedisStore, *miniredis.Miniredis, *testClock) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	mem := NewMemoryStore(64, time.Hour)
	durable := NewRedisStore(rdb, time.Hour)
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	c := New(DefaultTTL, zerolog.Nop(), mem, durable)
	c.SetClock(clock.Now)
	return c, mem, durable, mr, clock
}

func receptionist() *model.Identity {
	return &model.Identity{
		ID:       "u-100",
		Email:    "recepcion@clinica.example",
		Role:     model.RoleReceptionist,
		TenantID: "t-1",
		SiteID:   "s-1",
		Status:   model.StatusActive,
	}
}

func sampleSet() model.PermissionSet {
	return model.ParsePermissionSet([]string{"patients:full", "billing:read"})
}

func TestCache_PutThenGet(t *testing.T) {
	c, _, _, mr, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()

	c.Put(ctx, id, sampleSet())

	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, sampleSet(), got)
	assert.True(t, mr.Exists(config.CacheKey.MenuPermissionsKey(id.ID)))
}

func TestCache_MissWhenEmpty(t *testing.T) {
	c, _, _, _, _ := newTestCache(t)

	_, ok := c.Get(context.Background(), receptionist())
	assert.False(t, ok)
}

func TestCache_StaleEntryNeverReturned(t *testing.T) {
	c, _, _, _, clock := newTestCache(t)
	ctx := context.Background()
	id := receptionist()

	c.Put(ctx, id, sampleSet())
	clock.Advance(DefaultTTL - time.Second)
	_, ok := c.Get(ctx, id)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
}

func TestCache_ScopeMismatchIsAbsent(t *testing.T) {
	c, _, _, _, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()
	c.Put(ctx, id, sampleSet())

	otherSite := *id
	otherSite.SiteID = "s-2"
	_, ok := c.Get(ctx, &otherSite)
	assert.False(t, ok)

	otherTenant := *id
	otherTenant.TenantID = "t-2"
	_, ok = c.Get(ctx, &otherTenant)
	assert.False(t, ok)

	otherRole := *id
	otherRole.Role = model.RoleNurse
	_, ok = c.Get(ctx, &otherRole)
	assert.False(t, ok)
}

func TestCache_InvalidateThenGet(t *testing.T) {
	c, mem, _, mr, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()
	c.Put(ctx, id, sampleSet())

	require.NoError(t, c.Invalidate(ctx, id))
	require.NoError(t, c.Invalidate(ctx, id))

	_, ok := c.Get(ctx, id)
	assert.False(t, ok)
	assert.Equal(t, 0, mem.Len())
	assert.False(t, mr.Exists(config.CacheKey.MenuPermissionsKey(id.ID)))
}

func TestCache_DurableTierBackfillsMemory(t *testing.T) {
	c, mem, _, _, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()
	c.Put(ctx, id, sampleSet())

	require.NoError(t, mem.Delete(ctx, id.ID))
	assert.Equal(t, 0, mem.Len())

	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, sampleSet(), got)
	assert.Equal(t, 1, mem.Len())
}

func TestCache_CorruptDurableValueIsMiss(t *testing.T) {
	c, _, _, mr, _ := newTestCache(t)
	id := receptionist()
	require.NoError(t, mr.Set(config.CacheKey.MenuPermissionsKey(id.ID), "{not json"))

	_, ok := c.Get(context.Background(), id)
	assert.False(t, ok)
}

func TestCache_DurableOutageDegradesToMemory(t *testing.T) {
	c, _, _, mr, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()
	c.Put(ctx, id, sampleSet())

	mr.Close()

	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, sampleSet(), got)
	assert.Error(t, c.Invalidate(ctx, id))

	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
}

func TestCache_PutAtDiscardedAfterInvalidate(t *testing.T) {
	c, _, _, _, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()

	epoch := c.Epoch(id.ID)
	require.NoError(t, c.InvalidateUser(ctx, id.ID))

	assert.False(t, c.PutAt(ctx, id, sampleSet(), epoch))
	_, ok := c.Get(ctx, id)
	assert.False(t, ok)

	assert.True(t, c.PutAt(ctx, id, sampleSet(), c.Epoch(id.ID)))
}

func TestCache_ReturnedSetIsACopy(t *testing.T) {
	c, _, _, _, _ := newTestCache(t)
	ctx := context.Background()
	id := receptionist()
	c.Put(ctx, id, sampleSet())

	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	got.Overlay(model.Grant{Resource: model.ResourceInventory, Level: model.LevelFull, Active: true})

	again, ok := c.Get(ctx, id)
	require.True(t, ok)
	_, found := again.Lookup(model.ResourceInventory)
	assert.False(t, found)
}

func TestRedisStore_MissIsErrMiss(t *testing.T) {
	_, _, durable, _, _ := newTestCache(t)

	_, err := durable.Load(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestNewFromConfig_DurableTierUsesPermissionWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := &config.Config{
		SessionTTL:          12 * time.Hour,
		PermissionCacheTTL:  90 * time.Second,
		PermissionCacheSize: 8,
	}
	c, mem := NewFromConfig(cfg, rdb, zerolog.Nop())
	assert.Equal(t, 90*time.Second, c.TTL())

	c.Put(context.Background(), receptionist(), sampleSet())

	key := config.CacheKey.MenuPermissionsKey("u-100")
	require.True(t, mr.Exists(key))
	assert.Equal(t, 90*time.Second, mr.TTL(key))
	assert.Equal(t, 1, mem.Len())

	mr.FastForward(91 * time.Second)
	assert.False(t, mr.Exists(key))
}
