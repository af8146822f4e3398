package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_RedisUpThenDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	st := Check(context.Background(), nil, rdb)
	assert.Equal(t, Status{Postgres: "disabled", Redis: "up"}, st)
	assert.True(t, st.Healthy())

	mr.Close()
	st = Check(context.Background(), nil, rdb)
	assert.Equal(t, "down", st.Redis)
	assert.False(t, st.Healthy())
}
