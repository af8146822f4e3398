package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Status is the reachability of each backing store.
type Status struct {
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Healthy reports whether no configured store is down.
func (s Status) Healthy() bool {
	return s.Postgres != "down" && s.Redis != "down"
}

// Check pings the stores with a short timeout. A nil pool is reported as
// "disabled".
func Check(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) Status {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := Status{Postgres: "disabled", Redis: "disabled"}
	if pool != nil {
		st.Postgres = pingStatus(pool.Ping(ctx))
	}
	if rdb != nil {
		st.Redis = pingStatus(rdb.Ping(ctx).Err())
	}
	return st
}

func pingStatus(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
