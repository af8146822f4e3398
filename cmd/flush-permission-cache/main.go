package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/database"
	"github.com/medocupa/access-backend/internal/logger"
)

// flush-permission-cache drops durable permission sets so the next check of
// every affected user recomputes from the role table and stored grants.
// Running servers keep their in-process entries until they go stale.
func main() {
	var userID string
	flag.StringVar(&userID, "user", "", "Only flush this user id")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	fmt.Println("=== Flush Permission Cache ===")

	if userID != "" {
		n, err := rdb.Del(ctx, config.CacheKey.MenuPermissionsKey(userID)).Result()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to delete permission entry")
		}
		fmt.Printf("Removed %d entry for user %s\n", n, userID)
		return
	}

	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, config.CacheKey.MenuPermissionsPattern(), 500).Result()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to scan permission keys")
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to delete permission keys")
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	fmt.Printf("\nSuccess! Removed %d cached permission sets.\n", removed)
}
