package main

import (
	"context"
	"fmt"
	"time"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/database"
	"github.com/medocupa/access-backend/internal/logger"
	"github.com/medocupa/access-backend/internal/repository"
	"github.com/medocupa/access-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// seed-demo writes the demo directory into Postgres with the same ids the
// in-memory demo directory hands out, so grants can reference them.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	identities := repository.NewIdentityRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash demo password")
	}

	fmt.Printf("=== Seeding %d demo identities ===\n", len(service.DemoIdentities))

	successCount := 0
	for _, seed := range service.DemoIdentities {
		identity := seed
		identity.ID = service.DemoIdentityID(seed.Email)
		identity.PasswordHash = string(hash)

		if err := identities.UpsertByEmail(ctx, &identity); err != nil {
			fmt.Printf("Error seeding %s: %v\n", identity.Email, err)
			continue
		}
		if identity.ID != service.DemoIdentityID(seed.Email) {
			log.Warn().Str("email", identity.Email).Str("id", identity.ID).
				Msg("Existing row keeps a different id; grants for this demo identity will not match")
		}
		successCount++
		fmt.Printf("  %-26s %-22s %s\n", identity.Email, identity.Role, identity.ID)
	}

	fmt.Printf("\nSeed completed! %d/%d identities upserted.\n", successCount, len(service.DemoIdentities))
}
