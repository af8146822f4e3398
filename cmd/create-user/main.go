package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/database"
	"github.com/medocupa/access-backend/internal/hierarchy"
	"github.com/medocupa/access-backend/internal/logger"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	identities := repository.NewIdentityRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label, fallback string) string {
		if fallback != "" {
			fmt.Printf("%s (default %s): ", label, fallback)
		} else {
			fmt.Printf("%s: ", label)
		}
		v, _ := reader.ReadString('\n')
		v = strings.TrimSpace(v)
		if v == "" {
			return fallback
		}
		return v
	}

	fmt.Println("=== Create Clinic User ===")

	name := prompt("Enter Name", "")
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	email := strings.ToLower(prompt("Enter Email", ""))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Println("Roles:")
	for _, rp := range hierarchy.Roles() {
		fmt.Printf("  %-22s %d permissions\n", rp.Role, len(rp.Permissions))
	}
	role := model.RoleTag(prompt("Enter Role", string(model.RoleReceptionist)))
	if !role.Valid() {
		fmt.Printf("Error: unknown role %q\n", role)
		return
	}

	tenant := prompt("Enter Tenant ID", "")
	site := prompt("Enter Site ID", "")
	if tenant == "" || site == "" {
		fmt.Println("Error: Tenant and Site are required")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	identity := &model.Identity{
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hashedPassword),
		Role:         role,
		TenantID:     tenant,
		SiteID:       site,
		Status:       model.StatusActive,
	}
	if err := identities.Create(ctx, identity); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! %s (%s) created as %s with ID: %s\n", identity.DisplayName, identity.Email, identity.Role, identity.ID)
}
