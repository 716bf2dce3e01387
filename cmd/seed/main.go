package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-wager-service/config"
	"github.com/oksasatya/go-wager-service/internal/domain/entity"
	"github.com/oksasatya/go-wager-service/internal/domain/repository"
	pginfra "github.com/oksasatya/go-wager-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-wager-service/pkg/helpers"
)

const demoPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	hasher, err := helpers.NewPasswordHasher(cfg.PasswordSalt)
	if err != nil {
		log.Fatalf("failed to build hasher: %v", err)
	}
	balance, err := cfg.StartingBalanceAmount()
	if err != nil {
		log.Fatalf("invalid starting balance: %v", err)
	}

	u := demoUser(hasher, balance)
	users := pginfra.NewUserRepository(pool)
	if err := report(os.Stdout, u, users.Add(ctx, u)); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
}

// report prints the seeding outcome. Only the username and id are written.
func report(w io.Writer, u *entity.User, addErr error) error {
	switch {
	case errors.Is(addErr, repository.ErrConflict):
		_, _ = fmt.Fprintf(w, "user %s already exists; nothing to do\n", u.Username)
	case addErr != nil:
		return addErr
	default:
		_, _ = fmt.Fprintf(w, "seeded user: id=%s username=%s\n", u.ID, u.Username)
	}
	return nil
}

// demoUser is the account seeded for local development. Its password is
// documented in .env.example and never printed.
func demoUser(hasher *helpers.PasswordHasher, balance decimal.Decimal) *entity.User {
	return &entity.User{
		Username:     "demoUser",
		Email:        "demo@example.com",
		PasswordHash: hasher.Hash(demoPassword),
		Balance:      balance,
	}
}
