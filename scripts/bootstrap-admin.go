// Command bootstrap-admin seeds an administrator account directly into
// the store, for fresh deployments where no admin exists yet.
//
// Usage:
//
//	go run scripts/bootstrap-admin.go -backend postgres -database-url $DATABASE_URL -email admin@example.com -password secret
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerlite/ledgerlite/internal/auth"
	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
	"github.com/ledgerlite/ledgerlite/internal/model"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func main() {
	var (
		backend     = flag.String("backend", os.Getenv("STORE_BACKEND"), "Store backend: redis or postgres")
		redisURL    = flag.String("redis-url", os.Getenv("REDIS_URL"), "Redis connection string")
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@ledgerlite.local", "Admin email")
		password    = flag.String("password", "", "Admin password")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, *backend, *redisURL, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	repo := repository.New(store, events.NewBus(logger, nil), 2000)

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := model.User{
		ID:           uuid.New().String(),
		Email:        *email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Fprintln(os.Stderr, "a user with that email already exists")
		} else {
			fmt.Fprintln(os.Stderr, "create user:", err)
		}
		os.Exit(1)
	}

	out := output{UserID: user.ID, Email: user.Email, Role: string(user.Role)}
	if *format == "json" {
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}
	fmt.Printf("created admin %s (%s)\n", out.Email, out.UserID)
}

func openStore(ctx context.Context, backend, redisURL, databaseURL string) (kvstore.Store, error) {
	switch backend {
	case "redis":
		if redisURL == "" {
			return nil, fmt.Errorf("redis backend requires -redis-url")
		}
		return kvstore.NewRedis(ctx, redisURL)
	case "postgres":
		if databaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires -database-url")
		}
		return kvstore.NewPostgres(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported backend %q (use redis or postgres)", backend)
	}
}
