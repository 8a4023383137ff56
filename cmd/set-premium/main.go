package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/database"
	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/logger"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
)

func main() {
	var (
		email  string
		revoke bool
	)
	flag.StringVar(&email, "email", "", "Email of the account")
	flag.BoolVar(&revoke, "revoke", false, "Remove premium instead of granting it")
	flag.Parse()

	if strings.TrimSpace(email) == "" {
		fmt.Println("Usage: set-premium -email <address> [-revoke]")
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// ─── Connect to Database ───────────────────────────────────────────
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	user, err := repository.NewUserRepository(db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			fmt.Printf("Error: no user with email %s\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to look up user")
	}

	store, closeStore, err := openProgressStore(ctx, cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open progress store")
	}
	defer closeStore()

	if err := store.SetPremium(identity.WithUser(ctx, user.ID), !revoke); err != nil {
		log.Fatal().Err(err).Msg("Failed to update premium flag")
	}

	fmt.Printf("User '%s' (%s) premium: %t\n", user.Name, user.Email, !revoke)
}

// openProgressStore opens the configured progress backend. The local
// backend needs Redis; the returned func releases it.
func openProgressStore(ctx context.Context, cfg *config.Config, db *sql.DB, log zerolog.Logger) (progress.Store, func(), error) {
	if cfg.ProgressBackend != config.ProgressLocal {
		store, err := progress.New(cfg.ProgressBackend, repository.NewProgressRepository(db), nil)
		return store, func() {}, err
	}

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	store, err := progress.New(cfg.ProgressBackend, nil, progress.NewRedisKV(rdb))
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	return store, func() { rdb.Close() }, nil
}
