package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/database"
	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/logger"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// ─── Connect to Database ───────────────────────────────────────────
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	authService := service.NewAuthService(cfg, repository.NewUserRepository(db), nil)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input

	fmt.Print("Premium? [y/N]: ")
	premiumStr, _ := reader.ReadString('\n')
	premium := strings.EqualFold(strings.TrimSpace(premiumStr), "y")

	req := &model.RegisterRequest{Name: name, Email: email, Password: string(bytePassword)}
	if err := validator.Struct(req); err != nil {
		for field, msg := range validator.TranslateErrors(err) {
			fmt.Printf("Error: %s: %s\n", field, msg)
		}
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	res, err := authService.Register(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Println("Error: a user with this email already exists")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	if premium {
		store, closeStore, err := openProgressStore(ctx, cfg, db, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open progress store")
		}
		defer closeStore()
		if err := store.SetPremium(identity.WithUser(ctx, res.User.ID), true); err != nil {
			log.Fatal().Err(err).Msg("Failed to grant premium")
		}
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created with ID: %s (premium: %t)\n", res.User.Name, res.User.Email, res.User.ID, premium)
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
