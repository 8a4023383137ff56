package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/gmprep/simulado-backend/internal/config"
)

// Open connects to the configured SQL database and validates the connection.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	db, err := Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("driver", cfg.DatabaseDriver).
		Int("max_conns", cfg.MaxDBConns).
		Msg("Database connected")

	return db, nil
}

// Connect opens a *sql.DB for driver ("postgres" or "sqlite").
func Connect(ctx context.Context, driver, dsn string, maxConns int) (*sql.DB, error) {
	var driverName string
	switch driver {
	case config.DriverPostgres:
		driverName = "pgx"
	case config.DriverSQLite:
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == config.DriverSQLite {
		// Single writer.
		db.SetMaxOpenConns(1)
	} else if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == config.DriverSQLite {
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragmas: %w", err)
		}
	}

	return db, nil
}
