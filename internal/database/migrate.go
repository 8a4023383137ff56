package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/migrations"
)

// NewMigrator builds a migrator over the embedded migrations of driver.
// Closing it closes db as well.
func NewMigrator(db *sql.DB, driver string) (*migrate.Migrate, error) {
	var (
		target database.Driver
		err    error
	)
	switch driver {
	case config.DriverPostgres:
		target, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case config.DriverSQLite:
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return nil, fmt.Errorf("migration init: %w", err)
	}
	return m, nil
}

// Migrate applies the embedded migrations for driver to db. The migrator is
// not closed since closing it would close db.
func Migrate(db *sql.DB, driver string, log zerolog.Logger) error {
	m, err := NewMigrator(db, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, _ := m.Version()
	log.Info().Uint("version", version).Msg("Database schema up to date")
	return nil
}
