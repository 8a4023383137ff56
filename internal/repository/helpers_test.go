package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/database"
	"github.com/gmprep/simulado-backend/internal/model"
)

// openTestDB returns a migrated SQLite database in a temp directory.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	db, err := database.Connect(context.Background(), config.DriverSQLite, dsn, 1)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, config.DriverSQLite, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUserStub(email string) *model.User {
	return &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Candidata",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
}

func createTestUser(t *testing.T, repo *UserRepository, email string) *model.User {
	t.Helper()
	u := createTestUserStub(email)
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
