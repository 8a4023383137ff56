package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gmprep/simulado-backend/internal/model"
)

var (
	ErrDuplicateEmail = errors.New("user with this email already exists")
	ErrUserNotFound   = errors.New("user not found")
)

// UserRepository handles account and profile data access.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and an empty profile. u.ID and u.CreatedAt must be set.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt.UnixMilli(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, is_premium, updated_at) VALUES ($1, $2, $3)`,
		id, u.IsPremium, u.CreatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return tx.Commit()
}

const selectUser = `SELECT u.id, u.email, u.name, u.password_hash, u.created_at, COALESCE(p.is_premium, FALSE)
	 FROM users u LEFT JOIN profiles p ON p.user_id = u.id`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var created int64
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &created, &u.IsPremium)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.email = $1`, email))
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.id = $1`, id))
}

// UpdatePassword replaces the password hash of a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
