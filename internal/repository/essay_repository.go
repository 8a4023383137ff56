package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/gmprep/simulado-backend/internal/model"
)

// EssayRepository handles essay data access.
type EssayRepository struct {
	db *sql.DB
}

// NewEssayRepository creates a new EssayRepository.
func NewEssayRepository(db *sql.DB) *EssayRepository {
	return &EssayRepository{db: db}
}

// Insert stores an essay. Re-delivered essays with a known ID are ignored.
func (r *EssayRepository) Insert(ctx context.Context, e *model.Essay) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO essays (id, user_id, theme, body, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, e.Theme, e.Body, string(e.Status), e.CreatedAt.UnixMilli(),
	)
	return err
}

// ListByUser returns the essays of a user, newest first.
func (r *EssayRepository) ListByUser(ctx context.Context, userID string) ([]model.Essay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, theme, body, status, created_at
		 FROM essays WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	essays := make([]model.Essay, 0)
	for rows.Next() {
		var (
			e       model.Essay
			status  string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Theme, &e.Body, &status, &created); err != nil {
			return nil, err
		}
		e.Status = model.EssayStatus(status)
		e.CreatedAt = time.UnixMilli(created).UTC()
		essays = append(essays, e)
	}
	return essays, rows.Err()
}
