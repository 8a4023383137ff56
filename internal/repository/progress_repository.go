package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gmprep/simulado-backend/internal/model"
)

// ProgressRepository stores answer records, simulation history and the
// premium flag.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// UpsertAnswer stores rec as the single record for its question identity.
// An existing record keeps its position in the history.
func (r *ProgressRepository) UpsertAnswer(ctx context.Context, userID string, rec model.AnswerRecord) error {
	question, err := json.Marshal(rec.Question)
	if err != nil {
		return fmt.Errorf("encode question: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO question_answers (user_id, question_id, question_json, user_answer, is_correct, subject, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, question_id) DO UPDATE SET
		   question_json = excluded.question_json,
		   user_answer   = excluded.user_answer,
		   is_correct    = excluded.is_correct,
		   subject       = excluded.subject,
		   answered_at   = excluded.answered_at`,
		userID, rec.QuestionID, string(question), rec.UserAnswer, rec.IsCorrect, rec.Subject, rec.Timestamp.UnixMilli(),
	)
	return err
}

const selectAnswers = `SELECT question_id, question_json, user_answer, is_correct, subject, answered_at
	 FROM question_answers WHERE user_id = $1`

// ListAnswers returns every answer record in first-answered order.
func (r *ProgressRepository) ListAnswers(ctx context.Context, userID string) ([]model.AnswerRecord, error) {
	return r.queryAnswers(ctx, selectAnswers+` ORDER BY id`, userID)
}

// ListIncorrect returns the records whose latest answer was wrong.
func (r *ProgressRepository) ListIncorrect(ctx context.Context, userID string) ([]model.AnswerRecord, error) {
	return r.queryAnswers(ctx, selectAnswers+` AND is_correct = FALSE ORDER BY id`, userID)
}

func (r *ProgressRepository) queryAnswers(ctx context.Context, query, userID string) ([]model.AnswerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.AnswerRecord, 0)
	for rows.Next() {
		var (
			rec      model.AnswerRecord
			question string
			answered int64
		)
		if err := rows.Scan(&rec.QuestionID, &question, &rec.UserAnswer, &rec.IsCorrect, &rec.Subject, &answered); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(question), &rec.Question); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", rec.QuestionID, err)
		}
		rec.Timestamp = time.UnixMilli(answered).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertSimulation appends a completed simulation to the history.
func (r *ProgressRepository) InsertSimulation(ctx context.Context, userID string, res model.SimulationResult) error {
	bySubject, err := json.Marshal(res.ScoreBySubject)
	if err != nil {
		return fmt.Errorf("encode subject scores: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO simulations (user_id, score, passed, time_spent, score_by_subject_json, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, res.Score, res.Passed, res.TimeSpent, string(bySubject), res.Date.UnixMilli(),
	)
	return err
}

// ListSimulations returns the simulation history, oldest first.
func (r *ProgressRepository) ListSimulations(ctx context.Context, userID string) ([]model.SimulationResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT score, passed, time_spent, score_by_subject_json, completed_at
		 FROM simulations WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sims := make([]model.SimulationResult, 0)
	for rows.Next() {
		var (
			res       model.SimulationResult
			bySubject string
			completed int64
		)
		if err := rows.Scan(&res.Score, &res.Passed, &res.TimeSpent, &bySubject, &completed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(bySubject), &res.ScoreBySubject); err != nil {
			return nil, fmt.Errorf("decode subject scores: %w", err)
		}
		res.Date = time.UnixMilli(completed).UTC()
		sims = append(sims, res)
	}
	return sims, rows.Err()
}

// IsPremium reports the premium flag. A missing profile is not premium.
func (r *ProgressRepository) IsPremium(ctx context.Context, userID string) (bool, error) {
	var premium bool
	err := r.db.QueryRowContext(ctx, `SELECT is_premium FROM profiles WHERE user_id = $1`, userID).Scan(&premium)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return premium, err
}

// SetPremium creates or updates the profile of userID.
func (r *ProgressRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, is_premium, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET is_premium = excluded.is_premium, updated_at = excluded.updated_at`,
		userID, premium, time.Now().UnixMilli(),
	)
	return err
}

// DeleteProgress removes the answers and simulations of userID. The profile stays.
func (r *ProgressRepository) DeleteProgress(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM question_answers WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM simulations WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit()
}
