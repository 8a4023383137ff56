package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/model"
)

// Repository is the SQL access DurableStore needs.
type Repository interface {
	UpsertAnswer(ctx context.Context, userID string, rec model.AnswerRecord) error
	ListAnswers(ctx context.Context, userID string) ([]model.AnswerRecord, error)
	ListIncorrect(ctx context.Context, userID string) ([]model.AnswerRecord, error)
	InsertSimulation(ctx context.Context, userID string, result model.SimulationResult) error
	ListSimulations(ctx context.Context, userID string) ([]model.SimulationResult, error)
	IsPremium(ctx context.Context, userID string) (bool, error)
	SetPremium(ctx context.Context, userID string, premium bool) error
	DeleteProgress(ctx context.Context, userID string) error
}

// DurableStore keeps progress in SQL tables keyed by the signed-in user.
type DurableStore struct {
	repo Repository
	now  func() time.Time
}

// NewDurableStore creates a DurableStore over repo.
func NewDurableStore(repo Repository) *DurableStore {
	return &DurableStore{repo: repo, now: time.Now}
}

func userOf(ctx context.Context) (string, error) {
	id, ok := identity.UserID(ctx)
	if !ok {
		return "", ErrAuthenticationRequired
	}
	return id, nil
}

func (s *DurableStore) RecordAnswer(ctx context.Context, q model.Question, chosen string, isCorrect bool, subject string) error {
	userID, err := userOf(ctx)
	if err != nil {
		return err
	}
	rec := model.AnswerRecord{
		QuestionID: q.ID(),
		Question:   q,
		UserAnswer: chosen,
		IsCorrect:  isCorrect,
		Subject:    subject,
		Timestamp:  s.now().UTC(),
	}
	if err := s.repo.UpsertAnswer(ctx, userID, rec); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (s *DurableStore) RecordSimulation(ctx context.Context, result model.SimulationResult) error {
	userID, err := userOf(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.InsertSimulation(ctx, userID, result); err != nil {
		return fmt.Errorf("record simulation: %w", err)
	}
	return nil
}

func (s *DurableStore) Snapshot(ctx context.Context) (*model.UserProgress, error) {
	userID, err := userOf(ctx)
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.ListAnswers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	sims, err := s.repo.ListSimulations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	premium, err := s.repo.IsPremium(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p := &model.UserProgress{
		QuestionsAnswered:    answers,
		SimulationsCompleted: sims,
		IsPremium:            premium,
	}
	recount(p)
	return p, nil
}

func (s *DurableStore) Incorrect(ctx context.Context) ([]model.AnswerRecord, error) {
	userID, err := userOf(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListIncorrect(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list incorrect: %w", err)
	}
	return records, nil
}

func (s *DurableStore) SubjectStatistics(ctx context.Context) (map[string]model.SubjectStat, error) {
	userID, err := userOf(ctx)
	if err != nil {
		return nil, err
	}
	answers, err := s.repo.ListAnswers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return subjectStats(answers), nil
}

func (s *DurableStore) Simulations(ctx context.Context) ([]model.SimulationResult, error) {
	userID, err := userOf(ctx)
	if err != nil {
		return nil, err
	}
	sims, err := s.repo.ListSimulations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	return sims, nil
}

func (s *DurableStore) LatestSimulation(ctx context.Context) (*model.SimulationResult, error) {
	sims, err := s.Simulations(ctx)
	if err != nil {
		return nil, err
	}
	return latestOf(sims), nil
}

func (s *DurableStore) AverageScore(ctx context.Context) (int, error) {
	sims, err := s.Simulations(ctx)
	if err != nil {
		return 0, err
	}
	return averageOf(sims), nil
}

func (s *DurableStore) TotalStudyTime(ctx context.Context) (int, error) {
	sims, err := s.Simulations(ctx)
	if err != nil {
		return 0, err
	}
	return studyTimeOf(sims), nil
}

func (s *DurableStore) HasReachedFreeLimit(ctx context.Context) (bool, error) {
	userID, err := userOf(ctx)
	if err != nil {
		return false, err
	}
	premium, err := s.repo.IsPremium(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load profile: %w", err)
	}
	if premium {
		return false, nil
	}
	answers, err := s.repo.ListAnswers(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list answers: %w", err)
	}
	return len(answers) >= FreeLimit, nil
}

func (s *DurableStore) IsPremium(ctx context.Context) (bool, error) {
	userID, err := userOf(ctx)
	if err != nil {
		return false, err
	}
	premium, err := s.repo.IsPremium(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load profile: %w", err)
	}
	return premium, nil
}

func (s *DurableStore) SetPremium(ctx context.Context, premium bool) error {
	userID, err := userOf(ctx)
	if err != nil {
		return err
	}
	return s.repo.SetPremium(ctx, userID, premium)
}

func (s *DurableStore) Clear(ctx context.Context) error {
	userID, err := userOf(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteProgress(ctx, userID)
}
