package progress

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/model"
)

// LocalStore keeps the whole progress document of a user under one KV key.
// Anonymous callers share the "local" document.
type LocalStore struct {
	kv  KV
	now func() time.Time
}

// NewLocalStore creates a LocalStore over kv.
func NewLocalStore(kv KV) *LocalStore {
	return &LocalStore{kv: kv, now: time.Now}
}

func (s *LocalStore) key(ctx context.Context) string {
	userID, _ := identity.UserID(ctx)
	return config.CacheKey.UserProgressKey(userID)
}

func decodeProgress(data []byte) (*model.UserProgress, error) {
	p := &model.UserProgress{}
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return p, nil
}

func (s *LocalStore) mutate(ctx context.Context, fn func(p *model.UserProgress)) error {
	return s.kv.Update(ctx, s.key(ctx), func(current []byte) ([]byte, error) {
		p, err := decodeProgress(current)
		if err != nil {
			return nil, err
		}
		fn(p)
		return json.Marshal(p)
	})
}

func (s *LocalStore) RecordAnswer(ctx context.Context, q model.Question, chosen string, isCorrect bool, subject string) error {
	rec := model.AnswerRecord{
		QuestionID: q.ID(),
		Question:   q,
		UserAnswer: chosen,
		IsCorrect:  isCorrect,
		Subject:    subject,
		Timestamp:  s.now().UTC(),
	}
	return s.mutate(ctx, func(p *model.UserProgress) {
		p.QuestionsAnswered = upsertRecord(p.QuestionsAnswered, rec)
		recount(p)
	})
}

func (s *LocalStore) RecordSimulation(ctx context.Context, result model.SimulationResult) error {
	return s.mutate(ctx, func(p *model.UserProgress) {
		p.SimulationsCompleted = append(p.SimulationsCompleted, result)
	})
}

func (s *LocalStore) Snapshot(ctx context.Context) (*model.UserProgress, error) {
	data, err := s.kv.Get(ctx, s.key(ctx))
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	p, err := decodeProgress(data)
	if err != nil {
		return nil, err
	}
	recount(p)
	return p, nil
}

func (s *LocalStore) Incorrect(ctx context.Context) ([]model.AnswerRecord, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return incorrectOf(p.QuestionsAnswered), nil
}

func (s *LocalStore) SubjectStatistics(ctx context.Context) (map[string]model.SubjectStat, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return subjectStats(p.QuestionsAnswered), nil
}

func (s *LocalStore) Simulations(ctx context.Context) ([]model.SimulationResult, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if p.SimulationsCompleted == nil {
		return []model.SimulationResult{}, nil
	}
	return p.SimulationsCompleted, nil
}

func (s *LocalStore) LatestSimulation(ctx context.Context) (*model.SimulationResult, error) {
	sims, err := s.Simulations(ctx)
	if err != nil {
		return nil, err
	}
	return latestOf(sims), nil
}

func (s *LocalStore) AverageScore(ctx context.Context) (int, error) {
	sims, err := s.Simulations(ctx)
	if err != nil {
		return 0, err
	}
	return averageOf(sims), nil
}

func (s *LocalStore) TotalStudyTime(ctx context.Context) (int, error) {
	sims, err := s.Simulations(ctx)
	if err != nil {
		return 0, err
	}
	return studyTimeOf(sims), nil
}

func (s *LocalStore) HasReachedFreeLimit(ctx context.Context) (bool, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return freeLimitReached(p), nil
}

func (s *LocalStore) IsPremium(ctx context.Context) (bool, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return p.IsPremium, nil
}

func (s *LocalStore) SetPremium(ctx context.Context, premium bool) error {
	return s.mutate(ctx, func(p *model.UserProgress) {
		p.IsPremium = premium
	})
}

func (s *LocalStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key(ctx))
}
