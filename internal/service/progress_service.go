package service

import (
	"context"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
)

// ProgressService exposes the read side of the progress store.
type ProgressService struct {
	store progress.Store
}

// NewProgressService creates a new ProgressService.
func NewProgressService(store progress.Store) *ProgressService {
	return &ProgressService{store: store}
}

func (s *ProgressService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	return progress.Dashboard(ctx, s.store)
}

// Incorrect lists the questions whose latest answer was wrong, for review.
func (s *ProgressService) Incorrect(ctx context.Context) ([]model.AnswerRecord, error) {
	records, err := s.store.Incorrect(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.AnswerRecord{}
	}
	return records, nil
}

func (s *ProgressService) Subjects(ctx context.Context) (map[string]model.SubjectStat, error) {
	return s.store.SubjectStatistics(ctx)
}

func (s *ProgressService) Simulations(ctx context.Context) ([]model.SimulationResult, error) {
	sims, err := s.store.Simulations(ctx)
	if err != nil {
		return nil, err
	}
	if sims == nil {
		sims = []model.SimulationResult{}
	}
	return sims, nil
}

// Latest returns the most recent simulation, or nil when there is none.
func (s *ProgressService) Latest(ctx context.Context) (*model.SimulationResult, error) {
	return s.store.LatestSimulation(ctx)
}

// Clear wipes the caller's answers and simulations.
func (s *ProgressService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
