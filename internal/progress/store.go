// Package progress records answers and mock exam results and derives the
// aggregates shown on the progress page.
package progress

import (
	"context"
	"errors"
	"math"
	"slices"

	"github.com/gmprep/simulado-backend/internal/model"
)

// FreeLimit is the number of answered questions available without premium.
const FreeLimit = 30

var (
	// ErrAuthenticationRequired is returned by stores that need a signed-in user.
	ErrAuthenticationRequired = errors.New("progress: authentication required")
	// ErrConflict is returned when a concurrent update could not be resolved.
	ErrConflict = errors.New("progress: too many concurrent updates")
)

// Store persists one user's progress. The user is resolved from the context.
type Store interface {
	RecordAnswer(ctx context.Context, q model.Question, chosen string, isCorrect bool, subject string) error
	RecordSimulation(ctx context.Context, result model.SimulationResult) error
	Incorrect(ctx context.Context) ([]model.AnswerRecord, error)
	SubjectStatistics(ctx context.Context) (map[string]model.SubjectStat, error)
	LatestSimulation(ctx context.Context) (*model.SimulationResult, error)
	AverageScore(ctx context.Context) (int, error)
	TotalStudyTime(ctx context.Context) (int, error)
	HasReachedFreeLimit(ctx context.Context) (bool, error)

	Snapshot(ctx context.Context) (*model.UserProgress, error)
	IsPremium(ctx context.Context) (bool, error)
	Simulations(ctx context.Context) ([]model.SimulationResult, error)
	SetPremium(ctx context.Context, premium bool) error
	Clear(ctx context.Context) error
}

// roundHalfUp rounds halves toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// upsertRecord replaces the record with the same question identity in place,
// or appends rec when the identity is new.
func upsertRecord(records []model.AnswerRecord, rec model.AnswerRecord) []model.AnswerRecord {
	i := slices.IndexFunc(records, func(r model.AnswerRecord) bool {
		return r.QuestionID == rec.QuestionID
	})
	if i >= 0 {
		records[i] = rec
		return records
	}
	return append(records, rec)
}

// recount derives the totals from the answer set.
func recount(p *model.UserProgress) {
	p.TotalQuestionsAnswered = len(p.QuestionsAnswered)
	p.TotalCorrectAnswers = 0
	for _, r := range p.QuestionsAnswered {
		if r.IsCorrect {
			p.TotalCorrectAnswers++
		}
	}
}

func incorrectOf(records []model.AnswerRecord) []model.AnswerRecord {
	out := make([]model.AnswerRecord, 0)
	for _, r := range records {
		if !r.IsCorrect {
			out = append(out, r)
		}
	}
	return out
}

func subjectStats(records []model.AnswerRecord) map[string]model.SubjectStat {
	stats := make(map[string]model.SubjectStat)
	for _, r := range records {
		s := stats[r.Subject]
		s.Total++
		if r.IsCorrect {
			s.Correct++
		}
		stats[r.Subject] = s
	}
	for name, s := range stats {
		s.Percentage = roundHalfUp(float64(s.Correct) / float64(s.Total) * 100)
		stats[name] = s
	}
	return stats
}

func latestOf(sims []model.SimulationResult) *model.SimulationResult {
	if len(sims) == 0 {
		return nil
	}
	last := sims[len(sims)-1]
	return &last
}

func averageOf(sims []model.SimulationResult) int {
	if len(sims) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sims {
		sum += s.Score
	}
	return roundHalfUp(sum / float64(len(sims)))
}

func studyTimeOf(sims []model.SimulationResult) int {
	total := 0
	for _, s := range sims {
		total += s.TimeSpent
	}
	return total
}

func freeLimitReached(p *model.UserProgress) bool {
	return !p.IsPremium && p.TotalQuestionsAnswered >= FreeLimit
}

// Dashboard assembles every aggregate of a store from one snapshot.
func Dashboard(ctx context.Context, s Store) (*model.Dashboard, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Dashboard{
		TotalQuestionsAnswered: p.TotalQuestionsAnswered,
		TotalCorrectAnswers:    p.TotalCorrectAnswers,
		IncorrectCount:         len(incorrectOf(p.QuestionsAnswered)),
		IsPremium:              p.IsPremium,
		FreeLimitReached:       freeLimitReached(p),
		SimulationsCompleted:   len(p.SimulationsCompleted),
		LatestSimulation:       latestOf(p.SimulationsCompleted),
		AverageScore:           averageOf(p.SimulationsCompleted),
		TotalStudyTime:         studyTimeOf(p.SimulationsCompleted),
		Subjects:               subjectStats(p.QuestionsAnswered),
	}, nil
}
