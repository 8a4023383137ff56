package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/exam"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/subject"
)

const (
	// StudySampleSize is the default number of questions per study round.
	StudySampleSize = 20
	// MaxStudySampleSize caps the count a client may request.
	MaxStudySampleSize = 50
)

var (
	ErrFreeLimitReached = errors.New("free question limit reached")
	ErrQuestionNotFound = errors.New("question not found")
)

// QuestionSource is the corpus access the services need.
type QuestionSource interface {
	LoadAll(ctx context.Context) ([]model.Question, error)
	Lookup(ctx context.Context, id string) (model.Question, bool, error)
}

// StudyService serves study rounds by subject and grades single answers.
type StudyService struct {
	questions QuestionSource
	progress  progress.Store
	rng       corpus.Rand
}

// NewStudyService creates a new StudyService.
func NewStudyService(questions QuestionSource, store progress.Store) *StudyService {
	return &StudyService{questions: questions, progress: store}
}

// Subjects lists the canonical subjects with their weight, mock exam quota
// and how many questions the corpus holds.
func (s *StudyService) Subjects(ctx context.Context) ([]model.SubjectOverview, error) {
	all, err := s.questions.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := corpus.CountBySubject(all)

	out := make([]model.SubjectOverview, 0, len(subject.Canonical()))
	for _, name := range subject.Canonical() {
		out = append(out, model.SubjectOverview{
			Name:      name,
			Weight:    exam.Weight(name),
			Quota:     exam.QuotaFor(name),
			Available: counts[name],
		})
	}
	return out, nil
}

// Questions draws a random study round for a subject. The label is
// normalized, so "lingua portuguesa" selects Português.
func (s *StudyService) Questions(ctx context.Context, label string, count int) ([]model.QuestionForStudent, error) {
	if count <= 0 {
		count = StudySampleSize
	}
	count = min(count, MaxStudySampleSize)

	all, err := s.questions.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	pool := corpus.FilterBySubject(all, subject.Normalize(label))
	picked := corpus.SampleRandom(pool, count, s.rng)

	out := make([]model.QuestionForStudent, len(picked))
	for i, q := range picked {
		q.Subject = subject.Normalize(q.Subject)
		out[i] = q.ForStudent()
	}
	return out, nil
}

// Answer grades one study answer and records it. Free users are blocked
// once they reach the free limit.
func (s *StudyService) Answer(ctx context.Context, req *model.StudyAnswerRequest) (*model.StudyAnswerResult, error) {
	reached, err := s.progress.HasReachedFreeLimit(ctx)
	if err != nil {
		return nil, err
	}
	if reached {
		return nil, ErrFreeLimitReached
	}

	q, ok, err := s.questions.Lookup(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuestionNotFound
	}

	canonical := subject.Normalize(q.Subject)
	correct := req.Answer == q.Correct
	if err := s.progress.RecordAnswer(ctx, q, req.Answer, correct, canonical); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	snap, err := s.progress.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &model.StudyAnswerResult{
		QuestionID:       q.ID(),
		Correct:          correct,
		CorrectOption:    q.Correct,
		Explanation:      q.Explanation,
		Subject:          canonical,
		FreeLimitReached: !snap.IsPremium && snap.TotalQuestionsAnswered >= progress.FreeLimit,
		TotalAnswered:    snap.TotalQuestionsAnswered,
	}, nil
}
