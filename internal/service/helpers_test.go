package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
	"github.com/gmprep/simulado-backend/internal/subject"
)

// fakeQuestions serves a fixed corpus.
type fakeQuestions struct {
	all []model.Question
	err error
}

func (f *fakeQuestions) LoadAll(_ context.Context) ([]model.Question, error) {
	return f.all, f.err
}

func (f *fakeQuestions) Lookup(_ context.Context, id string) (model.Question, bool, error) {
	if f.err != nil {
		return model.Question{}, false, f.err
	}
	for _, q := range f.all {
		if q.ID() == id {
			return q, true, nil
		}
	}
	return model.Question{}, false, nil
}

// fakeSessions is an in-memory SessionStore.
type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]*model.SimulationSession
	active    map[string]string
	answers   map[string]map[int]string
	submitted map[string]bool
	results   map[string]*model.SimulationOutcome
	published [][]byte

	// saveErr fails the next SaveResult call, then clears itself.
	saveErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions:  make(map[string]*model.SimulationSession),
		active:    make(map[string]string),
		answers:   make(map[string]map[int]string),
		submitted: make(map[string]bool),
		results:   make(map[string]*model.SimulationOutcome),
	}
}

func (f *fakeSessions) Save(_ context.Context, s *model.SimulationSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	f.active[s.UserID] = s.ID
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*model.SimulationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) ActiveID(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[userID], nil
}

func (f *fakeSessions) SaveAnswer(_ context.Context, s *model.SimulationSession, index int, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answers[s.ID] == nil {
		f.answers[s.ID] = make(map[int]string)
	}
	f.answers[s.ID][index] = answer
	return nil
}

func (f *fakeSessions) Answers(_ context.Context, id string) (map[int]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]string, len(f.answers[id]))
	for k, v := range f.answers[id] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSessions) MarkSubmitted(_ context.Context, s *model.SimulationSession) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitted[s.ID] {
		return false, nil
	}
	f.submitted[s.ID] = true
	return true, nil
}

func (f *fakeSessions) IsSubmitted(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted[id], nil
}

func (f *fakeSessions) ReleaseSubmitted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.submitted, id)
	return nil
}

func (f *fakeSessions) SaveResult(_ context.Context, s *model.SimulationSession, out *model.SimulationOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr; err != nil {
		f.saveErr = nil
		return err
	}
	f.results[s.ID] = out
	if f.active[s.UserID] == s.ID {
		delete(f.active, s.UserID)
	}
	return nil
}

func (f *fakeSessions) Result(_ context.Context, id string) (*model.SimulationOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.results[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return out, nil
}

func (f *fakeSessions) Publish(_ context.Context, _ string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, payload)
	return nil
}

func (f *fakeSessions) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

// fakeQueue records enqueued essays.
type fakeQueue struct {
	essays []*model.Essay
	err    error
}

func (f *fakeQueue) Enqueue(_ context.Context, e *model.Essay) error {
	if f.err != nil {
		return f.err
	}
	f.essays = append(f.essays, e)
	return nil
}

// ListByUser treats every queued essay as persisted.
func (f *fakeQueue) ListByUser(_ context.Context, userID string) ([]model.Essay, error) {
	var out []model.Essay
	for i := len(f.essays) - 1; i >= 0; i-- {
		if f.essays[i].UserID == userID {
			out = append(out, *f.essays[i])
		}
	}
	return out, nil
}

// makeCorpus builds questions per canonical subject, all with answer key "a".
func makeCorpus(counts map[string]int) []model.Question {
	var out []model.Question
	for _, name := range subject.Canonical() {
		for i := 1; i <= counts[name]; i++ {
			out = append(out, model.Question{
				Origin:  &model.QuestionOrigin{City: name},
				Subject: name,
				Number:  i,
				Prompt:  fmt.Sprintf("%s %d", name, i),
				Options: map[string]string{"a": "certo", "b": "errado"},
				Correct: "a",
			})
		}
	}
	return out
}

// fullCorpus holds more than every quota asks for.
func fullCorpus() []model.Question {
	counts := make(map[string]int)
	for _, name := range subject.Canonical() {
		counts[name] = 12
	}
	return makeCorpus(counts)
}

// flakyStore fails the next RecordSimulation call, then delegates.
type flakyStore struct {
	progress.Store
	recordErr error
}

func (f *flakyStore) RecordSimulation(ctx context.Context, result model.SimulationResult) error {
	if err := f.recordErr; err != nil {
		f.recordErr = nil
		return err
	}
	return f.Store.RecordSimulation(ctx, result)
}

func userCtx(userID string) context.Context {
	return identity.WithUser(context.Background(), userID)
}

func newTestSimulation(t *testing.T, questions []model.Question, duration time.Duration) (*SimulationService, *fakeSessions, progress.Store) {
	t.Helper()
	sessions := newFakeSessions()
	store := progress.NewLocalStore(progress.NewMemoryKV())
	svc := NewSimulationService(&fakeQuestions{all: questions}, sessions, store, duration, zerolog.Nop())
	t.Cleanup(svc.Shutdown)
	return svc, sessions, store
}
