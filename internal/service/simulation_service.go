package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/exam"
	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
	ws "github.com/gmprep/simulado-backend/internal/websocket"
)

// FreeSimulationLimit is the number of mock exams available without premium.
const FreeSimulationLimit = 1

var (
	ErrInsufficientQuestions = errors.New("not enough questions for a simulation")
	ErrFreeSimulationLimit   = errors.New("free plan includes a single simulation")
	ErrSimulationNotFound    = errors.New("simulation not found")
	ErrSimulationFinished    = errors.New("simulation already finished")
	ErrSimulationGrading     = errors.New("simulation is being graded")
	ErrInvalidQuestionIndex  = errors.New("question index out of range")
)

// ShortageError reports a composition below the minimum size.
type ShortageError struct {
	Composed int
	Target   int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("composed %d/%d questions, at least %d needed", e.Composed, e.Target, exam.MinimumSimulationSize)
}

func (e *ShortageError) Is(target error) bool {
	return target == ErrInsufficientQuestions
}

// SessionStore keeps running simulations.
type SessionStore interface {
	Save(ctx context.Context, s *model.SimulationSession) error
	Get(ctx context.Context, id string) (*model.SimulationSession, error)
	ActiveID(ctx context.Context, userID string) (string, error)
	SaveAnswer(ctx context.Context, s *model.SimulationSession, index int, answer string) error
	Answers(ctx context.Context, id string) (map[int]string, error)
	MarkSubmitted(ctx context.Context, s *model.SimulationSession) (bool, error)
	IsSubmitted(ctx context.Context, id string) (bool, error)
	ReleaseSubmitted(ctx context.Context, id string) error
	SaveResult(ctx context.Context, s *model.SimulationSession, out *model.SimulationOutcome) error
	Result(ctx context.Context, id string) (*model.SimulationOutcome, error)
	Publish(ctx context.Context, id string, payload []byte) error
}

// SimulationService runs timed mock exams: composition, autosave, automatic
// submission at the deadline and grading.
type SimulationService struct {
	questions QuestionSource
	sessions  SessionStore
	progress  progress.Store
	duration  time.Duration
	log       zerolog.Logger
	rng       corpus.Rand
	now       func() time.Time

	mu       sync.Mutex
	timers   map[string]*exam.Countdown
	recorded map[string]*model.SimulationOutcome
}

// NewSimulationService creates a new SimulationService.
func NewSimulationService(questions QuestionSource, sessions SessionStore, store progress.Store, duration time.Duration, log zerolog.Logger) *SimulationService {
	return &SimulationService{
		questions: questions,
		sessions:  sessions,
		progress:  store,
		duration:  duration,
		log:       log.With().Str("component", "simulation_service").Logger(),
		now:       time.Now,
		timers:    make(map[string]*exam.Countdown),
		recorded:  make(map[string]*model.SimulationOutcome),
	}
}

// Start composes a mock exam for the signed-in user, or resumes the one
// already running.
func (s *SimulationService) Start(ctx context.Context) (*model.SimulationPaper, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, progress.ErrAuthenticationRequired
	}

	if paper, err := s.resume(ctx, userID); err != nil || paper != nil {
		return paper, err
	}

	premium, err := s.progress.IsPremium(ctx)
	if err != nil {
		return nil, err
	}
	if !premium {
		sims, err := s.progress.Simulations(ctx)
		if err != nil {
			return nil, err
		}
		if len(sims) >= FreeSimulationLimit {
			return nil, ErrFreeSimulationLimit
		}
	}

	all, err := s.questions.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	comp := exam.Compose(all, s.rng)
	if len(comp.Questions) < exam.MinimumSimulationSize {
		return nil, &ShortageError{Composed: len(comp.Questions), Target: comp.Target}
	}

	now := s.now().UTC()
	sess := &model.SimulationSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Questions: comp.Questions,
		Buckets:   comp.Buckets,
		Target:    comp.Target,
		Shortfall: comp.Shortfall,
		StartedAt: now,
		Deadline:  now.Add(s.duration),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.arm(sess)

	ev := s.log.Info().Str("simulation_id", sess.ID).Str("user_id", userID).Str("composed", comp.Summary())
	if !comp.Complete() {
		ev = ev.Int("shortfall", comp.Shortfall)
	}
	ev.Msg("Simulation started")

	return paperOf(sess), nil
}

func (s *SimulationService) resume(ctx context.Context, userID string) (*model.SimulationPaper, error) {
	id, err := s.sessions.ActiveID(ctx, userID)
	if err != nil || id == "" {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	submitted, err := s.sessions.IsSubmitted(ctx, id)
	if err != nil || submitted {
		return nil, err
	}
	if !s.now().Before(sess.Deadline) {
		if _, err := s.finish(ctx, sess); err != nil && !errors.Is(err, ErrSimulationGrading) {
			return nil, err
		}
		return nil, nil
	}

	s.arm(sess)
	return paperOf(sess), nil
}

func paperOf(sess *model.SimulationSession) *model.SimulationPaper {
	questions := make([]model.QuestionForStudent, len(sess.Questions))
	for i, q := range sess.Questions {
		questions[i] = q.ForStudent()
	}
	paper := &model.SimulationPaper{
		ID:        sess.ID,
		Questions: questions,
		Buckets:   sess.Buckets,
		Composed:  len(sess.Questions),
		Target:    sess.Target,
		StartedAt: sess.StartedAt,
		Deadline:  sess.Deadline,
	}
	if sess.Shortfall > 0 {
		paper.Warning = fmt.Sprintf("Simulado montado com %d/%d questões.", paper.Composed, paper.Target)
	}
	return paper
}

// Session returns a running or finished session owned by the caller.
func (s *SimulationService) Session(ctx context.Context, id string) (*model.SimulationSession, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, progress.ErrAuthenticationRequired
	}
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrSimulationNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrSimulationNotFound
	}
	return sess, nil
}

// State returns saved answers and remaining time so a client can resume.
// A session past its deadline is submitted on the way.
func (s *SimulationService) State(ctx context.Context, id string) (*model.SimulationState, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	submitted, err := s.sessions.IsSubmitted(ctx, id)
	if err != nil {
		return nil, err
	}
	if !submitted && !s.now().Before(sess.Deadline) {
		if _, err := s.finish(ctx, sess); err != nil && !errors.Is(err, ErrSimulationGrading) {
			return nil, err
		}
		submitted = true
	}

	answers, err := s.sessions.Answers(ctx, id)
	if err != nil {
		return nil, err
	}

	remaining := 0.0
	if !submitted {
		remaining = max(sess.Deadline.Sub(s.now()).Seconds(), 0)
	}
	return &model.SimulationState{
		ID:            id,
		Answers:       answers,
		RemainingTime: remaining,
		Finished:      submitted,
	}, nil
}

// SaveAnswer autosaves the chosen option for one question of the paper.
func (s *SimulationService) SaveAnswer(ctx context.Context, id string, index int, answer string) error {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(sess.Questions) {
		return ErrInvalidQuestionIndex
	}

	submitted, err := s.sessions.IsSubmitted(ctx, id)
	if err != nil {
		return err
	}
	if submitted {
		return ErrSimulationFinished
	}
	if !s.now().Before(sess.Deadline) {
		if _, err := s.finish(ctx, sess); err != nil && !errors.Is(err, ErrSimulationGrading) {
			return err
		}
		return ErrSimulationFinished
	}

	return s.sessions.SaveAnswer(ctx, sess, index, answer)
}

// Submit finishes the simulation and grades it. Repeated calls return the
// same outcome.
func (s *SimulationService) Submit(ctx context.Context, id string) (*model.SimulationOutcome, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, sess)
}

// finish grades sess exactly once across processes; later callers get the
// stored outcome. A failed grading releases the claim so the next call
// retries.
func (s *SimulationService) finish(ctx context.Context, sess *model.SimulationSession) (*model.SimulationOutcome, error) {
	claimed, err := s.sessions.MarkSubmitted(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("claim submission: %w", err)
	}
	if !claimed {
		out, err := s.sessions.Result(ctx, sess.ID)
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSimulationGrading
		}
		return out, err
	}
	s.disarm(sess.ID)

	// Once claimed, grading must not stop halfway because the caller went away.
	ctx = context.WithoutCancel(ctx)
	out, err := s.grade(ctx, sess)
	if err != nil {
		s.release(ctx, sess)
		return nil, err
	}

	if payload, err := json.Marshal(ws.GradedResponse{Event: ws.EventGraded, Result: out}); err == nil {
		if err := s.sessions.Publish(ctx, sess.ID, payload); err != nil {
			s.log.Warn().Err(err).Str("simulation_id", sess.ID).Msg("Failed to publish graded event")
		}
	}

	s.log.Info().
		Str("simulation_id", sess.ID).
		Float64("score", out.Score).
		Bool("passed", out.Passed).
		Int("answered", out.AnsweredCount).
		Msg("Simulation graded")
	return out, nil
}

// grade scores sess, records it in the user's history and caches the
// outcome. An outcome already recorded by an earlier failed attempt is
// reused so history gets a single entry.
func (s *SimulationService) grade(ctx context.Context, sess *model.SimulationSession) (*model.SimulationOutcome, error) {
	s.mu.Lock()
	out := s.recorded[sess.ID]
	s.mu.Unlock()

	if out == nil {
		answers, err := s.sessions.Answers(ctx, sess.ID)
		if err != nil {
			return nil, fmt.Errorf("load answers: %w", err)
		}
		score := exam.Score(sess.Questions, answers)

		now := s.now().UTC()
		end := now
		if end.After(sess.Deadline) {
			end = sess.Deadline
		}
		out = &model.SimulationOutcome{
			SimulationResult: model.SimulationResult{
				Date:           now,
				Score:          score.Total,
				Passed:         score.Passed,
				TimeSpent:      max(int(end.Sub(sess.StartedAt).Seconds()), 0),
				ScoreBySubject: score.PerSubject,
			},
			SimulationID:   sess.ID,
			AnsweredCount:  score.Answered,
			TotalQuestions: len(sess.Questions),
		}

		userCtx := identity.WithUser(ctx, sess.UserID)
		if err := s.progress.RecordSimulation(userCtx, out.SimulationResult); err != nil {
			return nil, fmt.Errorf("record simulation: %w", err)
		}
		s.mu.Lock()
		s.recorded[sess.ID] = out
		s.mu.Unlock()
	}

	if err := s.sessions.SaveResult(ctx, sess, out); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	s.mu.Lock()
	delete(s.recorded, sess.ID)
	s.mu.Unlock()
	return out, nil
}

// release drops the submission claim of sess after a failed grading and
// re-arms its timer while the deadline is still ahead.
func (s *SimulationService) release(ctx context.Context, sess *model.SimulationSession) {
	if err := s.sessions.ReleaseSubmitted(ctx, sess.ID); err != nil {
		s.log.Error().Err(err).Str("simulation_id", sess.ID).Msg("Failed to release submission claim")
		return
	}
	if s.now().Before(sess.Deadline) {
		s.arm(sess)
	}
}

// arm starts the deadline timer of sess unless one is already running.
func (s *SimulationService) arm(sess *model.SimulationSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[sess.ID]; ok {
		return
	}
	s.timers[sess.ID] = exam.StartCountdown(sess.Deadline, func() { s.expire(sess) })
}

func (s *SimulationService) disarm(id string) {
	s.mu.Lock()
	c := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

func (s *SimulationService) expire(sess *model.SimulationSession) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctx = identity.WithUser(ctx, sess.UserID)
	if _, err := s.finish(ctx, sess); err != nil && !errors.Is(err, ErrSimulationGrading) {
		s.log.Error().Err(err).Str("simulation_id", sess.ID).Msg("Automatic submission failed")
		return
	}
	s.log.Info().Str("simulation_id", sess.ID).Msg("Simulation submitted at deadline")
}

// Shutdown stops every deadline timer. Sessions left running are submitted
// lazily on their next request.
func (s *SimulationService) Shutdown() {
	s.mu.Lock()
	timers := s.timers
	s.timers = make(map[string]*exam.Countdown)
	s.mu.Unlock()

	for _, c := range timers {
		c.Stop()
	}
}
