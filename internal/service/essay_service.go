package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gmprep/simulado-backend/internal/identity"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/progress"
)

// MinEssayLength is the minimum essay size, in characters.
const MinEssayLength = 500

var (
	ErrPremiumOnly   = errors.New("feature requires premium")
	ErrUnknownTheme  = errors.New("unknown essay theme")
	ErrEssayTooShort = errors.New("essay is too short")
)

// EssayThemes is the fixed catalogue of essay prompts.
var EssayThemes = []string{
	"O papel da Guarda Municipal na segurança pública moderna",
	"Cidadania e ética no serviço público",
	"A importância da tecnologia na prevenção da violência urbana",
	"Desafios da mobilidade e segurança nas grandes cidades",
	"O impacto da desinformação na atuação dos agentes públicos",
	"Respeito à diversidade e direitos humanos no serviço de segurança",
}

// EssayQueue hands accepted essays to the persisting worker.
type EssayQueue interface {
	Enqueue(ctx context.Context, e *model.Essay) error
}

// EssayHistory reads essays already persisted by the worker.
type EssayHistory interface {
	ListByUser(ctx context.Context, userID string) ([]model.Essay, error)
}

// EssayService accepts essays from premium users. Grading is deferred, so
// every essay is stored as PENDING.
type EssayService struct {
	queue    EssayQueue
	history  EssayHistory
	progress progress.Store
	now      func() time.Time
}

// NewEssayService creates a new EssayService.
func NewEssayService(queue EssayQueue, history EssayHistory, store progress.Store) *EssayService {
	return &EssayService{queue: queue, history: history, progress: store, now: time.Now}
}

// Themes returns the essay catalogue.
func (s *EssayService) Themes() []string {
	return slices.Clone(EssayThemes)
}

// Submit validates and queues an essay.
func (s *EssayService) Submit(ctx context.Context, req *model.SubmitEssayRequest) (*model.Essay, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, progress.ErrAuthenticationRequired
	}

	premium, err := s.progress.IsPremium(ctx)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, ErrPremiumOnly
	}

	if !slices.Contains(EssayThemes, req.Theme) {
		return nil, ErrUnknownTheme
	}
	body := strings.TrimSpace(req.Body)
	if utf8.RuneCountInString(body) < MinEssayLength {
		return nil, ErrEssayTooShort
	}

	essay := &model.Essay{
		ID:        uuid.NewString(),
		UserID:    userID,
		Theme:     req.Theme,
		Body:      body,
		Status:    model.EssayStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, essay); err != nil {
		return nil, fmt.Errorf("queue essay: %w", err)
	}
	return essay, nil
}

// Essays lists the caller's persisted essays, newest first. Essays still in
// the queue are not listed yet.
func (s *EssayService) Essays(ctx context.Context) ([]model.Essay, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return nil, progress.ErrAuthenticationRequired
	}
	essays, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list essays: %w", err)
	}
	if essays == nil {
		essays = []model.Essay{}
	}
	return essays, nil
}
