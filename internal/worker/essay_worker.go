package worker

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/model"
)

const retryDelay = 5 * time.Second

// EssayQueue is the Redis list the worker consumes.
type EssayQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	PopNow(ctx context.Context) (string, error)
	Requeue(ctx context.Context, raw string) error
}

// EssayStore persists essays.
type EssayStore interface {
	Insert(ctx context.Context, e *model.Essay) error
}

// EssayWorker consumes persist_essays_queue and inserts essays into SQL.
type EssayWorker struct {
	queue EssayQueue
	store EssayStore
	log   zerolog.Logger
	retry time.Duration
}

// NewEssayWorker creates a new EssayWorker.
func NewEssayWorker(queue EssayQueue, store EssayStore, log zerolog.Logger) *EssayWorker {
	return &EssayWorker{
		queue: queue,
		store: store,
		log:   log.With().Str("component", "essay_worker").Logger(),
		retry: retryDelay,
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *EssayWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *EssayWorker) processNext(ctx context.Context) {
	raw, err := w.queue.Pop(ctx, time.Second)
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			// Back off so a lost Redis connection does not spin.
			sleepCtx(ctx, time.Second)
		}
		return
	}

	essay, err := decodeEssay(raw)
	if err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping item")
		return
	}

	if err := w.store.Insert(ctx, essay); err != nil {
		w.log.Error().Err(err).
			Str("essay_id", essay.ID).
			Str("user_id", essay.UserID).
			Msg("Persist error, retrying in 5s")
		if err := w.queue.Requeue(context.Background(), raw); err != nil {
			w.log.Error().Err(err).Str("essay_id", essay.ID).Msg("Requeue failed")
		}
		sleepCtx(ctx, w.retry)
		return
	}

	w.log.Debug().Str("essay_id", essay.ID).Msg("Essay persisted")
}

// drain persists what is left in the queue before shutdown.
func (w *EssayWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.queue.PopNow(ctx)
		if err != nil {
			break
		}

		essay, err := decodeEssay(raw)
		if err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.store.Insert(ctx, essay); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			_ = w.queue.Requeue(ctx, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func decodeEssay(raw string) (*model.Essay, error) {
	var e model.Essay
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	if e.ID == "" || e.UserID == "" {
		return nil, errors.New("essay without id or user")
	}
	return &e, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
