package repository

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/model"
)

// EssayQueueRepository buffers submitted essays in a Redis list until the
// essay worker persists them.
type EssayQueueRepository struct {
	rdb *redis.Client
}

// NewEssayQueueRepository creates a new EssayQueueRepository.
func NewEssayQueueRepository(rdb *redis.Client) *EssayQueueRepository {
	return &EssayQueueRepository{rdb: rdb}
}

// Enqueue appends an essay to the persist queue.
func (r *EssayQueueRepository) Enqueue(ctx context.Context, e *model.Essay) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rdb.RPush(ctx, config.WorkerKey.PersistEssaysQueue, data).Err()
}

// Pop blocks up to timeout for the next raw queue item. It returns
// redis.Nil when the queue stayed empty.
func (r *EssayQueueRepository) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := r.rdb.BLPop(ctx, timeout, config.WorkerKey.PersistEssaysQueue).Result()
	if err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", redis.Nil
	}
	return result[1], nil
}

// PopNow takes the next item without blocking.
func (r *EssayQueueRepository) PopNow(ctx context.Context) (string, error) {
	return r.rdb.LPop(ctx, config.WorkerKey.PersistEssaysQueue).Result()
}

// Requeue puts a raw item back at the tail of the queue.
func (r *EssayQueueRepository) Requeue(ctx context.Context, raw string) error {
	return r.rdb.RPush(ctx, config.WorkerKey.PersistEssaysQueue, raw).Err()
}
