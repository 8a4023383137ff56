package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/model"
)

var ErrSessionNotFound = errors.New("simulation session not found")

// sessionRetention is how long session keys outlive their deadline, so a
// late client can still fetch the graded result.
const sessionRetention = 24 * time.Hour

// SimulationSessionRepository keeps running simulations in Redis.
type SimulationSessionRepository struct {
	rdb *redis.Client
}

// NewSimulationSessionRepository creates a new SimulationSessionRepository.
func NewSimulationSessionRepository(rdb *redis.Client) *SimulationSessionRepository {
	return &SimulationSessionRepository{rdb: rdb}
}

func ttlFor(deadline time.Time) time.Duration {
	return time.Until(deadline) + sessionRetention
}

// Save stores a new session and marks it as the user's active simulation.
func (r *SimulationSessionRepository) Save(ctx context.Context, s *model.SimulationSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := ttlFor(s.Deadline)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.SimulationSessionKey(s.ID), data, ttl)
		pipe.Set(ctx, config.CacheKey.UserActiveSimulationKey(s.UserID), s.ID, time.Until(s.Deadline))
		return nil
	})
	return err
}

// Get loads a session by ID.
func (r *SimulationSessionRepository) Get(ctx context.Context, id string) (*model.SimulationSession, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.SimulationSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s := &model.SimulationSession{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// ActiveID returns the running simulation of a user, or "".
func (r *SimulationSessionRepository) ActiveID(ctx context.Context, userID string) (string, error) {
	id, err := r.rdb.Get(ctx, config.CacheKey.UserActiveSimulationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

// SaveAnswer records the chosen option for one question index.
func (r *SimulationSessionRepository) SaveAnswer(ctx context.Context, s *model.SimulationSession, index int, answer string) error {
	key := config.CacheKey.SimulationAnswersKey(s.ID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.Itoa(index), answer)
		pipe.Expire(ctx, key, ttlFor(s.Deadline))
		return nil
	})
	return err
}

// Answers returns question index -> chosen option.
func (r *SimulationSessionRepository) Answers(ctx context.Context, id string) (map[int]string, error) {
	raw, err := r.rdb.HGetAll(ctx, config.CacheKey.SimulationAnswersKey(id)).Result()
	if err != nil {
		return nil, err
	}
	answers := make(map[int]string, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		answers[idx] = v
	}
	return answers, nil
}

// MarkSubmitted claims the submission of a session. Only the first caller
// across all processes gets true.
func (r *SimulationSessionRepository) MarkSubmitted(ctx context.Context, s *model.SimulationSession) (bool, error) {
	return r.rdb.SetNX(ctx, config.CacheKey.SimulationSubmittedKey(s.ID), time.Now().Unix(), ttlFor(s.Deadline)).Result()
}

// IsSubmitted reports whether the session was already claimed for submission.
func (r *SimulationSessionRepository) IsSubmitted(ctx context.Context, id string) (bool, error) {
	n, err := r.rdb.Exists(ctx, config.CacheKey.SimulationSubmittedKey(id)).Result()
	return n > 0, err
}

// ReleaseSubmitted drops the submission claim so grading can be retried.
func (r *SimulationSessionRepository) ReleaseSubmitted(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, config.CacheKey.SimulationSubmittedKey(id)).Err()
}

// SaveResult caches the graded outcome and clears the user's active pointer.
func (r *SimulationSessionRepository) SaveResult(ctx context.Context, s *model.SimulationSession, out *model.SimulationOutcome) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	activeKey := config.CacheKey.UserActiveSimulationKey(s.UserID)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, config.CacheKey.SimulationResultKey(s.ID), data, sessionRetention)
		pipe.Del(ctx, activeKey)
		return nil
	})
	return err
}

// Result returns the cached outcome, or ErrSessionNotFound while grading is
// still pending.
func (r *SimulationSessionRepository) Result(ctx context.Context, id string) (*model.SimulationOutcome, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.SimulationResultKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	out := &model.SimulationOutcome{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

// Publish sends an event to subscribers of a simulation.
func (r *SimulationSessionRepository) Publish(ctx context.Context, id string, payload []byte) error {
	return r.rdb.Publish(ctx, config.CacheKey.SimulationEventsChannel(id), payload).Err()
}

// Subscribe listens to the events of a simulation. The caller closes the PubSub.
func (r *SimulationSessionRepository) Subscribe(ctx context.Context, id string) *redis.PubSub {
	return r.rdb.Subscribe(ctx, config.CacheKey.SimulationEventsChannel(id))
}

// Events adapts Subscribe to a channel of raw payloads. The channel closes
// when ctx ends or the returned release func is called.
func (r *SimulationSessionRepository) Events(ctx context.Context, id string) (<-chan []byte, func() error) {
	ps := r.Subscribe(ctx, id)
	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, ps.Close
}
