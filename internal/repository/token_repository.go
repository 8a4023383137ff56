package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gmprep/simulado-backend/internal/config"
)

// TokenRepository tracks revoked JWT IDs until the tokens expire.
type TokenRepository struct {
	rdb *redis.Client
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(rdb *redis.Client) *TokenRepository {
	return &TokenRepository{rdb: rdb}
}

// Revoke marks jti as logged out for ttl.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether jti was logged out.
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	return n > 0, err
}
