package service

import (
	"context"
	"fmt"
	"time"

	"tradeportal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore reserves request keys so a retried action runs only once.
type IdempotencyStore interface {
	// Reserve claims the key for the TTL. It returns false when the key was
	// already claimed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisIdempotencyStore backs the idempotency guard with redis SETNX.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore creates a redis-backed idempotency store.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// Reserve claims key with SETNX semantics.
func (r *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// reserveIdempotencyKey claims the caller's Idempotency-Key when one was
// sent. A repeat within the window is rejected before any state is touched.
func (s *Service) reserveIdempotencyKey(ctx context.Context, orderID, actorID uuid.UUID, action, key string) error {
	if key == "" || s.idem == nil {
		return nil
	}
	full := fmt.Sprintf("orders:idem:%s:%s:%s:%s", orderID, actorID, action, key)
	ok, err := s.idem.Reserve(ctx, full, idempotencyTTL)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflict("duplicate request")
	}
	return nil
}
