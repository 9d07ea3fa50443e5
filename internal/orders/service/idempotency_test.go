package service

import (
	"context"
	"testing"
	"time"

	"tradeportal_backend/platform/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testStore(t *testing.T) *RedisIdempotencyStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisIdempotencyStore(client)
}

func TestRedisIdempotencyStore_ReserveOnce(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "orders:idem:k1", time.Minute)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected first reserve to succeed")
	}

	ok, err = store.Reserve(ctx, "orders:idem:k1", time.Minute)
	if err != nil {
		t.Fatalf("second reserve failed: %v", err)
	}
	if ok {
		t.Fatalf("expected duplicate reserve to be refused")
	}

	ok, err = store.Reserve(ctx, "orders:idem:k2", time.Minute)
	if err != nil {
		t.Fatalf("reserve of other key failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected a different key to reserve fine")
	}
}

func TestReserveIdempotencyKey_DuplicateIsConflict(t *testing.T) {
	svc := &Service{idem: testStore(t)}
	ctx := context.Background()
	orderID, actorID := uuid.New(), uuid.New()

	if err := svc.reserveIdempotencyKey(ctx, orderID, actorID, "accept", "req-1"); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	err := svc.reserveIdempotencyKey(ctx, orderID, actorID, "accept", "req-1")
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on duplicate key, got %v", err)
	}

	// Same key, different action: a separate request.
	if err := svc.reserveIdempotencyKey(ctx, orderID, actorID, "reject", "req-1"); err != nil {
		t.Fatalf("claim for other action failed: %v", err)
	}
}

func TestReserveIdempotencyKey_OptionalGuard(t *testing.T) {
	ctx := context.Background()
	orderID, actorID := uuid.New(), uuid.New()

	// No key sent: nothing to claim.
	svc := &Service{idem: testStore(t)}
	for i := 0; i < 2; i++ {
		if err := svc.reserveIdempotencyKey(ctx, orderID, actorID, "accept", ""); err != nil {
			t.Fatalf("empty key should never fail: %v", err)
		}
	}

	// No store configured: the guard is off.
	bare := &Service{}
	if err := bare.reserveIdempotencyKey(ctx, orderID, actorID, "accept", "req-1"); err != nil {
		t.Fatalf("expected nil without a store, got %v", err)
	}
}
