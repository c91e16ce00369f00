package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andesgear/tienda-backend/pkg/redis"
)

// IdempotencyGuard deduplicates gateway return callbacks by token. It is
// advisory: the order's payment_status check inside the transaction is the
// authoritative duplicate defense.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark returns true when the token was already seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, errors.New("token is required")
	}
	key := g.store.IdempotencyKey(g.scope, token)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so a failed handler run can be retried.
func (g *IdempotencyGuard) Delete(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	key := g.store.IdempotencyKey(g.scope, token)
	return g.store.Del(ctx, key)
}
