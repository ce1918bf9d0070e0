package services

import (
	"context"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
)

// IdempotencySvcFacade guards side-effecting operations against replays.
type IdempotencySvcFacade interface {
	// GenerateKey mints a unique idem_{operation}_{suffix} key with the given
	// TTL (zero means the configured default) and records it unused.
	GenerateKey(ctx context.Context, operation, relatedEntityID string, ttl time.Duration) (*domain.IdempotencyKey, error)

	// CheckKey reports a key's state without mutating it.
	CheckKey(ctx context.Context, key string) (*dto.KeyStatusResponse, error)

	// MarkKeyUsed records the operation outcome; upserts unknown keys directly
	// in the used state so callers may supply their own key strings.
	MarkKeyUsed(ctx context.Context, key string, successful bool, resultHash string) error

	// TryAcquire is the gate before executing a side-effecting operation:
	// true when the key is new (atomically reserved) or previously failed,
	// false when the key is known to have succeeded.
	TryAcquire(ctx context.Context, key, operation, relatedEntityID string) (bool, error)

	// CleanupExpiredKeys sweeps keys past their expiry and returns the count.
	CleanupExpiredKeys(ctx context.Context) (int64, error)
}
