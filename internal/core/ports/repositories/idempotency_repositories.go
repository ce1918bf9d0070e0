package repositories

import (
	"context"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

// IdempotencyKeyRepository defines storage operations for idempotency keys.
type IdempotencyKeyRepository interface {
	// FindKey retrieves a key record; apperrors.ErrNotFound if unknown.
	FindKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)

	// SaveKey persists a new key record; apperrors.ErrDuplicate if the key
	// string already exists.
	SaveKey(ctx context.Context, key domain.IdempotencyKey) error

	// TryInsertKey atomically inserts the key if absent. It returns true when
	// the insert won, false when the key already existed; the existing record
	// is returned in the latter case.
	TryInsertKey(ctx context.Context, key domain.IdempotencyKey) (bool, *domain.IdempotencyKey, error)

	// UpsertKeyUsed marks a key used, creating it in the used state if absent.
	UpsertKeyUsed(ctx context.Context, key domain.IdempotencyKey) error

	// DeleteExpiredKeys removes all keys with expiresAt < cutoff and returns
	// the number removed.
	DeleteExpiredKeys(ctx context.Context, cutoff time.Time) (int64, error)
}
