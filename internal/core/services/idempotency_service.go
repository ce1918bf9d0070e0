package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
)

// DefaultKeyTTL applies when a caller does not specify one.
const DefaultKeyTTL = 24 * time.Hour

var ErrOperationRequired = errors.New("operation name is required")

type idempotencyService struct {
	keyRepo    portsrepo.IdempotencyKeyRepository
	defaultTTL time.Duration
	now        func() time.Time
}

// NewIdempotencyService creates a new idempotency key service. A
// non-positive defaultTTL falls back to DefaultKeyTTL.
func NewIdempotencyService(keyRepo portsrepo.IdempotencyKeyRepository, defaultTTL time.Duration) portssvc.IdempotencySvcFacade {
	if defaultTTL <= 0 {
		defaultTTL = DefaultKeyTTL
	}
	return &idempotencyService{
		keyRepo:    keyRepo,
		defaultTTL: defaultTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.IdempotencySvcFacade = (*idempotencyService)(nil)

func (s *idempotencyService) GenerateKey(ctx context.Context, operation, relatedEntityID string, ttl time.Duration) (*domain.IdempotencyKey, error) {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrOperationRequired)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	key := domain.IdempotencyKey{
		Key:             fmt.Sprintf("idem_%s_%s", operation, uuid.NewString()),
		Operation:       operation,
		RelatedEntityID: relatedEntityID,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}
	if err := s.keyRepo.SaveKey(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to save idempotency key: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Idempotency key generated",
		slog.String("key", key.Key),
		slog.String("operation", operation))
	return &key, nil
}

func (s *idempotencyService) CheckKey(ctx context.Context, key string) (*dto.KeyStatusResponse, error) {
	record, err := s.keyRepo.FindKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &dto.KeyStatusResponse{Key: key}, nil
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &dto.KeyStatusResponse{
		Key:        record.Key,
		Exists:     true,
		Used:       record.Used,
		Successful: record.Successful,
		ResultHash: record.ResultHash,
		ExpiresAt:  &record.ExpiresAt,
	}, nil
}

// MarkKeyUsed upserts so that externally supplied key strings are recorded
// even when they were never generated here.
func (s *idempotencyService) MarkKeyUsed(ctx context.Context, key string, successful bool, resultHash string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", apperrors.ErrValidation)
	}

	now := s.now()
	record := domain.IdempotencyKey{
		Key:        key,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.defaultTTL),
		Used:       true,
		UsedAt:     &now,
		Successful: successful,
		ResultHash: resultHash,
	}
	if err := s.keyRepo.UpsertKeyUsed(ctx, record); err != nil {
		return fmt.Errorf("failed to mark idempotency key used: %w", err)
	}
	return nil
}

// TryAcquire reserves a new key atomically via the repository's conditional
// insert. A known key that already succeeded refuses the replay; a known key
// that failed (or was never completed and has expired) lets the caller retry.
func (s *idempotencyService) TryAcquire(ctx context.Context, key, operation, relatedEntityID string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("%w: key is required", apperrors.ErrValidation)
	}

	now := s.now()
	candidate := domain.IdempotencyKey{
		Key:             key,
		Operation:       operation,
		RelatedEntityID: relatedEntityID,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.defaultTTL),
	}
	inserted, existing, err := s.keyRepo.TryInsertKey(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if inserted {
		return true, nil
	}
	if existing.IsExpired(now) {
		// An expired reservation no longer protects anything.
		return true, nil
	}
	if existing.Used && existing.Successful {
		middleware.GetLoggerFromCtx(ctx).Info("Idempotency key replay refused",
			slog.String("key", key),
			slog.String("operation", operation))
		return false, nil
	}
	return true, nil
}

func (s *idempotencyService) CleanupExpiredKeys(ctx context.Context) (int64, error) {
	removed, err := s.keyRepo.DeleteExpiredKeys(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired idempotency keys: %w", err)
	}
	if removed > 0 {
		middleware.GetLoggerFromCtx(ctx).Info("Expired idempotency keys removed", slog.Int64("count", removed))
	}
	return removed, nil
}
