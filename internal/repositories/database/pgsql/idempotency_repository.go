package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/models"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/persistence"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/utils/mapping"
)

type PgxIdempotencyRepository struct {
	db persistence.TxPool
}

// newPgxIdempotencyRepository creates a new repository for idempotency keys.
func newPgxIdempotencyRepository(db persistence.TxPool) portsrepo.IdempotencyKeyRepository {
	return &PgxIdempotencyRepository{db: db}
}

var _ portsrepo.IdempotencyKeyRepository = (*PgxIdempotencyRepository)(nil)

const idempotencyColumns = `key, operation, related_entity_id, created_at, expires_at, used, used_at, successful, result_hash`

func scanIdempotencyKey(row pgx.Row) (*models.IdempotencyKey, error) {
	var m models.IdempotencyKey
	err := row.Scan(
		&m.Key,
		&m.Operation,
		&m.RelatedEntityID,
		&m.CreatedAt,
		&m.ExpiresAt,
		&m.Used,
		&m.UsedAt,
		&m.Successful,
		&m.ResultHash,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindKey retrieves a key record.
func (r *PgxIdempotencyRepository) FindKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	query := `SELECT ` + idempotencyColumns + ` FROM idempotency_keys WHERE key = $1;`

	m, err := scanIdempotencyKey(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency key %s: %w", key, err)
	}

	k := mapping.ToDomainIdempotencyKey(*m)
	return &k, nil
}

// SaveKey persists a new key record.
func (r *PgxIdempotencyRepository) SaveKey(ctx context.Context, key domain.IdempotencyKey) error {
	m := mapping.ToModelIdempotencyKey(key)

	query := `
		INSERT INTO idempotency_keys (` + idempotencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		m.Key,
		m.Operation,
		m.RelatedEntityID,
		m.CreatedAt,
		m.ExpiresAt,
		m.Used,
		m.UsedAt,
		m.Successful,
		m.ResultHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: idempotency key %s already exists", apperrors.ErrDuplicate, m.Key)
		}
		return fmt.Errorf("failed to save idempotency key %s: %w", m.Key, err)
	}
	return nil
}

// TryInsertKey atomically inserts the key if absent. ON CONFLICT DO NOTHING
// plus a follow-up read keeps this race-free across instances: exactly one
// caller wins the insert.
func (r *PgxIdempotencyRepository) TryInsertKey(ctx context.Context, key domain.IdempotencyKey) (bool, *domain.IdempotencyKey, error) {
	m := mapping.ToModelIdempotencyKey(key)

	query := `
		INSERT INTO idempotency_keys (` + idempotencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO NOTHING;
	`
	tag, err := r.db.Exec(ctx, query,
		m.Key,
		m.Operation,
		m.RelatedEntityID,
		m.CreatedAt,
		m.ExpiresAt,
		m.Used,
		m.UsedAt,
		m.Successful,
		m.ResultHash,
	)
	if err != nil {
		return false, nil, fmt.Errorf("failed to reserve idempotency key %s: %w", m.Key, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil, nil
	}

	existing, err := r.FindKey(ctx, key.Key)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

// UpsertKeyUsed marks a key used, creating it in the used state if absent.
func (r *PgxIdempotencyRepository) UpsertKeyUsed(ctx context.Context, key domain.IdempotencyKey) error {
	m := mapping.ToModelIdempotencyKey(key)

	query := `
		INSERT INTO idempotency_keys (` + idempotencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE
		SET used = EXCLUDED.used, used_at = EXCLUDED.used_at, successful = EXCLUDED.successful, result_hash = EXCLUDED.result_hash;
	`
	_, err := r.db.Exec(ctx, query,
		m.Key,
		m.Operation,
		m.RelatedEntityID,
		m.CreatedAt,
		m.ExpiresAt,
		m.Used,
		m.UsedAt,
		m.Successful,
		m.ResultHash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert idempotency key %s: %w", m.Key, err)
	}
	return nil
}

// DeleteExpiredKeys removes all keys with expires_at < cutoff.
func (r *PgxIdempotencyRepository) DeleteExpiredKeys(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM idempotency_keys WHERE expires_at < $1;`

	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
