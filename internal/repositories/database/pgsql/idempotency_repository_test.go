package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

var idempotencyColumnList = []string{
	"key", "operation", "related_entity_id", "created_at", "expires_at",
	"used", "used_at", "successful", "result_hash",
}

func TestIdempotencyRepository_TryInsertKey(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxIdempotencyRepository{db: mock}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	key := domain.IdempotencyKey{
		Key:       "idem_order_payment_abc",
		Operation: "order_payment",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}

	t.Run("insert wins", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO idempotency_keys`).
			WithArgs(anyArgs(9)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		inserted, existing, err := repo.TryInsertKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Nil(t, existing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict returns existing record", func(t *testing.T) {
		usedAt := now.Add(time.Minute)
		mock.ExpectExec(`INSERT INTO idempotency_keys`).
			WithArgs(anyArgs(9)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		rows := pgxmock.NewRows(idempotencyColumnList).
			AddRow(key.Key, key.Operation, nil, key.CreatedAt, key.ExpiresAt,
				true, &usedAt, true, nil)
		mock.ExpectQuery(`SELECT .+ FROM idempotency_keys WHERE key = \$1`).
			WithArgs(key.Key).
			WillReturnRows(rows)

		inserted, existing, err := repo.TryInsertKey(ctx, key)
		require.NoError(t, err)
		assert.False(t, inserted)
		require.NotNil(t, existing)
		assert.True(t, existing.Used)
		assert.True(t, existing.Successful)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdempotencyRepository_DeleteExpiredKeys(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxIdempotencyRepository{db: mock}
	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM idempotency_keys WHERE expires_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := repo.DeleteExpiredKeys(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
