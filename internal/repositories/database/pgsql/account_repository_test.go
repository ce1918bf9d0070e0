package pgsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

var accountColumnList = []string{
	"account_id", "organization_id", "account_code", "name", "account_type",
	"currency_code", "balance", "is_active", "is_system_account",
	"current_year", "current_month", "created_at", "created_by",
	"last_updated_at", "last_updated_by",
}

// anyArgs returns n pgxmock.AnyArg() matchers; pgxmock requires the
// expected argument count to match even when values are unconstrained.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func testAccount() domain.Account {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return domain.Account{
		AccountID:      "acc-1",
		OrganizationID: "org-1",
		AccountCode:    "4000",
		Name:           "Food Sales",
		AccountType:    domain.Revenue,
		CurrencyCode:   "USD",
		Balance:        decimal.NewFromInt(150),
		IsActive:       true,
		CurrentYear:    2026,
		CurrentMonth:   2,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "user-1",
			LastUpdatedAt: now,
			LastUpdatedBy: "user-1",
		},
	}
}

func TestAccountRepository_SaveAccount(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxAccountRepository{db: mock}
	acc := testAccount()

	t.Run("success without opening entry", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(acc.AccountID, acc.OrganizationID, acc.AccountCode, acc.Name, string(acc.AccountType),
				acc.CurrencyCode, acc.Balance, acc.IsActive, acc.IsSystemAccount,
				acc.CurrentYear, acc.CurrentMonth, acc.CreatedAt, acc.CreatedBy,
				acc.LastUpdatedAt, acc.LastUpdatedBy).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		err := repo.SaveAccount(ctx, acc, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with opening entry", func(t *testing.T) {
		opening := domain.LedgerEntry{
			EntryID:      "entry-1",
			AccountID:    acc.AccountID,
			EntryType:    domain.EntryOpening,
			Amount:       decimal.NewFromInt(150),
			Delta:        decimal.NewFromInt(150),
			BalanceAfter: decimal.NewFromInt(150),
			PerformedBy:  "user-1",
			Status:       domain.EntryPosted,
			CreatedAt:    acc.CreatedAt,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(anyArgs(15)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO account_entries`).
			WithArgs(anyArgs(14)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		err := repo.SaveAccount(ctx, acc, &opening)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO accounts`).WithArgs(anyArgs(15)...).WillReturnError(dbErr)
		mock.ExpectRollback()

		err := repo.SaveAccount(ctx, acc, nil)
		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_FindAccountByCode(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxAccountRepository{db: mock}
	acc := testAccount()

	t.Run("found", func(t *testing.T) {
		rows := pgxmock.NewRows(accountColumnList).
			AddRow(acc.AccountID, acc.OrganizationID, acc.AccountCode, acc.Name, string(acc.AccountType),
				acc.CurrencyCode, acc.Balance, acc.IsActive, acc.IsSystemAccount,
				acc.CurrentYear, acc.CurrentMonth, acc.CreatedAt, acc.CreatedBy,
				acc.LastUpdatedAt, acc.LastUpdatedBy)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE organization_id = \$1 AND account_code = \$2`).
			WithArgs(acc.OrganizationID, acc.AccountCode).
			WillReturnRows(rows)

		found, err := repo.FindAccountByCode(ctx, acc.OrganizationID, acc.AccountCode)
		require.NoError(t, err)
		assert.Equal(t, acc.AccountID, found.AccountID)
		assert.Equal(t, domain.Revenue, found.AccountType)
		assert.True(t, found.Balance.Equal(decimal.NewFromInt(150)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE organization_id = \$1 AND account_code = \$2`).
			WithArgs(acc.OrganizationID, "9999").
			WillReturnRows(pgxmock.NewRows(accountColumnList))

		_, err := repo.FindAccountByCode(ctx, acc.OrganizationID, "9999")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_AppendEntry(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgxAccountRepository{db: mock}
	acc := testAccount()
	entry := domain.LedgerEntry{
		EntryID:      "entry-2",
		AccountID:    acc.AccountID,
		EntryType:    domain.EntryCredit,
		Amount:       decimal.NewFromInt(50),
		Delta:        decimal.NewFromInt(50),
		BalanceAfter: decimal.NewFromInt(200),
		PerformedBy:  "user-1",
		Status:       domain.EntryPosted,
		CreatedAt:    acc.CreatedAt,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO account_entries`).
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(acc.AccountID, acc.Balance, acc.LastUpdatedAt, acc.LastUpdatedBy).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	err = repo.AppendEntry(ctx, acc, entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
