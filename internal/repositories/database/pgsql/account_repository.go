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

const uniqueViolation = "23505"

type PgxAccountRepository struct {
	db persistence.TxPool
}

// newPgxAccountRepository creates a new repository for account and entry data.
func newPgxAccountRepository(db persistence.TxPool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{db: db}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, organization_id, account_code, name, account_type, currency_code, balance, is_active, is_system_account, current_year, current_month, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.OrganizationID,
		&m.AccountCode,
		&m.Name,
		&m.AccountType,
		&m.CurrencyCode,
		&m.Balance,
		&m.IsActive,
		&m.IsSystemAccount,
		&m.CurrentYear,
		&m.CurrentMonth,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const entryColumns = `entry_id, account_id, entry_type, amount, delta, balance_after, description, performed_by, status, reference_type, reference_id, reversal_entry_id, reversed_entry_id, created_at`

func scanEntry(row pgx.Row) (*models.AccountEntry, error) {
	var m models.AccountEntry
	err := row.Scan(
		&m.EntryID,
		&m.AccountID,
		&m.EntryType,
		&m.Amount,
		&m.Delta,
		&m.BalanceAfter,
		&m.Description,
		&m.PerformedBy,
		&m.Status,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.ReversalEntryID,
		&m.ReversedEntryID,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainAccountEntry(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

const insertEntrySQL = `
	INSERT INTO account_entries (` + entryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`

func insertEntry(ctx context.Context, q persistence.Querier, entry domain.LedgerEntry) error {
	m := mapping.ToModelAccountEntry(entry)
	_, err := q.Exec(ctx, insertEntrySQL,
		m.EntryID,
		m.AccountID,
		m.EntryType,
		m.Amount,
		m.Delta,
		m.BalanceAfter,
		m.Description,
		m.PerformedBy,
		m.Status,
		m.ReferenceType,
		m.ReferenceID,
		m.ReversalEntryID,
		m.ReversedEntryID,
		m.CreatedAt,
	)
	return err
}

// SaveAccount inserts a new account together with its optional opening entry
// in one transaction.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account, opening *domain.LedgerEntry) error {
	m := mapping.ToModelAccount(account)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		m.AccountID,
		m.OrganizationID,
		m.AccountCode,
		m.Name,
		m.AccountType,
		m.CurrencyCode,
		m.Balance,
		m.IsActive,
		m.IsSystemAccount,
		m.CurrentYear,
		m.CurrentMonth,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, m.AccountCode)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}

	if opening != nil {
		if err := insertEntry(ctx, tx, *opening); err != nil {
			return fmt.Errorf("failed to save opening entry for account %s: %w", m.AccountID, err)
		}
	}

	return tx.Commit(ctx)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// FindAccountByCode retrieves an account by its code within an organization.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, organizationID string, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE organization_id = $1 AND account_code = $2;`

	m, err := scanAccount(r.db.QueryRow(ctx, query, organizationID, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", accountCode, err)
	}

	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// ListAccounts retrieves accounts for an organization ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, organizationID string, activeOnly bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE organization_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY account_code;`

	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindEntryByID retrieves a single entry of an account.
func (r *PgxAccountRepository) FindEntryByID(ctx context.Context, accountID string, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE account_id = $1 AND entry_id = $2;`

	m, err := scanEntry(r.db.QueryRow(ctx, query, accountID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	entry := mapping.ToDomainAccountEntry(*m)
	return &entry, nil
}

// ListEntries retrieves the full entry history of an account, oldest first.
func (r *PgxAccountRepository) ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE account_id = $1 ORDER BY created_at, entry_id;`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	return collectEntries(rows)
}

// ListEntriesInRange retrieves entries with from <= created_at <= to.
func (r *PgxAccountRepository) ListEntriesInRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3 ORDER BY created_at, entry_id;`

	rows, err := r.db.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries in range for account %s: %w", accountID, err)
	}
	return collectEntries(rows)
}

// ListEntriesByReference retrieves entries carrying the given reference.
func (r *PgxAccountRepository) ListEntriesByReference(ctx context.Context, accountID string, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE account_id = $1 AND reference_type = $2 AND reference_id = $3 ORDER BY created_at, entry_id;`

	rows, err := r.db.Query(ctx, query, accountID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by reference for account %s: %w", accountID, err)
	}
	return collectEntries(rows)
}

// ListRecentEntries retrieves the most recent n entries, newest first.
func (r *PgxAccountRepository) ListRecentEntries(ctx context.Context, accountID string, n int) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM account_entries WHERE account_id = $1 ORDER BY created_at DESC, entry_id DESC LIMIT $2;`

	rows, err := r.db.Query(ctx, query, accountID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries for account %s: %w", accountID, err)
	}
	return collectEntries(rows)
}

// ListPeriodSummaries retrieves the closed-period snapshots of an account.
func (r *PgxAccountRepository) ListPeriodSummaries(ctx context.Context, accountID string) ([]domain.PeriodSummary, error) {
	query := `
		SELECT account_id, year, month, total_debits, total_credits, closing_balance, entry_count, closed_by, closed_at
		FROM account_period_summaries
		WHERE account_id = $1
		ORDER BY year, month;
	`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query period summaries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	summaries := []domain.PeriodSummary{}
	for rows.Next() {
		var m models.AccountPeriodSummary
		err := rows.Scan(
			&m.AccountID,
			&m.Year,
			&m.Month,
			&m.TotalDebits,
			&m.TotalCredits,
			&m.ClosingBalance,
			&m.EntryCount,
			&m.ClosedBy,
			&m.ClosedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period summary row: %w", err)
		}
		summaries = append(summaries, mapping.ToDomainPeriodSummary(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period summary rows: %w", err)
	}
	return summaries, nil
}

// AppendEntry appends an entry and updates the cached account balance in one
// transaction.
func (r *PgxAccountRepository) AppendEntry(ctx context.Context, account domain.Account, entry domain.LedgerEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to save entry %s: %w", entry.EntryID, err)
	}

	query := `
		UPDATE accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	tag, err := tx.Exec(ctx, query, account.AccountID, account.Balance, account.LastUpdatedAt, account.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}

	return tx.Commit(ctx)
}

// MarkEntryReversed links the original entry to its reversal and flips its
// status.
func (r *PgxAccountRepository) MarkEntryReversed(ctx context.Context, accountID string, entryID string, reversalEntryID string) error {
	query := `
		UPDATE account_entries
		SET status = $3, reversal_entry_id = $4
		WHERE account_id = $1 AND entry_id = $2;
	`
	tag, err := r.db.Exec(ctx, query, accountID, entryID, string(domain.EntryReversed), reversalEntryID)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s reversed: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}

// UpdateAccount updates the mutable account fields.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, balance = $3, is_active = $4, current_year = $5, current_month = $6, last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Balance,
		m.IsActive,
		m.CurrentYear,
		m.CurrentMonth,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

// SavePeriodSummary persists a period snapshot and advances the account's
// current period pointer in one transaction.
func (r *PgxAccountRepository) SavePeriodSummary(ctx context.Context, account domain.Account, summary domain.PeriodSummary) error {
	m := mapping.ToModelPeriodSummary(summary)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO account_period_summaries (account_id, year, month, total_debits, total_credits, closing_balance, entry_count, closed_by, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, query,
		m.AccountID,
		m.Year,
		m.Month,
		m.TotalDebits,
		m.TotalCredits,
		m.ClosingBalance,
		m.EntryCount,
		m.ClosedBy,
		m.ClosedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: period %d-%02d already closed for account %s", apperrors.ErrDuplicate, m.Year, m.Month, m.AccountID)
		}
		return fmt.Errorf("failed to save period summary for account %s: %w", m.AccountID, err)
	}

	update := `
		UPDATE accounts
		SET current_year = $2, current_month = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	_, err = tx.Exec(ctx, update,
		account.AccountID,
		account.CurrentYear,
		account.CurrentMonth,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to advance period pointer for account %s: %w", account.AccountID, err)
	}

	return tx.Commit(ctx)
}
