package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/models"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/persistence"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/utils/mapping"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/utils/pagination"
)

type PgxJournalRepository struct {
	db persistence.TxPool
}

// newPgxJournalRepository creates a new repository for journal entries.
func newPgxJournalRepository(db persistence.TxPool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{db: db}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, organization_id, entry_date, description, status, approved_by, posted_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.JournalID,
		&m.OrganizationID,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.ApprovedBy,
		&m.PostedAt,
		&m.VoidReason,
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

// SaveJournal persists a journal entry and all its lines in one transaction.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.JournalEntry) error {
	m := mapping.ToModelJournal(journal)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, query,
		m.JournalID,
		m.OrganizationID,
		m.EntryDate,
		m.Description,
		m.Status,
		m.ApprovedBy,
		m.PostedAt,
		m.VoidReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: journal %s already exists", apperrors.ErrDuplicate, m.JournalID)
		}
		return fmt.Errorf("failed to save journal %s: %w", m.JournalID, err)
	}

	lineQuery := `
		INSERT INTO journal_lines (line_id, journal_id, line_number, account_code, debit, credit, description, posted_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, line := range journal.Lines {
		lm := mapping.ToModelJournalLine(line)
		_, err := tx.Exec(ctx, lineQuery,
			lm.LineID,
			lm.JournalID,
			lm.LineNumber,
			lm.AccountCode,
			lm.Debit,
			lm.Credit,
			lm.Description,
			lm.PostedEntryID,
		)
		if err != nil {
			return fmt.Errorf("failed to save line %d of journal %s: %w", lm.LineNumber, m.JournalID, err)
		}
	}

	return tx.Commit(ctx)
}

// FindJournalByID retrieves a journal entry with its lines in line order.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1;`

	m, err := scanJournal(r.db.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}

	lines, err := r.findLines(ctx, journalID)
	if err != nil {
		return nil, err
	}

	journal := mapping.ToDomainJournal(*m)
	journal.Lines = lines
	return &journal, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, journal_id, line_number, account_code, debit, credit, description, posted_entry_id
		FROM journal_lines
		WHERE journal_id = $1
		ORDER BY line_number;
	`
	rows, err := r.db.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of journal %s: %w", journalID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var lm models.JournalLine
		err := rows.Scan(
			&lm.LineID,
			&lm.JournalID,
			&lm.LineNumber,
			&lm.AccountCode,
			&lm.Debit,
			&lm.Credit,
			&lm.Description,
			&lm.PostedEntryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		lines = append(lines, mapping.ToDomainJournalLine(lm))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal line rows: %w", err)
	}
	return lines, nil
}

// ListJournals retrieves a page of journal headers for an organization,
// newest first, keyed on (entry_date, created_at).
func (r *PgxJournalRepository) ListJournals(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := []interface{}{organizationID, limit + 1}
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE organization_id = $1`

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (entry_date, created_at) < ($3, $4)`
		args = append(args, entryDate, createdAt)
	}
	query += ` ORDER BY entry_date DESC, created_at DESC LIMIT $2;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	journals := []domain.JournalEntry{}
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, mapping.ToDomainJournal(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	var token *string
	if len(journals) > limit {
		journals = journals[:limit]
		last := journals[len(journals)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return journals, token, nil
}

// UpdateJournalStatus updates the workflow fields of a journal entry.
func (r *PgxJournalRepository) UpdateJournalStatus(ctx context.Context, journal domain.JournalEntry) error {
	m := mapping.ToModelJournal(journal)

	query := `
		UPDATE journal_entries
		SET status = $2, approved_by = $3, posted_at = $4, void_reason = $5, last_updated_at = $6, last_updated_by = $7
		WHERE journal_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		m.JournalID,
		m.Status,
		m.ApprovedBy,
		m.PostedAt,
		m.VoidReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update status of journal %s: %w", m.JournalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, m.JournalID)
	}
	return nil
}

// MarkLinePosted records the ledger entry acknowledged for a line.
func (r *PgxJournalRepository) MarkLinePosted(ctx context.Context, journalID string, lineID string, postedEntryID string) error {
	query := `
		UPDATE journal_lines
		SET posted_entry_id = $3
		WHERE journal_id = $1 AND line_id = $2;
	`
	tag, err := r.db.Exec(ctx, query, journalID, lineID, postedEntryID)
	if err != nil {
		return fmt.Errorf("failed to mark line %s of journal %s posted: %w", lineID, journalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: line %s of journal %s", apperrors.ErrNotFound, lineID, journalID)
	}
	return nil
}
