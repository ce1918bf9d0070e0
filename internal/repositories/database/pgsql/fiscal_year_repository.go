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
)

type PgxFiscalYearRepository struct {
	db persistence.TxPool
}

// newPgxFiscalYearRepository creates a new repository for fiscal years.
func newPgxFiscalYearRepository(db persistence.TxPool) portsrepo.FiscalYearRepositoryFacade {
	return &PgxFiscalYearRepository{db: db}
}

var _ portsrepo.FiscalYearRepositoryFacade = (*PgxFiscalYearRepository)(nil)

const fiscalYearColumns = `fiscal_year_id, organization_id, year, start_month, frequency, year_closed, retained_earnings_account, closed_by, closed_at, created_at, created_by, last_updated_at, last_updated_by`

func scanFiscalYear(row pgx.Row) (*models.FiscalYear, error) {
	var m models.FiscalYear
	err := row.Scan(
		&m.FiscalYearID,
		&m.OrganizationID,
		&m.Year,
		&m.StartMonth,
		&m.Frequency,
		&m.YearClosed,
		&m.RetainedEarningsAccount,
		&m.ClosedBy,
		&m.ClosedAt,
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

func (r *PgxFiscalYearRepository) findPeriods(ctx context.Context, fiscalYearID string) ([]models.FiscalPeriod, error) {
	query := `
		SELECT fiscal_year_id, period_number, start_date, end_date, status, reopen_reason, closed_by, closed_at
		FROM fiscal_periods
		WHERE fiscal_year_id = $1
		ORDER BY period_number;
	`
	rows, err := r.db.Query(ctx, query, fiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods of fiscal year %s: %w", fiscalYearID, err)
	}
	defer rows.Close()

	periods := []models.FiscalPeriod{}
	for rows.Next() {
		var m models.FiscalPeriod
		err := rows.Scan(
			&m.FiscalYearID,
			&m.PeriodNumber,
			&m.StartDate,
			&m.EndDate,
			&m.Status,
			&m.ReopenReason,
			&m.ClosedBy,
			&m.ClosedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period row: %w", err)
		}
		periods = append(periods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal period rows: %w", err)
	}
	return periods, nil
}

// FindFiscalYear retrieves a fiscal year with its periods.
func (r *PgxFiscalYearRepository) FindFiscalYear(ctx context.Context, organizationID string, year int) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE organization_id = $1 AND year = $2;`

	m, err := scanFiscalYear(r.db.QueryRow(ctx, query, organizationID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fiscal year %d: %w", year, err)
	}

	periods, err := r.findPeriods(ctx, m.FiscalYearID)
	if err != nil {
		return nil, err
	}

	fy := mapping.ToDomainFiscalYear(*m, periods)
	return &fy, nil
}

// ListFiscalYears retrieves all fiscal years of an organization, ascending.
func (r *PgxFiscalYearRepository) ListFiscalYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE organization_id = $1 ORDER BY year;`

	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal years for organization %s: %w", organizationID, err)
	}

	heads := []models.FiscalYear{}
	for rows.Next() {
		m, err := scanFiscalYear(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan fiscal year row: %w", err)
		}
		heads = append(heads, *m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating fiscal year rows: %w", err)
	}
	rows.Close()

	years := make([]domain.FiscalYear, 0, len(heads))
	for _, h := range heads {
		periods, err := r.findPeriods(ctx, h.FiscalYearID)
		if err != nil {
			return nil, err
		}
		years = append(years, mapping.ToDomainFiscalYear(h, periods))
	}
	return years, nil
}

const insertPeriodSQL = `
	INSERT INTO fiscal_periods (fiscal_year_id, period_number, start_date, end_date, status, reopen_reason, closed_by, closed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

// SaveFiscalYear persists a new fiscal year and its periods in one transaction.
func (r *PgxFiscalYearRepository) SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(fy)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO fiscal_years (` + fiscalYearColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, query,
		m.FiscalYearID,
		m.OrganizationID,
		m.Year,
		m.StartMonth,
		m.Frequency,
		m.YearClosed,
		m.RetainedEarningsAccount,
		m.ClosedBy,
		m.ClosedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: fiscal year %d already exists for organization %s", apperrors.ErrDuplicate, m.Year, m.OrganizationID)
		}
		return fmt.Errorf("failed to save fiscal year %d: %w", m.Year, err)
	}

	for _, p := range fy.Periods {
		pm := mapping.ToModelPeriod(fy.FiscalYearID, p)
		_, err := tx.Exec(ctx, insertPeriodSQL,
			pm.FiscalYearID,
			pm.PeriodNumber,
			pm.StartDate,
			pm.EndDate,
			pm.Status,
			pm.ReopenReason,
			pm.ClosedBy,
			pm.ClosedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save period %d of fiscal year %d: %w", pm.PeriodNumber, m.Year, err)
		}
	}

	return tx.Commit(ctx)
}

// UpdatePeriod updates one period row of a fiscal year.
func (r *PgxFiscalYearRepository) UpdatePeriod(ctx context.Context, fiscalYearID string, period domain.Period) error {
	m := mapping.ToModelPeriod(fiscalYearID, period)

	query := `
		UPDATE fiscal_periods
		SET status = $3, reopen_reason = $4, closed_by = $5, closed_at = $6
		WHERE fiscal_year_id = $1 AND period_number = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		m.FiscalYearID,
		m.PeriodNumber,
		m.Status,
		m.ReopenReason,
		m.ClosedBy,
		m.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update period %d of fiscal year %s: %w", m.PeriodNumber, fiscalYearID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %d of fiscal year %s", apperrors.ErrNotFound, m.PeriodNumber, fiscalYearID)
	}
	return nil
}

// UpdateFiscalYear updates the year-level fields and every period in one
// transaction. Year-end close depends on this being all-or-nothing.
func (r *PgxFiscalYearRepository) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(fy)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE fiscal_years
		SET year_closed = $2, retained_earnings_account = $3, closed_by = $4, closed_at = $5, last_updated_at = $6, last_updated_by = $7
		WHERE fiscal_year_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.FiscalYearID,
		m.YearClosed,
		m.RetainedEarningsAccount,
		m.ClosedBy,
		m.ClosedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update fiscal year %s: %w", m.FiscalYearID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %s", apperrors.ErrNotFound, m.FiscalYearID)
	}

	periodQuery := `
		UPDATE fiscal_periods
		SET status = $3, reopen_reason = $4, closed_by = $5, closed_at = $6
		WHERE fiscal_year_id = $1 AND period_number = $2;
	`
	for _, p := range fy.Periods {
		pm := mapping.ToModelPeriod(fy.FiscalYearID, p)
		_, err := tx.Exec(ctx, periodQuery,
			pm.FiscalYearID,
			pm.PeriodNumber,
			pm.Status,
			pm.ReopenReason,
			pm.ClosedBy,
			pm.ClosedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update period %d of fiscal year %s: %w", pm.PeriodNumber, m.FiscalYearID, err)
		}
	}

	return tx.Commit(ctx)
}
