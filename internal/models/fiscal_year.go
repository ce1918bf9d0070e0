package models

import "time"

// FiscalYear represents a fiscal year row.
type FiscalYear struct {
	FiscalYearID            string     `db:"fiscal_year_id"`
	OrganizationID          string     `db:"organization_id"`
	Year                    int        `db:"year"`
	StartMonth              int        `db:"start_month"`
	Frequency               string     `db:"frequency"`
	YearClosed              bool       `db:"year_closed"`
	RetainedEarningsAccount *string    `db:"retained_earnings_account"`
	ClosedBy                *string    `db:"closed_by"`
	ClosedAt                *time.Time `db:"closed_at"`
	AuditFields
}

// FiscalPeriod represents one period row of a fiscal year.
type FiscalPeriod struct {
	FiscalYearID string     `db:"fiscal_year_id"`
	PeriodNumber int        `db:"period_number"`
	StartDate    time.Time  `db:"start_date"`
	EndDate      time.Time  `db:"end_date"`
	Status       string     `db:"status"`
	ReopenReason *string    `db:"reopen_reason"`
	ClosedBy     *string    `db:"closed_by"`
	ClosedAt     *time.Time `db:"closed_at"`
}
