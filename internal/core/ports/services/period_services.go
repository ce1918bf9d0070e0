package services

import (
	"context"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
)

// PeriodPostabilityChecker is the narrow view the journal workflow needs:
// whether a date currently accepts ledger postings.
type PeriodPostabilityChecker interface {
	// CanPostToDate returns true only if the owning period is Open and the
	// fiscal year is not closed.
	CanPostToDate(ctx context.Context, organizationID string, date time.Time) (bool, string, error)
}

// FiscalYearSvcFacade manages the per-fiscal-year period state machine.
type FiscalYearSvcFacade interface {
	PeriodPostabilityChecker

	// InitializeFiscalYear computes the period set for a year.
	InitializeFiscalYear(ctx context.Context, organizationID string, req dto.InitializeFiscalYearRequest, creatorUserID string) (*domain.FiscalYear, error)

	// OpenPeriod transitions NotStarted/Closed -> Open. Reopening a Closed
	// period this way obeys the same later-lock guard as ReopenPeriod.
	OpenPeriod(ctx context.Context, organizationID string, year, periodNumber int, performedBy string) (*domain.Period, error)

	// ClosePeriod transitions Open -> Closed; NotStarted -> Closed only with
	// force.
	ClosePeriod(ctx context.Context, organizationID string, year, periodNumber int, force bool, performedBy string) (*domain.Period, error)

	// LockPeriod is the sequential ratchet: requires the period Closed and
	// every earlier period Closed or Locked.
	LockPeriod(ctx context.Context, organizationID string, year, periodNumber int, performedBy string) (*domain.Period, error)

	// ReopenPeriod transitions Closed -> Open when no later period is Locked.
	ReopenPeriod(ctx context.Context, organizationID string, year, periodNumber int, reason string, performedBy string) (*domain.Period, error)

	// YearEndClose locks every period and marks the year closed; closing
	// entries against retained earnings are the calling orchestration's job.
	YearEndClose(ctx context.Context, organizationID string, year int, req dto.YearEndCloseRequest, performedBy string) (*domain.FiscalYear, error)

	GetFiscalYear(ctx context.Context, organizationID string, year int) (*domain.FiscalYear, error)
	ListFiscalYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error)
	GetPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.Period, error)
}
