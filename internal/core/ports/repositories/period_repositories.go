package repositories

import (
	"context"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

// FiscalYearReader defines read operations for fiscal years.
type FiscalYearReader interface {
	// FindFiscalYear retrieves a fiscal year with its periods.
	FindFiscalYear(ctx context.Context, organizationID string, year int) (*domain.FiscalYear, error)

	// ListFiscalYears retrieves all fiscal years of an organization, ascending.
	ListFiscalYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error)
}

// FiscalYearWriter defines write operations for fiscal years.
type FiscalYearWriter interface {
	// SaveFiscalYear persists a new fiscal year and its periods in one transaction.
	SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error

	// UpdatePeriod updates one period row of a fiscal year.
	UpdatePeriod(ctx context.Context, fiscalYearID string, period domain.Period) error

	// UpdateFiscalYear updates the year-level fields and every period in one
	// transaction; used by year-end close to lock all periods atomically.
	UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error
}

// FiscalYearRepositoryFacade combines all fiscal-year repository interfaces.
type FiscalYearRepositoryFacade interface {
	FiscalYearReader
	FiscalYearWriter
}
