package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/worker"
)

var (
	ErrPeriodNeverOpened  = errors.New("period was never opened")
	ErrPeriodAlreadyOpen  = errors.New("period is already open")
	ErrPeriodClosed       = errors.New("period is already closed")
	ErrPeriodLocked       = errors.New("period is locked")
	ErrPeriodMustBeClosed = errors.New("period must be closed first")
	ErrPriorPeriodOpen    = errors.New("prior period still closing")
	ErrLaterPeriodLocked  = errors.New("later period is locked")
	ErrYearAlreadyClosed  = errors.New("fiscal year is already closed")
	ErrNoPeriodForDate    = errors.New("no fiscal period covers the date")
)

// periodService is the per-(organization, fiscal year) period state machine.
// States per period: NotStarted -> Open -> Closed -> Locked, with
// Closed -> Open as the only backward transition.
type periodService struct {
	fiscalYearRepo portsrepo.FiscalYearRepositoryFacade
	dispatcher     *worker.Dispatcher
}

// NewPeriodService creates a new fiscal-period lifecycle service.
func NewPeriodService(fiscalYearRepo portsrepo.FiscalYearRepositoryFacade, dispatcher *worker.Dispatcher) portssvc.FiscalYearSvcFacade {
	return &periodService{
		fiscalYearRepo: fiscalYearRepo,
		dispatcher:     dispatcher,
	}
}

var _ portssvc.FiscalYearSvcFacade = (*periodService)(nil)

func fiscalYearKey(organizationID string, year int) string {
	return "fiscalyear:" + organizationID + ":" + strconv.Itoa(year)
}

// InitializeFiscalYear computes the period set spanning twelve months from
// startMonth of the year: 12, 4 or 1 periods for Monthly/Quarterly/Yearly.
func (s *periodService) InitializeFiscalYear(ctx context.Context, organizationID string, req dto.InitializeFiscalYearRequest, creatorUserID string) (*domain.FiscalYear, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	count := req.Frequency.PeriodCount()
	if count == 0 {
		return nil, fmt.Errorf("%w: unknown period frequency '%s'", apperrors.ErrValidation, req.Frequency)
	}
	if req.StartMonth < 1 || req.StartMonth > 12 {
		return nil, fmt.Errorf("%w: start month must be 1..12, got %d", apperrors.ErrValidation, req.StartMonth)
	}

	var created *domain.FiscalYear
	err := s.dispatcher.Do(ctx, fiscalYearKey(organizationID, req.Year), func() error {
		existing, err := s.fiscalYearRepo.FindFiscalYear(ctx, organizationID, req.Year)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check for existing fiscal year: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: fiscal year %d already initialized for organization %s", apperrors.ErrDuplicate, req.Year, organizationID)
		}

		now := time.Now().UTC()
		monthsPerPeriod := 12 / count
		yearStart := time.Date(req.Year, time.Month(req.StartMonth), 1, 0, 0, 0, 0, time.UTC)

		periods := make([]domain.Period, count)
		for i := 0; i < count; i++ {
			start := yearStart.AddDate(0, i*monthsPerPeriod, 0)
			end := yearStart.AddDate(0, (i+1)*monthsPerPeriod, 0).Add(-time.Nanosecond)
			periods[i] = domain.Period{
				PeriodNumber: i + 1,
				StartDate:    start,
				EndDate:      end,
				Status:       domain.PeriodNotStarted,
			}
		}

		fy := domain.FiscalYear{
			FiscalYearID:   uuid.NewString(),
			OrganizationID: organizationID,
			Year:           req.Year,
			StartMonth:     req.StartMonth,
			Frequency:      req.Frequency,
			Periods:        periods,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}

		if err := s.fiscalYearRepo.SaveFiscalYear(ctx, fy); err != nil {
			logger.Error("Failed to save fiscal year", slog.Int("year", req.Year), slog.String("error", err.Error()))
			return fmt.Errorf("failed to save fiscal year: %w", err)
		}
		created = &fy
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Fiscal year initialized",
		slog.String("organization_id", organizationID),
		slog.Int("year", req.Year),
		slog.String("frequency", string(req.Frequency)),
		slog.Int("periods", count))
	return created, nil
}

func (s *periodService) loadFiscalYear(ctx context.Context, organizationID string, year int) (*domain.FiscalYear, error) {
	fy, err := s.fiscalYearRepo.FindFiscalYear(ctx, organizationID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to find fiscal year %d: %w", year, err)
	}
	return fy, nil
}

func findPeriod(fy *domain.FiscalYear, periodNumber int) (*domain.Period, error) {
	if periodNumber < 1 || periodNumber > len(fy.Periods) {
		return nil, fmt.Errorf("%w: period %d of fiscal year %d", apperrors.ErrNotFound, periodNumber, fy.Year)
	}
	return &fy.Periods[periodNumber-1], nil
}

func laterPeriodLocked(fy *domain.FiscalYear, periodNumber int) bool {
	for _, p := range fy.Periods {
		if p.PeriodNumber > periodNumber && p.Status == domain.PeriodLocked {
			return true
		}
	}
	return false
}

// OpenPeriod transitions NotStarted/Closed -> Open. A Closed period is a
// reopen in disguise, so it obeys the same later-lock guard as ReopenPeriod.
func (s *periodService) OpenPeriod(ctx context.Context, organizationID string, year, periodNumber int, performedBy string) (*domain.Period, error) {
	return s.mutatePeriod(ctx, organizationID, year, periodNumber, performedBy, func(fy *domain.FiscalYear, p *domain.Period) error {
		switch p.Status {
		case domain.PeriodOpen:
			return fmt.Errorf("%w: %s (period %d)", apperrors.ErrInvalidState, ErrPeriodAlreadyOpen, periodNumber)
		case domain.PeriodLocked:
			return fmt.Errorf("%w: %s (period %d)", apperrors.ErrInvalidState, ErrPeriodLocked, periodNumber)
		case domain.PeriodClosed:
			if laterPeriodLocked(fy, periodNumber) {
				return fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrLaterPeriodLocked)
			}
		}
		p.Status = domain.PeriodOpen
		return nil
	})
}

// ClosePeriod transitions Open -> Closed; NotStarted -> Closed only when
// forced.
func (s *periodService) ClosePeriod(ctx context.Context, organizationID string, year, periodNumber int, force bool, performedBy string) (*domain.Period, error) {
	return s.mutatePeriod(ctx, organizationID, year, periodNumber, performedBy, func(fy *domain.FiscalYear, p *domain.Period) error {
		switch p.Status {
		case domain.PeriodClosed:
			return fmt.Errorf("%w: %s (period %d)", apperrors.ErrInvalidState, ErrPeriodClosed, periodNumber)
		case domain.PeriodLocked:
			return fmt.Errorf("%w: %s (period %d)", apperrors.ErrInvalidState, ErrPeriodLocked, periodNumber)
		case domain.PeriodNotStarted:
			if !force {
				return fmt.Errorf("%w: %s (period %d)", apperrors.ErrInvalidState, ErrPeriodNeverOpened, periodNumber)
			}
		}
		now := time.Now().UTC()
		p.Status = domain.PeriodClosed
		p.ClosedBy = performedBy
		p.ClosedAt = &now
		return nil
	})
}

// LockPeriod is a sequential ratchet: it requires the period Closed and
// every earlier period Closed or Locked, so no locked gaps can form.
func (s *periodService) LockPeriod(ctx context.Context, organizationID string, year, periodNumber int, performedBy string) (*domain.Period, error) {
	return s.mutatePeriod(ctx, organizationID, year, periodNumber, performedBy, func(fy *domain.FiscalYear, p *domain.Period) error {
		if p.Status != domain.PeriodClosed {
			return fmt.Errorf("%w: %s (period %d is %s)", apperrors.ErrInvalidState, ErrPeriodMustBeClosed, periodNumber, p.Status)
		}
		for _, prior := range fy.Periods {
			if prior.PeriodNumber >= periodNumber {
				break
			}
			if prior.Status != domain.PeriodClosed && prior.Status != domain.PeriodLocked {
				return fmt.Errorf("%w: %s (period %d is %s)", apperrors.ErrInvalidState, ErrPriorPeriodOpen, prior.PeriodNumber, prior.Status)
			}
		}
		p.Status = domain.PeriodLocked
		return nil
	})
}

// ReopenPeriod is the only backward transition. Locked periods can never be
// reopened directly, and no later period may be Locked.
func (s *periodService) ReopenPeriod(ctx context.Context, organizationID string, year, periodNumber int, reason string, performedBy string) (*domain.Period, error) {
	return s.mutatePeriod(ctx, organizationID, year, periodNumber, performedBy, func(fy *domain.FiscalYear, p *domain.Period) error {
		if p.Status == domain.PeriodLocked {
			return fmt.Errorf("%w: %s (a locked period cannot be reopened)", apperrors.ErrInvalidState, ErrPeriodLocked)
		}
		if p.Status != domain.PeriodClosed {
			return fmt.Errorf("%w: only a closed period can be reopened (period %d is %s)", apperrors.ErrInvalidState, periodNumber, p.Status)
		}
		if laterPeriodLocked(fy, periodNumber) {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrLaterPeriodLocked)
		}
		p.Status = domain.PeriodOpen
		p.ReopenReason = reason
		return nil
	})
}

func (s *periodService) mutatePeriod(ctx context.Context, organizationID string, year, periodNumber int, performedBy string, mutate func(*domain.FiscalYear, *domain.Period) error) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var result *domain.Period
	err := s.dispatcher.Do(ctx, fiscalYearKey(organizationID, year), func() error {
		fy, err := s.loadFiscalYear(ctx, organizationID, year)
		if err != nil {
			return err
		}
		if fy.YearClosed {
			return fmt.Errorf("%w: %s (%d)", apperrors.ErrInvalidState, ErrYearAlreadyClosed, year)
		}
		period, err := findPeriod(fy, periodNumber)
		if err != nil {
			return err
		}
		if err := mutate(fy, period); err != nil {
			return err
		}
		if err := s.fiscalYearRepo.UpdatePeriod(ctx, fy.FiscalYearID, *period); err != nil {
			logger.Error("Failed to update period",
				slog.Int("year", year),
				slog.Int("period", periodNumber),
				slog.String("error", err.Error()))
			return fmt.Errorf("failed to update period: %w", err)
		}
		copied := *period
		result = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Period transitioned",
		slog.String("organization_id", organizationID),
		slog.Int("year", year),
		slog.Int("period", periodNumber),
		slog.String("status", string(result.Status)))
	return result, nil
}

// YearEndClose requires every period Closed (Locked is acceptable: it is
// Closed and ratcheted further), locks them all atomically relative to this
// entity, and sets the year-closed flag. The closing entries against the
// retained-earnings account are the calling orchestration's responsibility.
func (s *periodService) YearEndClose(ctx context.Context, organizationID string, year int, req dto.YearEndCloseRequest, performedBy string) (*domain.FiscalYear, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var closed *domain.FiscalYear
	err := s.dispatcher.Do(ctx, fiscalYearKey(organizationID, year), func() error {
		fy, err := s.loadFiscalYear(ctx, organizationID, year)
		if err != nil {
			return err
		}
		if fy.YearClosed {
			return fmt.Errorf("%w: %s (%d)", apperrors.ErrInvalidState, ErrYearAlreadyClosed, year)
		}

		var unclosed []string
		for _, p := range fy.Periods {
			if p.Status != domain.PeriodClosed && p.Status != domain.PeriodLocked {
				unclosed = append(unclosed, fmt.Sprintf("period %d (%s)", p.PeriodNumber, p.Status))
			}
		}
		if len(unclosed) > 0 {
			return fmt.Errorf("%w: cannot close fiscal year %d, unclosed periods: %s",
				apperrors.ErrInvalidState, year, strings.Join(unclosed, ", "))
		}

		now := time.Now().UTC()
		for i := range fy.Periods {
			fy.Periods[i].Status = domain.PeriodLocked
		}
		fy.YearClosed = true
		fy.RetainedEarningsAccount = req.RetainedEarningsAccountCode
		fy.ClosedBy = performedBy
		fy.ClosedAt = &now
		fy.LastUpdatedAt = now
		fy.LastUpdatedBy = performedBy

		if err := s.fiscalYearRepo.UpdateFiscalYear(ctx, *fy); err != nil {
			logger.Error("Failed to close fiscal year", slog.Int("year", year), slog.String("error", err.Error()))
			return fmt.Errorf("failed to close fiscal year: %w", err)
		}
		closed = fy
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Fiscal year closed",
		slog.String("organization_id", organizationID),
		slog.Int("year", year),
		slog.String("retained_earnings_account", req.RetainedEarningsAccountCode))
	return closed, nil
}

// CanPostToDate returns true only if the owning period is Open and the year
// is not closed. Once a year is closed no date within it is postable,
// permanently.
func (s *periodService) CanPostToDate(ctx context.Context, organizationID string, date time.Time) (bool, string, error) {
	fy, period, err := s.findPeriodForDate(ctx, organizationID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, ErrNoPeriodForDate.Error(), nil
		}
		return false, "", err
	}
	if fy.YearClosed {
		return false, fmt.Sprintf("fiscal year %d is closed", fy.Year), nil
	}
	if period.Status != domain.PeriodOpen {
		return false, fmt.Sprintf("period %d is %s", period.PeriodNumber, period.Status), nil
	}
	return true, "", nil
}

// GetPeriodForDate returns the period whose [start, end] contains the date.
func (s *periodService) GetPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.Period, error) {
	_, period, err := s.findPeriodForDate(ctx, organizationID, date)
	if err != nil {
		return nil, err
	}
	return period, nil
}

func (s *periodService) findPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalYear, *domain.Period, error) {
	years, err := s.fiscalYearRepo.ListFiscalYears(ctx, organizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list fiscal years: %w", err)
	}
	for i := range years {
		if period := years[i].PeriodForDate(date); period != nil {
			return &years[i], period, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s for %s", apperrors.ErrNotFound, ErrNoPeriodForDate, date.Format("2006-01-02"))
}

func (s *periodService) GetFiscalYear(ctx context.Context, organizationID string, year int) (*domain.FiscalYear, error) {
	return s.loadFiscalYear(ctx, organizationID, year)
}

func (s *periodService) ListFiscalYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error) {
	return s.fiscalYearRepo.ListFiscalYears(ctx, organizationID)
}
