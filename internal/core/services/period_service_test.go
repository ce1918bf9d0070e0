package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/worker"
)

// MockFiscalYearRepository is a mock implementation of portsrepo.FiscalYearRepositoryFacade.
type MockFiscalYearRepository struct {
	mock.Mock
}

func (m *MockFiscalYearRepository) FindFiscalYear(ctx context.Context, organizationID string, year int) (*domain.FiscalYear, error) {
	args := m.Called(ctx, organizationID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearRepository) ListFiscalYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearRepository) SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	args := m.Called(ctx, fy)
	return args.Error(0)
}

func (m *MockFiscalYearRepository) UpdatePeriod(ctx context.Context, fiscalYearID string, period domain.Period) error {
	args := m.Called(ctx, fiscalYearID, period)
	return args.Error(0)
}

func (m *MockFiscalYearRepository) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	args := m.Called(ctx, fy)
	return args.Error(0)
}

var _ portsrepo.FiscalYearRepositoryFacade = (*MockFiscalYearRepository)(nil)

type PeriodServiceTestSuite struct {
	suite.Suite
	mockFiscalYearRepo *MockFiscalYearRepository
	dispatcher         *worker.Dispatcher
	service            portssvc.FiscalYearSvcFacade
	ctx                context.Context

	orgID string
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.mockFiscalYearRepo = new(MockFiscalYearRepository)

	dispatcher, err := worker.NewDispatcher(4, slog.Default())
	suite.Require().NoError(err)
	suite.dispatcher = dispatcher

	suite.service = services.NewPeriodService(suite.mockFiscalYearRepo, dispatcher)
	suite.ctx = context.Background()
	suite.orgID = uuid.NewString()
}

func (suite *PeriodServiceTestSuite) TearDownTest() {
	suite.dispatcher.Shutdown()
}

// quarterlyYear builds a 2026 calendar fiscal year with four quarters in the
// given statuses.
func (suite *PeriodServiceTestSuite) quarterlyYear(statuses ...domain.PeriodStatus) *domain.FiscalYear {
	suite.Require().Len(statuses, 4)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	periods := make([]domain.Period, 4)
	for i := 0; i < 4; i++ {
		periods[i] = domain.Period{
			PeriodNumber: i + 1,
			StartDate:    start.AddDate(0, i*3, 0),
			EndDate:      start.AddDate(0, (i+1)*3, 0).Add(-time.Nanosecond),
			Status:       statuses[i],
		}
	}
	return &domain.FiscalYear{
		FiscalYearID:   uuid.NewString(),
		OrganizationID: suite.orgID,
		Year:           2026,
		StartMonth:     1,
		Frequency:      domain.Quarterly,
		Periods:        periods,
	}
}

func (suite *PeriodServiceTestSuite) expectFind(fy *domain.FiscalYear) {
	suite.mockFiscalYearRepo.On("FindFiscalYear", suite.ctx, suite.orgID, 2026).
		Return(fy, nil).Once()
}

func (suite *PeriodServiceTestSuite) TestInitializeFiscalYear_Quarterly() {
	suite.mockFiscalYearRepo.On("FindFiscalYear", suite.ctx, suite.orgID, 2026).
		Return(nil, apperrors.ErrNotFound).Once()

	var saved domain.FiscalYear
	suite.mockFiscalYearRepo.On("SaveFiscalYear", suite.ctx, mock.AnythingOfType("domain.FiscalYear")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.FiscalYear)
		}).
		Return(nil).Once()

	fy, err := suite.service.InitializeFiscalYear(suite.ctx, suite.orgID, dto.InitializeFiscalYearRequest{
		Year:       2026,
		Frequency:  domain.Quarterly,
		StartMonth: 1,
	}, "tester")

	suite.Require().NoError(err)
	suite.Len(fy.Periods, 4)
	suite.Equal(domain.PeriodNotStarted, fy.Periods[0].Status)
	suite.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), fy.Periods[1].StartDate)
	suite.True(fy.Periods[3].EndDate.Before(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
	suite.Len(saved.Periods, 4)
}

func (suite *PeriodServiceTestSuite) TestInitializeFiscalYear_OffsetStartMonthSpansYears() {
	suite.mockFiscalYearRepo.On("FindFiscalYear", suite.ctx, suite.orgID, 2026).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFiscalYearRepo.On("SaveFiscalYear", suite.ctx, mock.AnythingOfType("domain.FiscalYear")).
		Return(nil).Once()

	fy, err := suite.service.InitializeFiscalYear(suite.ctx, suite.orgID, dto.InitializeFiscalYearRequest{
		Year:       2026,
		Frequency:  domain.Monthly,
		StartMonth: 4,
	}, "tester")

	suite.Require().NoError(err)
	suite.Len(fy.Periods, 12)
	suite.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), fy.Periods[0].StartDate)
	suite.Equal(time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC), fy.Periods[11].StartDate)
}

func (suite *PeriodServiceTestSuite) TestInitializeFiscalYear_Duplicate() {
	existing := suite.quarterlyYear(domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(existing)

	_, err := suite.service.InitializeFiscalYear(suite.ctx, suite.orgID, dto.InitializeFiscalYearRequest{
		Year:       2026,
		Frequency:  domain.Quarterly,
		StartMonth: 1,
	}, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *PeriodServiceTestSuite) TestOpenPeriod_FromNotStarted() {
	fy := suite.quarterlyYear(domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)
	suite.mockFiscalYearRepo.On("UpdatePeriod", suite.ctx, fy.FiscalYearID, mock.AnythingOfType("domain.Period")).
		Return(nil).Once()

	period, err := suite.service.OpenPeriod(suite.ctx, suite.orgID, 2026, 1, "tester")

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodOpen, period.Status)
}

func (suite *PeriodServiceTestSuite) TestOpenPeriod_AlreadyOpen() {
	fy := suite.quarterlyYear(domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.OpenPeriod(suite.ctx, suite.orgID, 2026, 1, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "already open")
}

func (suite *PeriodServiceTestSuite) TestOpenPeriod_LockedRefused() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.OpenPeriod(suite.ctx, suite.orgID, 2026, 1, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "locked")
}

// Opening a Closed period is a reopen in disguise, so the later-lock guard
// applies to it too.
func (suite *PeriodServiceTestSuite) TestOpenPeriod_ClosedBehindLaterLock() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodLocked, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.OpenPeriod(suite.ctx, suite.orgID, 2026, 1, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "later period is locked")
}

func (suite *PeriodServiceTestSuite) TestClosePeriod_Open() {
	fy := suite.quarterlyYear(domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)
	suite.mockFiscalYearRepo.On("UpdatePeriod", suite.ctx, fy.FiscalYearID, mock.AnythingOfType("domain.Period")).
		Return(nil).Once()

	period, err := suite.service.ClosePeriod(suite.ctx, suite.orgID, 2026, 1, false, "tester")

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.Status)
	suite.Equal("tester", period.ClosedBy)
	suite.Require().NotNil(period.ClosedAt)
}

func (suite *PeriodServiceTestSuite) TestClosePeriod_NeverOpenedNeedsForce() {
	fy := suite.quarterlyYear(domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.ClosePeriod(suite.ctx, suite.orgID, 2026, 1, false, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "never opened")

	suite.expectFind(fy)
	suite.mockFiscalYearRepo.On("UpdatePeriod", suite.ctx, fy.FiscalYearID, mock.AnythingOfType("domain.Period")).
		Return(nil).Once()

	period, err := suite.service.ClosePeriod(suite.ctx, suite.orgID, 2026, 1, true, "tester")

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.Status)
}

func (suite *PeriodServiceTestSuite) TestLockPeriod_RequiresClosed() {
	fy := suite.quarterlyYear(domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.LockPeriod(suite.ctx, suite.orgID, 2026, 1, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "must be closed first")
}

// The lock ratchet: locking period 3 while period 2 is still open would
// strand an unlockable gap.
func (suite *PeriodServiceTestSuite) TestLockPeriod_PriorPeriodOpen() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodOpen, domain.PeriodClosed, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.LockPeriod(suite.ctx, suite.orgID, 2026, 3, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "prior period still closing")
}

func (suite *PeriodServiceTestSuite) TestLockPeriod_Sequential() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodClosed, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)
	suite.mockFiscalYearRepo.On("UpdatePeriod", suite.ctx, fy.FiscalYearID, mock.AnythingOfType("domain.Period")).
		Return(nil).Once()

	period, err := suite.service.LockPeriod(suite.ctx, suite.orgID, 2026, 2, "tester")

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodLocked, period.Status)
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_Closed() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)
	suite.mockFiscalYearRepo.On("UpdatePeriod", suite.ctx, fy.FiscalYearID, mock.AnythingOfType("domain.Period")).
		Return(nil).Once()

	period, err := suite.service.ReopenPeriod(suite.ctx, suite.orgID, 2026, 1, "late vendor invoice", "tester")

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodOpen, period.Status)
	suite.Equal("late vendor invoice", period.ReopenReason)
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_LockedNever() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.ReopenPeriod(suite.ctx, suite.orgID, 2026, 1, "oops", "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockFiscalYearRepo.AssertNotCalled(suite.T(), "UpdatePeriod", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_LaterPeriodLocked() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodLocked, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.ReopenPeriod(suite.ctx, suite.orgID, 2026, 1, "late invoice", "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "later period is locked")
}

func (suite *PeriodServiceTestSuite) TestYearEndClose_AllPeriodsClosed() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodClosed, domain.PeriodClosed, domain.PeriodClosed)
	suite.expectFind(fy)

	var saved domain.FiscalYear
	suite.mockFiscalYearRepo.On("UpdateFiscalYear", suite.ctx, mock.AnythingOfType("domain.FiscalYear")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.FiscalYear)
		}).
		Return(nil).Once()

	closed, err := suite.service.YearEndClose(suite.ctx, suite.orgID, 2026, dto.YearEndCloseRequest{
		RetainedEarningsAccountCode: "3900",
	}, "tester")

	suite.Require().NoError(err)
	suite.True(closed.YearClosed)
	suite.Equal("3900", closed.RetainedEarningsAccount)
	for _, p := range saved.Periods {
		suite.Equal(domain.PeriodLocked, p.Status)
	}
}

func (suite *PeriodServiceTestSuite) TestYearEndClose_UnclosedPeriodListed() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodOpen, domain.PeriodClosed, domain.PeriodNotStarted)
	suite.expectFind(fy)

	_, err := suite.service.YearEndClose(suite.ctx, suite.orgID, 2026, dto.YearEndCloseRequest{
		RetainedEarningsAccountCode: "3900",
	}, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "period 2 (OPEN)")
	suite.ErrorContains(err, "period 4 (NOT_STARTED)")
	suite.mockFiscalYearRepo.AssertNotCalled(suite.T(), "UpdateFiscalYear", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestYearEndClose_AlreadyClosed() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodLocked, domain.PeriodLocked, domain.PeriodLocked)
	fy.YearClosed = true
	suite.expectFind(fy)

	_, err := suite.service.YearEndClose(suite.ctx, suite.orgID, 2026, dto.YearEndCloseRequest{
		RetainedEarningsAccountCode: "3900",
	}, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "already closed")
}

func (suite *PeriodServiceTestSuite) TestMutationsRefusedAfterYearClose() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodLocked, domain.PeriodLocked, domain.PeriodLocked)
	fy.YearClosed = true
	suite.expectFind(fy)

	_, err := suite.service.OpenPeriod(suite.ctx, suite.orgID, 2026, 1, "tester")

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.ErrorContains(err, "already closed")
}

func (suite *PeriodServiceTestSuite) TestCanPostToDate_OpenPeriod() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.mockFiscalYearRepo.On("ListFiscalYears", suite.ctx, suite.orgID).
		Return([]domain.FiscalYear{*fy}, nil).Once()

	ok, reason, err := suite.service.CanPostToDate(suite.ctx, suite.orgID,
		time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.True(ok)
	suite.Empty(reason)
}

func (suite *PeriodServiceTestSuite) TestCanPostToDate_ClosedPeriod() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.mockFiscalYearRepo.On("ListFiscalYears", suite.ctx, suite.orgID).
		Return([]domain.FiscalYear{*fy}, nil).Once()

	ok, reason, err := suite.service.CanPostToDate(suite.ctx, suite.orgID,
		time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.False(ok)
	suite.Contains(reason, "CLOSED")
}

// Once the year is closed no date within it is postable, permanently.
func (suite *PeriodServiceTestSuite) TestCanPostToDate_YearClosed() {
	fy := suite.quarterlyYear(domain.PeriodLocked, domain.PeriodLocked, domain.PeriodLocked, domain.PeriodLocked)
	fy.YearClosed = true
	suite.mockFiscalYearRepo.On("ListFiscalYears", suite.ctx, suite.orgID).
		Return([]domain.FiscalYear{*fy}, nil).Once()

	ok, reason, err := suite.service.CanPostToDate(suite.ctx, suite.orgID,
		time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.False(ok)
	suite.Contains(reason, "closed")
}

func (suite *PeriodServiceTestSuite) TestCanPostToDate_NoPeriod() {
	suite.mockFiscalYearRepo.On("ListFiscalYears", suite.ctx, suite.orgID).
		Return([]domain.FiscalYear{}, nil).Once()

	ok, reason, err := suite.service.CanPostToDate(suite.ctx, suite.orgID,
		time.Date(2031, time.May, 10, 0, 0, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.False(ok)
	suite.Contains(reason, "no fiscal period covers the date")
}

func (suite *PeriodServiceTestSuite) TestGetPeriodForDate() {
	fy := suite.quarterlyYear(domain.PeriodClosed, domain.PeriodOpen, domain.PeriodNotStarted, domain.PeriodNotStarted)
	suite.mockFiscalYearRepo.On("ListFiscalYears", suite.ctx, suite.orgID).
		Return([]domain.FiscalYear{*fy}, nil).Once()

	period, err := suite.service.GetPeriodForDate(suite.ctx, suite.orgID,
		time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC))

	suite.Require().NoError(err)
	suite.Equal(2, period.PeriodNumber)
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
