package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/handlers"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/payments"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/config"
)

// --- Mock LedgerSvcFacade ---

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, organizationID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) PostDebit(ctx context.Context, organizationID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, req, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) PostCredit(ctx context.Context, organizationID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, req, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) AdjustBalance(ctx context.Context, organizationID, accountCode string, req dto.AdjustBalanceRequest, performedBy string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, req, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntry(ctx context.Context, organizationID, accountCode, entryID string, req dto.ReverseEntryRequest, performedBy string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, entryID, req, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) CloseAccountPeriod(ctx context.Context, organizationID, accountCode string, req dto.CloseAccountPeriodRequest, performedBy string) (*domain.PeriodSummary, error) {
	args := m.Called(ctx, organizationID, accountCode, req, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodSummary), args.Error(1)
}

func (m *MockLedgerService) DeactivateAccount(ctx context.Context, organizationID, accountCode string, performedBy string) error {
	args := m.Called(ctx, organizationID, accountCode, performedBy)
	return args.Error(0)
}

func (m *MockLedgerService) ReactivateAccount(ctx context.Context, organizationID, accountCode string, performedBy string) error {
	args := m.Called(ctx, organizationID, accountCode, performedBy)
	return args.Error(0)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, organizationID, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, organizationID, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) ListAccounts(ctx context.Context, organizationID string, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, organizationID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, organizationID, accountCode string) (*dto.BalanceResponse, error) {
	args := m.Called(ctx, organizationID, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceResponse), args.Error(1)
}

func (m *MockLedgerService) GetBalanceAt(ctx context.Context, organizationID, accountCode string, cutoff time.Time) (*dto.BalanceResponse, error) {
	args := m.Called(ctx, organizationID, accountCode, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceResponse), args.Error(1)
}

func (m *MockLedgerService) GetEntriesInRange(ctx context.Context, organizationID, accountCode string, from, to time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntriesByReference(ctx context.Context, organizationID, accountCode, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, referenceType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetRecentEntries(ctx context.Context, organizationID, accountCode string, n int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, organizationID, accountCode, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetPeriodSummaries(ctx context.Context, organizationID, accountCode string) ([]domain.PeriodSummary, error) {
	args := m.Called(ctx, organizationID, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodSummary), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock IdempotencySvcFacade ---

type MockIdempotencyService struct {
	mock.Mock
}

func (m *MockIdempotencyService) GenerateKey(ctx context.Context, operation, relatedEntityID string, ttl time.Duration) (*domain.IdempotencyKey, error) {
	args := m.Called(ctx, operation, relatedEntityID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyKey), args.Error(1)
}

func (m *MockIdempotencyService) CheckKey(ctx context.Context, key string) (*dto.KeyStatusResponse, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.KeyStatusResponse), args.Error(1)
}

func (m *MockIdempotencyService) MarkKeyUsed(ctx context.Context, key string, successful bool, resultHash string) error {
	args := m.Called(ctx, key, successful, resultHash)
	return args.Error(0)
}

func (m *MockIdempotencyService) TryAcquire(ctx context.Context, key, operation, relatedEntityID string) (bool, error) {
	args := m.Called(ctx, key, operation, relatedEntityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyService) CleanupExpiredKeys(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.IdempotencySvcFacade = (*MockIdempotencyService)(nil)

type AccountHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockLedger      *MockLedgerService
	mockIdempotency *MockIdempotencyService

	orgID string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockLedger = new(MockLedgerService)
	suite.mockIdempotency = new(MockIdempotencyService)
	suite.orgID = uuid.NewString()

	container := &portssvc.ServiceContainer{
		Ledger:      suite.mockLedger,
		Idempotency: suite.mockIdempotency,
	}

	suite.router = gin.New()
	suite.router.Use(middleware.PerformerMiddleware())
	handlers.RegisterRoutes(suite.router, &config.Config{}, container,
		payments.NewCircuitBreaker(payments.DefaultFailureThreshold, payments.DefaultCooldown))
}

func (suite *AccountHandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	account := &domain.Account{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.orgID,
		AccountCode:    "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		Balance:        decimal.Zero,
		IsActive:       true,
	}
	suite.mockLedger.On("CreateAccount", mock.Anything, suite.orgID, mock.AnythingOfType("dto.CreateAccountRequest"), "tester").
		Return(account, nil).Once()

	body := `{"accountCode":"1000","name":"Cash","accountType":"ASSET"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Performed-By", "tester")

	w := suite.serve(req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("1000", resp.AccountCode)
	suite.Equal(domain.DebitSide, resp.NormalSide)
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MissingPerformer() {
	body := `{"accountCode":"1000","name":"Cash","accountType":"ASSET"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "X-Performed-By")
	suite.mockLedger.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidAccountType() {
	body := `{"accountCode":"1000","name":"Cash","accountType":"SOMETHING"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Performed-By", "tester")

	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockLedger.On("GetAccount", mock.Anything, suite.orgID, "9999").
		Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations/"+suite.orgID+"/accounts/9999", nil)

	w := suite.serve(req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestPostDebit_Success() {
	entry := &domain.LedgerEntry{
		EntryID:      uuid.NewString(),
		EntryType:    domain.EntryDebit,
		Amount:       decimal.NewFromInt(30),
		Delta:        decimal.NewFromInt(30),
		BalanceAfter: decimal.NewFromInt(130),
		Status:       domain.EntryPosted,
	}
	suite.mockLedger.On("PostDebit", mock.Anything, suite.orgID, "1000", mock.AnythingOfType("dto.PostingRequest"), "tester").
		Return(entry, nil).Once()

	body := `{"amount":"30","description":"cash sale"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts/1000/debit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Performed-By", "tester")

	w := suite.serve(req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(entry.EntryID, resp.EntryID)
}

func (suite *AccountHandlerTestSuite) TestPostDebit_InactiveAccountMapsTo422() {
	suite.mockLedger.On("PostDebit", mock.Anything, suite.orgID, "1000", mock.AnythingOfType("dto.PostingRequest"), "tester").
		Return(nil, apperrors.ErrInvalidState).Once()

	body := `{"amount":"30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts/1000/debit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Performed-By", "tester")

	w := suite.serve(req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

// A replayed idempotency key must short-circuit before the handler runs.
func (suite *AccountHandlerTestSuite) TestPostDebit_IdempotentReplayRefused() {
	key := "idem_account_debit_" + uuid.NewString()
	suite.mockIdempotency.On("TryAcquire", mock.Anything, key, "account_debit", suite.orgID).
		Return(false, nil).Once()
	suite.mockIdempotency.On("CheckKey", mock.Anything, key).
		Return(&dto.KeyStatusResponse{Key: key, Exists: true, Used: true, Successful: true, ResultHash: "h1"}, nil).Once()

	body := `{"amount":"30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts/1000/debit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Performed-By", "tester")
	req.Header.Set("Idempotency-Key", key)

	w := suite.serve(req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "h1")
	suite.mockLedger.AssertNotCalled(suite.T(), "PostDebit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestPostDebit_IdempotentFirstAttemptRecorded() {
	key := "idem_account_debit_" + uuid.NewString()
	entry := &domain.LedgerEntry{
		EntryID:      uuid.NewString(),
		EntryType:    domain.EntryDebit,
		Amount:       decimal.NewFromInt(30),
		Delta:        decimal.NewFromInt(30),
		BalanceAfter: decimal.NewFromInt(130),
		Status:       domain.EntryPosted,
	}
	suite.mockIdempotency.On("TryAcquire", mock.Anything, key, "account_debit", suite.orgID).
		Return(true, nil).Once()
	suite.mockLedger.On("PostDebit", mock.Anything, suite.orgID, "1000", mock.AnythingOfType("dto.PostingRequest"), "tester").
		Return(entry, nil).Once()
	suite.mockIdempotency.On("MarkKeyUsed", mock.Anything, key, true, "").
		Return(nil).Once()

	body := `{"amount":"30"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizations/"+suite.orgID+"/accounts/1000/debit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Performed-By", "tester")
	req.Header.Set("Idempotency-Key", key)

	w := suite.serve(req)

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockIdempotency.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestRetryAdvice_TerminalError() {
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/processors/stripe/retry-advice?attempt=1&errorCode=card%20declined", nil)

	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	var advice dto.RetryAdviceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &advice))
	suite.True(advice.Terminal)
	suite.False(advice.ShouldRetry)
}

func (suite *AccountHandlerTestSuite) TestCircuitState_FreshProcessorClosed() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/processors/stripe/circuit", nil)

	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)
	var status payments.CircuitStatus
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &status))
	suite.Equal(payments.CircuitClosed, status.State)
	suite.Zero(status.ConsecutiveFailures)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
