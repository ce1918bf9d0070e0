package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/worker"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/utils/accounting"
)

var (
	ErrAccountCodeRequired = errors.New("account code is required")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrEntryReversed       = errors.New("entry is already reversed")
	ErrReversalOfReversal  = errors.New("cannot reverse a reversal entry")
	ErrNoOpAdjustment      = errors.New("adjustment must change the balance")
	ErrNotCurrentPeriod    = errors.New("not the account's current open period")
	ErrSystemAccount       = errors.New("system account cannot be deactivated")
)

// ledgerService implements the per-account double-entry ledger: balance plus
// an append-only entry history, with the cached balance derived from the
// history.
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	dispatcher  *worker.Dispatcher
}

// NewLedgerService creates a new ledger service. All mutations are funneled
// through the dispatcher so commands for one account run single-writer.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, dispatcher *worker.Dispatcher) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		dispatcher:  dispatcher,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func accountKey(organizationID, accountCode string) string {
	return "account:" + organizationID + ":" + accountCode
}

func (s *ledgerService) loadAccount(ctx context.Context, organizationID, accountCode string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, organizationID, accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountCode, err)
	}
	return account, nil
}

// CreateAccount initializes a ledger account. A non-zero opening balance is
// seeded as an Opening entry so the history alone reproduces the balance.
func (s *ledgerService) CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code := strings.TrimSpace(req.AccountCode)
	if code == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAccountCodeRequired)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, req.AccountType)
	}
	currency := req.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	var created *domain.Account
	err := s.dispatcher.Do(ctx, accountKey(organizationID, code), func() error {
		existing, err := s.accountRepo.FindAccountByCode(ctx, organizationID, code)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check for existing account: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: account %s already exists in organization %s", apperrors.ErrDuplicate, code, organizationID)
		}

		now := time.Now().UTC()
		account := domain.Account{
			AccountID:       uuid.NewString(),
			OrganizationID:  organizationID,
			AccountCode:     code,
			Name:            req.Name,
			AccountType:     req.AccountType,
			CurrencyCode:    currency,
			Balance:         req.OpeningBalance,
			IsActive:        true,
			IsSystemAccount: req.IsSystemAccount,
			CurrentYear:     now.Year(),
			CurrentMonth:    int(now.Month()),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}

		var opening *domain.LedgerEntry
		if !req.OpeningBalance.IsZero() {
			opening = &domain.LedgerEntry{
				EntryID:      uuid.NewString(),
				AccountID:    account.AccountID,
				EntryType:    domain.EntryOpening,
				Amount:       req.OpeningBalance.Abs(),
				Delta:        req.OpeningBalance,
				BalanceAfter: req.OpeningBalance,
				Description:  "Opening balance",
				PerformedBy:  creatorUserID,
				Status:       domain.EntryPosted,
				CreatedAt:    now,
			}
		}

		if err := s.accountRepo.SaveAccount(ctx, account, opening); err != nil {
			logger.Error("Failed to save account", slog.String("account_code", code), slog.String("error", err.Error()))
			return fmt.Errorf("failed to save account: %w", err)
		}
		created = &account
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Account created", slog.String("account_code", code), slog.String("organization_id", organizationID))
	return created, nil
}

// PostDebit applies a debit posting per the normal-balance rule.
func (s *ledgerService) PostDebit(ctx context.Context, organizationID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error) {
	return s.post(ctx, organizationID, accountCode, domain.DebitSide, req, performedBy)
}

// PostCredit applies a credit posting per the normal-balance rule.
func (s *ledgerService) PostCredit(ctx context.Context, organizationID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error) {
	return s.post(ctx, organizationID, accountCode, domain.CreditSide, req, performedBy)
}

func (s *ledgerService) post(ctx context.Context, organizationID, accountCode string, side domain.BalanceSide, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: posting amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	entryType := domain.EntryDebit
	if side == domain.CreditSide {
		entryType = domain.EntryCredit
	}

	var posted *domain.LedgerEntry
	err := s.dispatcher.Do(ctx, accountKey(organizationID, accountCode), func() error {
		account, err := s.loadAccount(ctx, organizationID, accountCode)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return fmt.Errorf("%w: account %s %s", apperrors.ErrInvalidState, accountCode, ErrAccountInactive)
		}

		delta, err := accounting.SignedDelta(side, req.Amount, account.AccountType)
		if err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrInternal, err)
		}

		now := time.Now().UTC()
		entry := domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			AccountID:     account.AccountID,
			EntryType:     entryType,
			Amount:        req.Amount,
			Delta:         delta,
			BalanceAfter:  account.Balance.Add(delta),
			Description:   req.Description,
			PerformedBy:   performedBy,
			Status:        domain.EntryPosted,
			ReferenceType: req.ReferenceType,
			ReferenceID:   req.ReferenceID,
			CreatedAt:     now,
		}

		account.Balance = entry.BalanceAfter
		account.LastUpdatedAt = now
		account.LastUpdatedBy = performedBy

		if err := s.accountRepo.AppendEntry(ctx, *account, entry); err != nil {
			logger.Error("Failed to append ledger entry", slog.String("account_code", accountCode), slog.String("error", err.Error()))
			return fmt.Errorf("failed to append entry: %w", err)
		}
		posted = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Posting applied",
		slog.String("account_code", accountCode),
		slog.String("entry_type", string(entryType)),
		slog.String("amount", req.Amount.String()),
		slog.String("balance", posted.BalanceAfter.String()))
	return posted, nil
}

// AdjustBalance sets the balance directly and records the delta as an
// Adjustment entry. A no-op adjustment indicates a caller error and is
// rejected rather than silently accepted.
func (s *ledgerService) AdjustBalance(ctx context.Context, organizationID, accountCode string, req dto.AdjustBalanceRequest, performedBy string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var adjusted *domain.LedgerEntry
	err := s.dispatcher.Do(ctx, accountKey(organizationID, accountCode), func() error {
		account, err := s.loadAccount(ctx, organizationID, accountCode)
		if err != nil {
			return err
		}
		if account.Balance.Equal(req.NewBalance) {
			return fmt.Errorf("%w: %s (balance is already %s)", apperrors.ErrInvalidState, ErrNoOpAdjustment, account.Balance)
		}

		delta := req.NewBalance.Sub(account.Balance)
		now := time.Now().UTC()
		entry := domain.LedgerEntry{
			EntryID:      uuid.NewString(),
			AccountID:    account.AccountID,
			EntryType:    domain.EntryAdjustment,
			Amount:       delta.Abs(),
			Delta:        delta,
			BalanceAfter: req.NewBalance,
			Description:  req.Reason,
			PerformedBy:  performedBy,
			Status:       domain.EntryPosted,
			CreatedAt:    now,
		}

		account.Balance = req.NewBalance
		account.LastUpdatedAt = now
		account.LastUpdatedBy = performedBy

		if err := s.accountRepo.AppendEntry(ctx, *account, entry); err != nil {
			logger.Error("Failed to append adjustment entry", slog.String("account_code", accountCode), slog.String("error", err.Error()))
			return fmt.Errorf("failed to append entry: %w", err)
		}
		adjusted = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Balance adjusted",
		slog.String("account_code", accountCode),
		slog.String("new_balance", req.NewBalance.String()),
		slog.String("performed_by", performedBy))
	return adjusted, nil
}

// ReverseEntry posts an exact offsetting Reversal entry, restoring the
// pre-posting balance, and links both entries bidirectionally. Reversal
// entries are terminal: no chained reversals.
func (s *ledgerService) ReverseEntry(ctx context.Context, organizationID, accountCode, entryID string, req dto.ReverseEntryRequest, performedBy string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var reversal *domain.LedgerEntry
	err := s.dispatcher.Do(ctx, accountKey(organizationID, accountCode), func() error {
		account, err := s.loadAccount(ctx, organizationID, accountCode)
		if err != nil {
			return err
		}
		original, err := s.accountRepo.FindEntryByID(ctx, account.AccountID, entryID)
		if err != nil {
			return fmt.Errorf("failed to find entry %s: %w", entryID, err)
		}
		if original.Status == domain.EntryReversed {
			return fmt.Errorf("%w: %s (entry %s)", apperrors.ErrInvalidState, ErrEntryReversed, entryID)
		}
		if original.EntryType == domain.EntryReversal {
			return fmt.Errorf("%w: %s (entry %s)", apperrors.ErrInvalidState, ErrReversalOfReversal, entryID)
		}

		now := time.Now().UTC()
		entry := domain.LedgerEntry{
			EntryID:         uuid.NewString(),
			AccountID:       account.AccountID,
			EntryType:       domain.EntryReversal,
			Amount:          original.Amount,
			Delta:           original.Delta.Neg(),
			BalanceAfter:    account.Balance.Sub(original.Delta),
			Description:     req.Reason,
			PerformedBy:     performedBy,
			Status:          domain.EntryPosted,
			ReferenceType:   original.ReferenceType,
			ReferenceID:     original.ReferenceID,
			ReversedEntryID: original.EntryID,
			CreatedAt:       now,
		}

		account.Balance = entry.BalanceAfter
		account.LastUpdatedAt = now
		account.LastUpdatedBy = performedBy

		if err := s.accountRepo.AppendEntry(ctx, *account, entry); err != nil {
			logger.Error("Failed to append reversal entry", slog.String("account_code", accountCode), slog.String("error", err.Error()))
			return fmt.Errorf("failed to append reversal: %w", err)
		}
		if err := s.accountRepo.MarkEntryReversed(ctx, account.AccountID, original.EntryID, entry.EntryID); err != nil {
			logger.Error("Failed to link reversed entry", slog.String("entry_id", original.EntryID), slog.String("error", err.Error()))
			return fmt.Errorf("failed to link reversal: %w", err)
		}
		reversal = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Entry reversed",
		slog.String("account_code", accountCode),
		slog.String("reversed_entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID))
	return reversal, nil
}

// CloseAccountPeriod produces an immutable summary of the account's current
// (year, month) period and advances the period pointer. The opening entry is
// excluded from the totals.
func (s *ledgerService) CloseAccountPeriod(ctx context.Context, organizationID, accountCode string, req dto.CloseAccountPeriodRequest, performedBy string) (*domain.PeriodSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var summary *domain.PeriodSummary
	err := s.dispatcher.Do(ctx, accountKey(organizationID, accountCode), func() error {
		account, err := s.loadAccount(ctx, organizationID, accountCode)
		if err != nil {
			return err
		}
		if account.CurrentYear != req.Year || account.CurrentMonth != req.Month {
			return fmt.Errorf("%w: %d-%02d %s (current period is %d-%02d)",
				apperrors.ErrInvalidState, req.Year, req.Month, ErrNotCurrentPeriod, account.CurrentYear, account.CurrentMonth)
		}

		periodStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
		periodEnd := periodStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
		entries, err := s.accountRepo.ListEntriesInRange(ctx, account.AccountID, periodStart, periodEnd)
		if err != nil {
			return fmt.Errorf("failed to list period entries: %w", err)
		}

		totalDebits := decimal.Zero
		totalCredits := decimal.Zero
		count := 0
		for _, entry := range entries {
			if entry.EntryType == domain.EntryOpening {
				continue
			}
			count++
			if accounting.EntrySide(entry.Delta, account.AccountType) == domain.DebitSide {
				totalDebits = totalDebits.Add(entry.Amount)
			} else {
				totalCredits = totalCredits.Add(entry.Amount)
			}
		}

		now := time.Now().UTC()
		result := domain.PeriodSummary{
			AccountID:      account.AccountID,
			Year:           req.Year,
			Month:          req.Month,
			TotalDebits:    totalDebits,
			TotalCredits:   totalCredits,
			ClosingBalance: account.Balance,
			EntryCount:     count,
			ClosedBy:       performedBy,
			ClosedAt:       now,
		}

		// advance the current period pointer
		nextYear, nextMonth := req.Year, req.Month+1
		if nextMonth > 12 {
			nextYear, nextMonth = nextYear+1, 1
		}
		account.CurrentYear = nextYear
		account.CurrentMonth = nextMonth
		account.LastUpdatedAt = now
		account.LastUpdatedBy = performedBy

		if err := s.accountRepo.SavePeriodSummary(ctx, *account, result); err != nil {
			logger.Error("Failed to save period summary", slog.String("account_code", accountCode), slog.String("error", err.Error()))
			return fmt.Errorf("failed to save period summary: %w", err)
		}
		summary = &result
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Account period closed",
		slog.String("account_code", accountCode),
		slog.Int("year", req.Year),
		slog.Int("month", req.Month))
	return summary, nil
}

// DeactivateAccount disables further postings. System accounts refuse this.
func (s *ledgerService) DeactivateAccount(ctx context.Context, organizationID, accountCode string, performedBy string) error {
	return s.setActive(ctx, organizationID, accountCode, performedBy, false)
}

// ReactivateAccount re-enables postings.
func (s *ledgerService) ReactivateAccount(ctx context.Context, organizationID, accountCode string, performedBy string) error {
	return s.setActive(ctx, organizationID, accountCode, performedBy, true)
}

func (s *ledgerService) setActive(ctx context.Context, organizationID, accountCode string, performedBy string, active bool) error {
	return s.dispatcher.Do(ctx, accountKey(organizationID, accountCode), func() error {
		account, err := s.loadAccount(ctx, organizationID, accountCode)
		if err != nil {
			return err
		}
		if !active && account.IsSystemAccount {
			return fmt.Errorf("%w: %s (account %s)", apperrors.ErrInvalidState, ErrSystemAccount, accountCode)
		}
		if account.IsActive == active {
			return fmt.Errorf("%w: account %s is already %s", apperrors.ErrInvalidState, accountCode, activeWord(active))
		}
		account.IsActive = active
		account.LastUpdatedAt = time.Now().UTC()
		account.LastUpdatedBy = performedBy
		return s.accountRepo.UpdateAccount(ctx, *account)
	})
}

func activeWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// --- Read-only projections over the entry history ---

func (s *ledgerService) GetAccount(ctx context.Context, organizationID, accountCode string) (*domain.Account, error) {
	return s.loadAccount(ctx, organizationID, accountCode)
}

func (s *ledgerService) ListAccounts(ctx context.Context, organizationID string, activeOnly bool) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, organizationID, activeOnly)
}

func (s *ledgerService) GetBalance(ctx context.Context, organizationID, accountCode string) (*dto.BalanceResponse, error) {
	account, err := s.loadAccount(ctx, organizationID, accountCode)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{AccountID: account.AccountID, Balance: account.Balance}, nil
}

// GetBalanceAt replays the entry history up to the cutoff. The history is
// the durable source of truth; the stored balance is only a cache.
func (s *ledgerService) GetBalanceAt(ctx context.Context, organizationID, accountCode string, cutoff time.Time) (*dto.BalanceResponse, error) {
	account, err := s.loadAccount(ctx, organizationID, accountCode)
	if err != nil {
		return nil, err
	}
	entries, err := s.accountRepo.ListEntries(ctx, account.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	balance := decimal.Zero
	for _, entry := range entries {
		if entry.CreatedAt.After(cutoff) {
			continue
		}
		balance = balance.Add(entry.Delta)
	}
	return &dto.BalanceResponse{AccountID: account.AccountID, Balance: balance, AsOf: &cutoff}, nil
}

func (s *ledgerService) GetEntriesInRange(ctx context.Context, organizationID, accountCode string, from, to time.Time) ([]domain.LedgerEntry, error) {
	account, err := s.loadAccount(ctx, organizationID, accountCode)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.ListEntriesInRange(ctx, account.AccountID, from, to)
}

func (s *ledgerService) GetEntriesByReference(ctx context.Context, organizationID, accountCode, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	account, err := s.loadAccount(ctx, organizationID, accountCode)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.ListEntriesByReference(ctx, account.AccountID, referenceType, referenceID)
}

func (s *ledgerService) GetRecentEntries(ctx context.Context, organizationID, accountCode string, n int) ([]domain.LedgerEntry, error) {
	if n <= 0 {
		n = 10
	}
	account, err := s.loadAccount(ctx, organizationID, accountCode)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.ListRecentEntries(ctx, account.AccountID, n)
}

func (s *ledgerService) GetPeriodSummaries(ctx context.Context, organizationID, accountCode string) ([]domain.PeriodSummary, error) {
	account, err := s.loadAccount(ctx, organizationID, accountCode)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.ListPeriodSummaries(ctx, account.AccountID)
}
