package services

import (
	"context"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
)

// LedgerWriterSvc defines the mutating operations of an account ledger.
type LedgerWriterSvc interface {
	// CreateAccount initializes a ledger account, seeding an Opening entry
	// when the opening balance is non-zero.
	CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// PostDebit applies a debit posting to the account.
	PostDebit(ctx context.Context, organizationID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error)

	// PostCredit applies a credit posting to the account.
	PostCredit(ctx context.Context, organizationID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error)

	// AdjustBalance sets the balance directly, recording the delta as an
	// Adjustment entry. A no-op adjustment is rejected.
	AdjustBalance(ctx context.Context, organizationID, accountCode string, req dto.AdjustBalanceRequest, performedBy string) (*domain.LedgerEntry, error)

	// ReverseEntry posts an exact offsetting Reversal entry and links both
	// entries bidirectionally. Reversal entries are terminal.
	ReverseEntry(ctx context.Context, organizationID, accountCode, entryID string, req dto.ReverseEntryRequest, performedBy string) (*domain.LedgerEntry, error)

	// CloseAccountPeriod snapshots and closes the account's current period.
	CloseAccountPeriod(ctx context.Context, organizationID, accountCode string, req dto.CloseAccountPeriodRequest, performedBy string) (*domain.PeriodSummary, error)

	// DeactivateAccount soft-disables postings; system accounts refuse this.
	DeactivateAccount(ctx context.Context, organizationID, accountCode string, performedBy string) error

	// ReactivateAccount re-enables a deactivated account.
	ReactivateAccount(ctx context.Context, organizationID, accountCode string, performedBy string) error
}

// LedgerReaderSvc defines the read-only projections over the entry history.
type LedgerReaderSvc interface {
	GetAccount(ctx context.Context, organizationID, accountCode string) (*domain.Account, error)
	ListAccounts(ctx context.Context, organizationID string, activeOnly bool) ([]domain.Account, error)
	GetBalance(ctx context.Context, organizationID, accountCode string) (*dto.BalanceResponse, error)

	// GetBalanceAt replays entries with createdAt <= cutoff.
	GetBalanceAt(ctx context.Context, organizationID, accountCode string, cutoff time.Time) (*dto.BalanceResponse, error)

	GetEntriesInRange(ctx context.Context, organizationID, accountCode string, from, to time.Time) ([]domain.LedgerEntry, error)
	GetEntriesByReference(ctx context.Context, organizationID, accountCode, referenceType, referenceID string) ([]domain.LedgerEntry, error)
	GetRecentEntries(ctx context.Context, organizationID, accountCode string, n int) ([]domain.LedgerEntry, error)
	GetPeriodSummaries(ctx context.Context, organizationID, accountCode string) ([]domain.PeriodSummary, error)
}

// LedgerSvcFacade combines the ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
