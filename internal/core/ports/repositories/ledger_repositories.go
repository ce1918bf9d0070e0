package repositories

import (
	"context"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

// AccountReader defines read operations for account and entry data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its code within an organization.
	FindAccountByCode(ctx context.Context, organizationID string, accountCode string) (*domain.Account, error)

	// ListAccounts retrieves accounts for an organization; activeOnly limits
	// the result to active accounts.
	ListAccounts(ctx context.Context, organizationID string, activeOnly bool) ([]domain.Account, error)

	// FindEntryByID retrieves a single ledger entry.
	FindEntryByID(ctx context.Context, accountID string, entryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves the full entry history of an account in
	// chronological order.
	ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)

	// ListEntriesInRange retrieves entries with from <= createdAt <= to.
	ListEntriesInRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerEntry, error)

	// ListEntriesByReference retrieves entries carrying the given reference.
	ListEntriesByReference(ctx context.Context, accountID string, referenceType, referenceID string) ([]domain.LedgerEntry, error)

	// ListRecentEntries retrieves the most recent n entries, newest first.
	ListRecentEntries(ctx context.Context, accountID string, n int) ([]domain.LedgerEntry, error)

	// ListPeriodSummaries retrieves the closed-period snapshots of an account.
	ListPeriodSummaries(ctx context.Context, accountID string) ([]domain.PeriodSummary, error)
}

// AccountWriter defines write operations for account and entry data.
type AccountWriter interface {
	// SaveAccount persists a new account together with its optional opening
	// entry in one transaction.
	SaveAccount(ctx context.Context, account domain.Account, opening *domain.LedgerEntry) error

	// AppendEntry appends an entry and updates the cached account balance and
	// audit fields in one transaction.
	AppendEntry(ctx context.Context, account domain.Account, entry domain.LedgerEntry) error

	// MarkEntryReversed links the original entry to its reversal.
	MarkEntryReversed(ctx context.Context, accountID string, entryID string, reversalEntryID string) error

	// UpdateAccount updates mutable account fields (name, active flag,
	// current period pointer, balance).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SavePeriodSummary persists an immutable period snapshot and advances the
	// account's current period pointer in one transaction.
	SavePeriodSummary(ctx context.Context, account domain.Account, summary domain.PeriodSummary) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
