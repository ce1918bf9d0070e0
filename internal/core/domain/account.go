package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// BalanceSide is the side on which an account type naturally increases.
type BalanceSide string

const (
	DebitSide  BalanceSide = "DEBIT"
	CreditSide BalanceSide = "CREDIT"
)

// NormalSide returns the normal balance side for the account type.
// Asset and Expense accounts increase on debit; Liability, Equity and
// Revenue accounts increase on credit.
func (t AccountType) NormalSide() BalanceSide {
	switch t {
	case Asset, Expense:
		return DebitSide
	default:
		return CreditSide
	}
}

// IsValid reports whether t is one of the five recognized account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// EntryType classifies a single ledger entry.
type EntryType string

const (
	EntryDebit      EntryType = "DEBIT"
	EntryCredit     EntryType = "CREDIT"
	EntryAdjustment EntryType = "ADJUSTMENT"
	EntryOpening    EntryType = "OPENING"
	EntryReversal   EntryType = "REVERSAL"
)

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryPosted   EntryStatus = "POSTED"
	EntryReversed EntryStatus = "REVERSED"
)

// Account is the unit of double-entry truth: a per-organization ledger
// account owning an append-only entry history and a cached balance.
type Account struct {
	AccountID       string          `json:"accountID"`
	OrganizationID  string          `json:"organizationID"`
	AccountCode     string          `json:"accountCode"` // unique per organization, immutable
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	CurrencyCode    string          `json:"currencyCode"`
	Balance         decimal.Decimal `json:"balance"`
	IsActive        bool            `json:"isActive"`
	IsSystemAccount bool            `json:"isSystemAccount"` // system accounts cannot be deactivated
	CurrentYear     int             `json:"currentYear"`
	CurrentMonth    int             `json:"currentMonth"`
	AuditFields
}

// LedgerEntry is one immutable posting against an account. Delta is the
// signed balance effect and BalanceAfter the resulting cached balance, so
// balances can be replayed from history alone.
type LedgerEntry struct {
	EntryID         string          `json:"entryID"`
	AccountID       string          `json:"accountID"`
	EntryType       EntryType       `json:"entryType"`
	Amount          decimal.Decimal `json:"amount"` // always >= 0
	Delta           decimal.Decimal `json:"delta"`  // signed balance effect
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	Description     string          `json:"description"`
	PerformedBy     string          `json:"performedBy"`
	Status          EntryStatus     `json:"status"`
	ReferenceType   string          `json:"referenceType,omitempty"`
	ReferenceID     string          `json:"referenceID,omitempty"`
	ReversalEntryID string          `json:"reversalEntryID,omitempty"` // entry that reversed this one
	ReversedEntryID string          `json:"reversedEntryID,omitempty"` // entry this reversal offsets
	CreatedAt       time.Time       `json:"createdAt"`
}

// PeriodSummary is the immutable snapshot produced when an account closes
// a (year, month) period. Opening entries are excluded from the totals.
type PeriodSummary struct {
	AccountID      string          `json:"accountID"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	TotalDebits    decimal.Decimal `json:"totalDebits"`
	TotalCredits   decimal.Decimal `json:"totalCredits"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	EntryCount     int             `json:"entryCount"`
	ClosedBy       string          `json:"closedBy"`
	ClosedAt       time.Time       `json:"closedAt"`
}
