package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a ledger account row.
type Account struct {
	AccountID       string          `db:"account_id"`
	OrganizationID  string          `db:"organization_id"`
	AccountCode     string          `db:"account_code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	CurrencyCode    string          `db:"currency_code"`
	Balance         decimal.Decimal `db:"balance"`
	IsActive        bool            `db:"is_active"`
	IsSystemAccount bool            `db:"is_system_account"`
	CurrentYear     int             `db:"current_year"`
	CurrentMonth    int             `db:"current_month"`
	AuditFields
}

// AccountEntry represents one immutable row of an account's entry history.
type AccountEntry struct {
	EntryID         string          `db:"entry_id"`
	AccountID       string          `db:"account_id"`
	EntryType       string          `db:"entry_type"`
	Amount          decimal.Decimal `db:"amount"`
	Delta           decimal.Decimal `db:"delta"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	Description     string          `db:"description"`
	PerformedBy     string          `db:"performed_by"`
	Status          string          `db:"status"`
	ReferenceType   *string         `db:"reference_type"`
	ReferenceID     *string         `db:"reference_id"`
	ReversalEntryID *string         `db:"reversal_entry_id"`
	ReversedEntryID *string         `db:"reversed_entry_id"`
	CreatedAt       time.Time       `db:"created_at"`
}

// AccountPeriodSummary represents a closed-period snapshot row.
type AccountPeriodSummary struct {
	AccountID      string          `db:"account_id"`
	Year           int             `db:"year"`
	Month          int             `db:"month"`
	TotalDebits    decimal.Decimal `db:"total_debits"`
	TotalCredits   decimal.Decimal `db:"total_credits"`
	ClosingBalance decimal.Decimal `db:"closing_balance"`
	EntryCount     int             `db:"entry_count"`
	ClosedBy       string          `db:"closed_by"`
	ClosedAt       time.Time       `db:"closed_at"`
}
