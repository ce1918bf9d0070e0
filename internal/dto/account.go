package dto

import (
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new ledger account.
type CreateAccountRequest struct {
	AccountCode     string             `json:"accountCode" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode    string             `json:"currencyCode"` // defaults to USD
	OpeningBalance  decimal.Decimal    `json:"openingBalance"`
	IsSystemAccount bool               `json:"isSystemAccount"`
}

// PostingRequest carries a single debit or credit posting.
type PostingRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description"`
	ReferenceType string          `json:"referenceType"`
	ReferenceID   string          `json:"referenceID"`
}

// AdjustBalanceRequest sets the account balance directly.
type AdjustBalanceRequest struct {
	NewBalance decimal.Decimal `json:"newBalance" binding:"required"`
	Reason     string          `json:"reason" binding:"required"`
}

// ReverseEntryRequest asks for an exact offset of a prior entry.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CloseAccountPeriodRequest closes the account's current (year, month) period.
type CloseAccountPeriodRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	OrganizationID  string             `json:"organizationID"`
	AccountCode     string             `json:"accountCode"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	NormalSide      domain.BalanceSide `json:"normalSide"`
	CurrencyCode    string             `json:"currencyCode"`
	Balance         decimal.Decimal    `json:"balance"`
	IsActive        bool               `json:"isActive"`
	IsSystemAccount bool               `json:"isSystemAccount"`
	CurrentYear     int                `json:"currentYear"`
	CurrentMonth    int                `json:"currentMonth"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID         string             `json:"entryID"`
	AccountID       string             `json:"accountID"`
	EntryType       domain.EntryType   `json:"entryType"`
	Amount          decimal.Decimal    `json:"amount"`
	Delta           decimal.Decimal    `json:"delta"`
	BalanceAfter    decimal.Decimal    `json:"balanceAfter"`
	Description     string             `json:"description"`
	PerformedBy     string             `json:"performedBy"`
	Status          domain.EntryStatus `json:"status"`
	ReferenceType   string             `json:"referenceType,omitempty"`
	ReferenceID     string             `json:"referenceID,omitempty"`
	ReversalEntryID string             `json:"reversalEntryID,omitempty"`
	ReversedEntryID string             `json:"reversedEntryID,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ToAccountResponse converts a domain Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		OrganizationID:  a.OrganizationID,
		AccountCode:     a.AccountCode,
		Name:            a.Name,
		AccountType:     a.AccountType,
		NormalSide:      a.AccountType.NormalSide(),
		CurrencyCode:    a.CurrencyCode,
		Balance:         a.Balance,
		IsActive:        a.IsActive,
		IsSystemAccount: a.IsSystemAccount,
		CurrentYear:     a.CurrentYear,
		CurrentMonth:    a.CurrentMonth,
		CreatedAt:       a.CreatedAt,
		CreatedBy:       a.CreatedBy,
	}
}

// ToEntryResponse converts a domain LedgerEntry to its response DTO.
func ToEntryResponse(e domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:         e.EntryID,
		AccountID:       e.AccountID,
		EntryType:       e.EntryType,
		Amount:          e.Amount,
		Delta:           e.Delta,
		BalanceAfter:    e.BalanceAfter,
		Description:     e.Description,
		PerformedBy:     e.PerformedBy,
		Status:          e.Status,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		ReversalEntryID: e.ReversalEntryID,
		ReversedEntryID: e.ReversedEntryID,
		CreatedAt:       e.CreatedAt,
	}
}

// ToPeriodSummaryResponse converts a domain PeriodSummary to its response DTO.
func ToPeriodSummaryResponse(s domain.PeriodSummary) PeriodSummaryResponse {
	return PeriodSummaryResponse{
		AccountID:      s.AccountID,
		Year:           s.Year,
		Month:          s.Month,
		TotalDebits:    s.TotalDebits,
		TotalCredits:   s.TotalCredits,
		ClosingBalance: s.ClosingBalance,
		EntryCount:     s.EntryCount,
		ClosedBy:       s.ClosedBy,
		ClosedAt:       s.ClosedAt,
	}
}

// BalanceResponse reports a balance, optionally at a historical cutoff.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      *time.Time      `json:"asOf,omitempty"`
}

// PeriodSummaryResponse mirrors domain.PeriodSummary.
type PeriodSummaryResponse struct {
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
