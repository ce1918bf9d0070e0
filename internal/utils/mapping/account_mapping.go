package mapping

import (
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		OrganizationID:  d.OrganizationID,
		AccountCode:     d.AccountCode,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		CurrencyCode:    d.CurrencyCode,
		Balance:         d.Balance,
		IsActive:        d.IsActive,
		IsSystemAccount: d.IsSystemAccount,
		CurrentYear:     d.CurrentYear,
		CurrentMonth:    d.CurrentMonth,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		OrganizationID:  m.OrganizationID,
		AccountCode:     m.AccountCode,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		CurrencyCode:    m.CurrencyCode,
		Balance:         m.Balance,
		IsActive:        m.IsActive,
		IsSystemAccount: m.IsSystemAccount,
		CurrentYear:     m.CurrentYear,
		CurrentMonth:    m.CurrentMonth,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAccountEntry converts a domain LedgerEntry to a model AccountEntry
func ToModelAccountEntry(d domain.LedgerEntry) models.AccountEntry {
	return models.AccountEntry{
		EntryID:         d.EntryID,
		AccountID:       d.AccountID,
		EntryType:       string(d.EntryType),
		Amount:          d.Amount,
		Delta:           d.Delta,
		BalanceAfter:    d.BalanceAfter,
		Description:     d.Description,
		PerformedBy:     d.PerformedBy,
		Status:          string(d.Status),
		ReferenceType:   strPtr(d.ReferenceType),
		ReferenceID:     strPtr(d.ReferenceID),
		ReversalEntryID: strPtr(d.ReversalEntryID),
		ReversedEntryID: strPtr(d.ReversedEntryID),
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainAccountEntry converts a model AccountEntry to a domain LedgerEntry
func ToDomainAccountEntry(m models.AccountEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:         m.EntryID,
		AccountID:       m.AccountID,
		EntryType:       domain.EntryType(m.EntryType),
		Amount:          m.Amount,
		Delta:           m.Delta,
		BalanceAfter:    m.BalanceAfter,
		Description:     m.Description,
		PerformedBy:     m.PerformedBy,
		Status:          domain.EntryStatus(m.Status),
		ReferenceType:   strVal(m.ReferenceType),
		ReferenceID:     strVal(m.ReferenceID),
		ReversalEntryID: strVal(m.ReversalEntryID),
		ReversedEntryID: strVal(m.ReversedEntryID),
		CreatedAt:       m.CreatedAt,
	}
}

// ToModelPeriodSummary converts a domain PeriodSummary to a model AccountPeriodSummary
func ToModelPeriodSummary(d domain.PeriodSummary) models.AccountPeriodSummary {
	return models.AccountPeriodSummary{
		AccountID:      d.AccountID,
		Year:           d.Year,
		Month:          d.Month,
		TotalDebits:    d.TotalDebits,
		TotalCredits:   d.TotalCredits,
		ClosingBalance: d.ClosingBalance,
		EntryCount:     d.EntryCount,
		ClosedBy:       d.ClosedBy,
		ClosedAt:       d.ClosedAt,
	}
}

// ToDomainPeriodSummary converts a model AccountPeriodSummary to a domain PeriodSummary
func ToDomainPeriodSummary(m models.AccountPeriodSummary) domain.PeriodSummary {
	return domain.PeriodSummary{
		AccountID:      m.AccountID,
		Year:           m.Year,
		Month:          m.Month,
		TotalDebits:    m.TotalDebits,
		TotalCredits:   m.TotalCredits,
		ClosingBalance: m.ClosingBalance,
		EntryCount:     m.EntryCount,
		ClosedBy:       m.ClosedBy,
		ClosedAt:       m.ClosedAt,
	}
}
