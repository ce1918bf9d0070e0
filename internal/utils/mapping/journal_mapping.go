package mapping

import (
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/models"
)

// ToModelJournal converts a domain JournalEntry to a model JournalEntry
func ToModelJournal(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalID:      d.JournalID,
		OrganizationID: d.OrganizationID,
		EntryDate:      d.EntryDate,
		Description:    d.Description,
		Status:         string(d.Status),
		ApprovedBy:     strPtr(d.ApprovedBy),
		PostedAt:       d.PostedAt,
		VoidReason:     strPtr(d.VoidReason),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournal converts a model JournalEntry (without lines) to a domain JournalEntry
func ToDomainJournal(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalID:      m.JournalID,
		OrganizationID: m.OrganizationID,
		EntryDate:      m.EntryDate,
		Description:    m.Description,
		Status:         domain.JournalStatus(m.Status),
		ApprovedBy:     strVal(m.ApprovedBy),
		PostedAt:       m.PostedAt,
		VoidReason:     strVal(m.VoidReason),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:        d.LineID,
		JournalID:     d.JournalID,
		LineNumber:    d.LineNumber,
		AccountCode:   d.AccountCode,
		Debit:         d.Debit,
		Credit:        d.Credit,
		Description:   d.Description,
		PostedEntryID: strPtr(d.PostedEntryID),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:        m.LineID,
		JournalID:     m.JournalID,
		LineNumber:    m.LineNumber,
		AccountCode:   m.AccountCode,
		Debit:         m.Debit,
		Credit:        m.Credit,
		Description:   m.Description,
		PostedEntryID: strVal(m.PostedEntryID),
	}
}
