package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry represents a compound journal entry row.
type JournalEntry struct {
	JournalID      string     `db:"journal_id"`
	OrganizationID string     `db:"organization_id"`
	EntryDate      time.Time  `db:"entry_date"`
	Description    string     `db:"description"`
	Status         string     `db:"status"`
	ApprovedBy     *string    `db:"approved_by"`
	PostedAt       *time.Time `db:"posted_at"`
	VoidReason     *string    `db:"void_reason"`
	AuditFields
}

// JournalLine represents one line row of a journal entry.
type JournalLine struct {
	LineID        string          `db:"line_id"`
	JournalID     string          `db:"journal_id"`
	LineNumber    int             `db:"line_number"`
	AccountCode   string          `db:"account_code"`
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
	Description   string          `db:"description"`
	PostedEntryID *string         `db:"posted_entry_id"`
}
