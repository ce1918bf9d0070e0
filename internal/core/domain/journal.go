package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus is the workflow state of a compound journal entry.
// Posting to the ledger is a one-way door: a Posted journal can never be
// voided, only undone by reversing the underlying account entries.
type JournalStatus string

const (
	JournalDraft    JournalStatus = "DRAFT"
	JournalApproved JournalStatus = "APPROVED"
	JournalPosted   JournalStatus = "POSTED"
	JournalVoided   JournalStatus = "VOIDED"
)

// JournalLine is one line of a balanced journal entry. Exactly one of
// Debit/Credit is non-zero and both are >= 0.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	JournalID   string          `json:"journalID"`
	LineNumber  int             `json:"lineNumber"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	// PostedEntryID records the per-account ledger entry acknowledged for this
	// line once the journal posts. Lines without it on a Posted journal mark a
	// partially-posted entry awaiting reconciliation.
	PostedEntryID string `json:"postedEntryID,omitempty"`
}

// IsDebit reports whether the line carries a debit amount.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the non-zero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// JournalEntry is one multi-line balanced transaction moving value between
// accounts. Invariant: sum of line debits equals sum of line credits and at
// least two lines exist.
type JournalEntry struct {
	JournalID      string        `json:"journalID"`
	OrganizationID string        `json:"organizationID"`
	EntryDate      time.Time     `json:"entryDate"`
	Description    string        `json:"description"`
	Status         JournalStatus `json:"status"`
	Lines          []JournalLine `json:"lines,omitempty"`
	ApprovedBy     string        `json:"approvedBy,omitempty"`
	PostedAt       *time.Time    `json:"postedAt,omitempty"`
	VoidReason     string        `json:"voidReason,omitempty"`
	AuditFields
}

// TotalDebits sums the debit side of all lines.
func (j JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredits sums the credit side of all lines.
func (j JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Lines {
		total = total.Add(l.Credit)
	}
	return total
}
