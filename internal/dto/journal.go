package dto

import (
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJournalLineRequest is one line of a journal entry being created.
// Exactly one of Debit/Credit must be non-zero.
type CreateJournalLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateJournalRequest defines the data needed to create a journal entry.
type CreateJournalRequest struct {
	Date        time.Time                  `json:"date" binding:"required"`
	Description string                     `json:"description"`
	Lines       []CreateJournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// VoidJournalRequest voids a Draft or Approved journal entry.
type VoidJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// JournalLineResponse mirrors domain.JournalLine.
type JournalLineResponse struct {
	LineID        string          `json:"lineID"`
	LineNumber    int             `json:"lineNumber"`
	AccountCode   string          `json:"accountCode"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description"`
	PostedEntryID string          `json:"postedEntryID,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID      string                `json:"journalID"`
	OrganizationID string                `json:"organizationID"`
	EntryDate      time.Time             `json:"entryDate"`
	Description    string                `json:"description"`
	Status         domain.JournalStatus  `json:"status"`
	TotalDebits    decimal.Decimal       `json:"totalDebits"`
	TotalCredits   decimal.Decimal       `json:"totalCredits"`
	Lines          []JournalLineResponse `json:"lines,omitempty"`
	ApprovedBy     string                `json:"approvedBy,omitempty"`
	PostedAt       *time.Time            `json:"postedAt,omitempty"`
	VoidReason     string                `json:"voidReason,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
}

// ListJournalsParams carries pagination parameters for journal listing.
type ListJournalsParams struct {
	Limit     int
	NextToken *string
}

// ListJournalsResponse is a page of journals plus the next cursor.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain JournalLine to its response DTO.
func ToJournalLineResponse(l domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:        l.LineID,
		LineNumber:    l.LineNumber,
		AccountCode:   l.AccountCode,
		Debit:         l.Debit,
		Credit:        l.Credit,
		Description:   l.Description,
		PostedEntryID: l.PostedEntryID,
	}
}

// ToJournalResponse converts a domain JournalEntry to its response DTO.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	lines := make([]JournalLineResponse, len(j.Lines))
	for i, l := range j.Lines {
		lines[i] = ToJournalLineResponse(l)
	}
	return JournalResponse{
		JournalID:      j.JournalID,
		OrganizationID: j.OrganizationID,
		EntryDate:      j.EntryDate,
		Description:    j.Description,
		Status:         j.Status,
		TotalDebits:    j.TotalDebits(),
		TotalCredits:   j.TotalCredits(),
		Lines:          lines,
		ApprovedBy:     j.ApprovedBy,
		PostedAt:       j.PostedAt,
		VoidReason:     j.VoidReason,
		CreatedAt:      j.CreatedAt,
		CreatedBy:      j.CreatedBy,
	}
}

// PostingStatusResponse is the reconciliation view of a journal: its declared
// status against the per-line posting acknowledgements. A Posted journal with
// unacknowledged lines is a partially-posted anomaly.
type PostingStatusResponse struct {
	JournalID         string               `json:"journalID"`
	Status            domain.JournalStatus `json:"status"`
	TotalLines        int                  `json:"totalLines"`
	AcknowledgedLines int                  `json:"acknowledgedLines"`
	Consistent        bool                 `json:"consistent"`
	PendingLineIDs    []string             `json:"pendingLineIDs,omitempty"`
}
