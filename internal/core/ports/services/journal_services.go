package services

import (
	"context"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
)

// JournalSvcFacade drives the journal-entry workflow:
// Draft -> Approved -> Posted, or Draft/Approved -> Voided.
type JournalSvcFacade interface {
	// CreateJournal validates the double-entry invariant and stores a Draft.
	CreateJournal(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error)

	// ApproveJournal transitions Draft -> Approved.
	ApproveJournal(ctx context.Context, organizationID, journalID string, approverUserID string) (*domain.JournalEntry, error)

	// PostJournal fans the lines out to the affected account ledgers in line
	// order and marks the journal Posted. Per-account postings commit
	// independently; a crash mid-fan-out leaves a partially-posted journal
	// detectable via GetPostingStatus.
	PostJournal(ctx context.Context, organizationID, journalID string, performedBy string) (*domain.JournalEntry, error)

	// VoidJournal cancels a Draft or Approved journal.
	VoidJournal(ctx context.Context, organizationID, journalID string, req dto.VoidJournalRequest, performedBy string) (*domain.JournalEntry, error)

	GetJournal(ctx context.Context, organizationID, journalID string) (*domain.JournalEntry, error)
	ListJournals(ctx context.Context, organizationID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// GetPostingStatus is the reconciliation query comparing the journal's
	// declared status to its acknowledged line postings.
	GetPostingStatus(ctx context.Context, organizationID, journalID string) (*dto.PostingStatusResponse, error)
}
