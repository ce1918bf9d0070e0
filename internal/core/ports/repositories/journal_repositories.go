package repositories

import (
	"context"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
)

// JournalReader defines read operations for journal entries.
type JournalReader interface {
	// FindJournalByID retrieves a journal entry with its lines.
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournals retrieves a page of journal entries for an organization,
	// newest first. nextToken is an opaque cursor; nil starts from the top.
	ListJournals(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveJournal persists a new journal entry and its lines in one transaction.
	SaveJournal(ctx context.Context, journal domain.JournalEntry) error

	// UpdateJournalStatus updates the workflow fields of a journal entry.
	UpdateJournalStatus(ctx context.Context, journal domain.JournalEntry) error

	// MarkLinePosted records the per-account entry acknowledged for a line.
	MarkLinePosted(ctx context.Context, journalID string, lineID string, postedEntryID string) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
