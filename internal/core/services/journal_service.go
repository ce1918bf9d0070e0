package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/worker"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/utils/accounting"
)

var (
	ErrJournalNotDraft    = errors.New("journal entry must be Draft to approve")
	ErrJournalNotApproved = errors.New("journal entry must be Approved to post")
	ErrVoidPosted         = errors.New("cannot void a Posted entry")
	ErrJournalVoided      = errors.New("journal entry is already voided")
	ErrUnknownAccountCode = errors.New("unknown or inactive account code")
)

// journalService sequences multi-line balanced entries through the
// Draft -> Approved -> Posted workflow and fans postings out to the
// affected account ledgers.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	ledgerSvc   portssvc.LedgerSvcFacade
	periodSvc   portssvc.PeriodPostabilityChecker
	chart       portssvc.ChartOfAccounts
	dispatcher  *worker.Dispatcher
}

// NewJournalService creates a new journal workflow service.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	periodSvc portssvc.PeriodPostabilityChecker,
	chart portssvc.ChartOfAccounts,
	dispatcher *worker.Dispatcher,
) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		ledgerSvc:   ledgerSvc,
		periodSvc:   periodSvc,
		chart:       chart,
		dispatcher:  dispatcher,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func journalKey(journalID string) string {
	return "journal:" + journalID
}

// CreateJournal validates the double-entry invariant and stores the entry as
// a Draft. Line account codes are checked against the chart of accounts.
func (s *journalService) CreateJournal(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	journalID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			JournalID:   journalID,
			LineNumber:  i + 1,
			AccountCode: lineReq.AccountCode,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			Description: lineReq.Description,
		}
	}

	if err := accounting.ValidateBalancedLines(lines); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidState, err)
	}

	seen := make(map[string]bool)
	for _, line := range lines {
		if seen[line.AccountCode] {
			continue
		}
		seen[line.AccountCode] = true
		valid, err := s.chart.ValidateAccount(ctx, organizationID, line.AccountCode)
		if err != nil {
			logger.Error("Chart of accounts validation failed", slog.String("account_code", line.AccountCode), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to validate account %s: %w", line.AccountCode, err)
		}
		if !valid {
			return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, ErrUnknownAccountCode, line.AccountCode)
		}
	}

	journal := domain.JournalEntry{
		JournalID:      journalID,
		OrganizationID: organizationID,
		EntryDate:      req.Date,
		Description:    req.Description,
		Status:         domain.JournalDraft,
		Lines:          lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, journal); err != nil {
		logger.Error("Failed to save journal entry", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Journal entry created", slog.String("journal_id", journalID), slog.String("organization_id", organizationID))
	return &journal, nil
}

func (s *journalService) loadJournal(ctx context.Context, organizationID, journalID string) (*domain.JournalEntry, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", journalID, err)
	}
	if journal.OrganizationID != organizationID {
		// Obscure existence across tenants.
		return nil, fmt.Errorf("journal entry %s: %w", journalID, apperrors.ErrNotFound)
	}
	return journal, nil
}

// ApproveJournal transitions Draft -> Approved.
func (s *journalService) ApproveJournal(ctx context.Context, organizationID, journalID string, approverUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var approved *domain.JournalEntry
	err := s.dispatcher.Do(ctx, journalKey(journalID), func() error {
		journal, err := s.loadJournal(ctx, organizationID, journalID)
		if err != nil {
			return err
		}
		if journal.Status != domain.JournalDraft {
			return fmt.Errorf("%w: %s (is %s)", apperrors.ErrInvalidState, ErrJournalNotDraft, journal.Status)
		}

		now := time.Now().UTC()
		journal.Status = domain.JournalApproved
		journal.ApprovedBy = approverUserID
		journal.LastUpdatedAt = now
		journal.LastUpdatedBy = approverUserID

		if err := s.journalRepo.UpdateJournalStatus(ctx, *journal); err != nil {
			return fmt.Errorf("failed to update journal entry: %w", err)
		}
		approved = journal
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Journal entry approved", slog.String("journal_id", journalID), slog.String("approved_by", approverUserID))
	return approved, nil
}

// PostJournal fans the lines out to the affected account ledgers in line
// order. Each per-account posting commits independently; if the fan-out dies
// part-way the journal stays Approved with the completed lines acknowledged,
// which GetPostingStatus surfaces for reconciliation.
func (s *journalService) PostJournal(ctx context.Context, organizationID, journalID string, performedBy string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var posted *domain.JournalEntry
	err := s.dispatcher.Do(ctx, journalKey(journalID), func() error {
		journal, err := s.loadJournal(ctx, organizationID, journalID)
		if err != nil {
			return err
		}
		if journal.Status != domain.JournalApproved {
			return fmt.Errorf("%w: %s (is %s)", apperrors.ErrInvalidState, ErrJournalNotApproved, journal.Status)
		}

		postable, reason, err := s.periodSvc.CanPostToDate(ctx, organizationID, journal.EntryDate)
		if err != nil {
			return fmt.Errorf("failed to check period postability: %w", err)
		}
		if !postable {
			return fmt.Errorf("%w: cannot post to %s: %s", apperrors.ErrInvalidState, journal.EntryDate.Format("2006-01-02"), reason)
		}

		for i := range journal.Lines {
			line := &journal.Lines[i]
			if line.PostedEntryID != "" {
				// already acknowledged by an earlier, interrupted attempt
				continue
			}

			posting := dto.PostingRequest{
				Amount:        line.Amount(),
				Description:   line.Description,
				ReferenceType: "journal_entry",
				ReferenceID:   journal.JournalID,
			}
			var entry *domain.LedgerEntry
			if line.IsDebit() {
				entry, err = s.ledgerSvc.PostDebit(ctx, organizationID, line.AccountCode, posting, performedBy)
			} else {
				entry, err = s.ledgerSvc.PostCredit(ctx, organizationID, line.AccountCode, posting, performedBy)
			}
			if err != nil {
				logger.Error("Journal fan-out halted; entry partially posted",
					slog.String("journal_id", journalID),
					slog.Int("line_number", line.LineNumber),
					slog.String("account_code", line.AccountCode),
					slog.String("error", err.Error()))
				return fmt.Errorf("posting line %d to account %s: %w", line.LineNumber, line.AccountCode, err)
			}

			line.PostedEntryID = entry.EntryID
			if err := s.journalRepo.MarkLinePosted(ctx, journal.JournalID, line.LineID, entry.EntryID); err != nil {
				return fmt.Errorf("failed to acknowledge line %d: %w", line.LineNumber, err)
			}
		}

		now := time.Now().UTC()
		journal.Status = domain.JournalPosted
		journal.PostedAt = &now
		journal.LastUpdatedAt = now
		journal.LastUpdatedBy = performedBy

		if err := s.journalRepo.UpdateJournalStatus(ctx, *journal); err != nil {
			return fmt.Errorf("failed to update journal entry: %w", err)
		}
		posted = journal
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Journal entry posted", slog.String("journal_id", journalID), slog.Int("lines", len(posted.Lines)))
	return posted, nil
}

// VoidJournal cancels a Draft or Approved journal. Posting to the ledger is
// a one-way door: a Posted entry can only be undone by reversing the
// underlying account entries individually.
func (s *journalService) VoidJournal(ctx context.Context, organizationID, journalID string, req dto.VoidJournalRequest, performedBy string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var voided *domain.JournalEntry
	err := s.dispatcher.Do(ctx, journalKey(journalID), func() error {
		journal, err := s.loadJournal(ctx, organizationID, journalID)
		if err != nil {
			return err
		}
		switch journal.Status {
		case domain.JournalPosted:
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrVoidPosted)
		case domain.JournalVoided:
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrJournalVoided)
		}

		now := time.Now().UTC()
		journal.Status = domain.JournalVoided
		journal.VoidReason = req.Reason
		journal.LastUpdatedAt = now
		journal.LastUpdatedBy = performedBy

		if err := s.journalRepo.UpdateJournalStatus(ctx, *journal); err != nil {
			return fmt.Errorf("failed to update journal entry: %w", err)
		}
		voided = journal
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Journal entry voided", slog.String("journal_id", journalID), slog.String("reason", req.Reason))
	return voided, nil
}

func (s *journalService) GetJournal(ctx context.Context, organizationID, journalID string) (*domain.JournalEntry, error) {
	return s.loadJournal(ctx, organizationID, journalID)
}

func (s *journalService) ListJournals(ctx context.Context, organizationID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	journals, nextToken, err := s.journalRepo.ListJournals(ctx, organizationID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	responses := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		responses[i] = dto.ToJournalResponse(&journals[i])
	}
	return &dto.ListJournalsResponse{Journals: responses, NextToken: nextToken}, nil
}

// GetPostingStatus compares the journal's declared status to its per-line
// acknowledgements. Consistent means: Posted with every line acknowledged,
// or not Posted with no line acknowledged.
func (s *journalService) GetPostingStatus(ctx context.Context, organizationID, journalID string) (*dto.PostingStatusResponse, error) {
	journal, err := s.loadJournal(ctx, organizationID, journalID)
	if err != nil {
		return nil, err
	}

	acknowledged := 0
	var pending []string
	for _, line := range journal.Lines {
		if line.PostedEntryID != "" {
			acknowledged++
		} else {
			pending = append(pending, line.LineID)
		}
	}

	consistent := true
	if journal.Status == domain.JournalPosted {
		consistent = acknowledged == len(journal.Lines)
	} else {
		consistent = acknowledged == 0
	}

	resp := &dto.PostingStatusResponse{
		JournalID:         journal.JournalID,
		Status:            journal.Status,
		TotalLines:        len(journal.Lines),
		AcknowledgedLines: acknowledged,
		Consistent:        consistent,
	}
	if !consistent {
		resp.PendingLineIDs = pending
	}
	return resp, nil
}
