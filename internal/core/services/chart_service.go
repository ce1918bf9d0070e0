package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/apperrors"
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
)

// chartService answers chart-of-accounts questions straight off the account
// store, so journal validation and the ledger always agree on what exists.
type chartService struct {
	accountRepo portsrepo.AccountReader
}

// NewChartService creates a chart-of-accounts view over the account store.
func NewChartService(accountRepo portsrepo.AccountReader) portssvc.ChartOfAccounts {
	return &chartService{accountRepo: accountRepo}
}

var _ portssvc.ChartOfAccounts = (*chartService)(nil)

func (s *chartService) ValidateAccount(ctx context.Context, organizationID, accountCode string) (bool, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, organizationID, accountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up account code %s: %w", accountCode, err)
	}
	return account.IsActive, nil
}

func (s *chartService) ListActiveAccountCodes(ctx context.Context, organizationID string) ([]string, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, organizationID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	codes := make([]string, 0, len(accounts))
	for _, a := range accounts {
		codes = append(codes, a.AccountCode)
	}
	return codes, nil
}
