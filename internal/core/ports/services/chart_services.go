package services

import "context"

// ChartOfAccounts is the external collaborator supplying the active-account
// set. The core only consumes code validation and the active enumeration,
// used to validate journal lines and to drive year-end close fan-out.
type ChartOfAccounts interface {
	// ValidateAccount reports whether the code names an active account.
	ValidateAccount(ctx context.Context, organizationID, accountCode string) (bool, error)

	// ListActiveAccountCodes enumerates the active account codes.
	ListActiveAccountCodes(ctx context.Context, organizationID string) ([]string, error)
}
