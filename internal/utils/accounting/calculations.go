package accounting

import (
	"fmt"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta applies the normal-balance convention to a posting amount.
// A posting whose side matches the account's normal side increases the
// balance; the opposite side decreases it.
//
// DEBIT  to ASSET/EXPENSE            -> +amount
// CREDIT to ASSET/EXPENSE            -> -amount
// DEBIT  to LIABILITY/EQUITY/REVENUE -> -amount
// CREDIT to LIABILITY/EQUITY/REVENUE -> +amount
func SignedDelta(side domain.BalanceSide, amount decimal.Decimal, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
	if side == accountType.NormalSide() {
		return amount, nil
	}
	return amount.Neg(), nil
}

// EntrySide classifies a signed balance delta back onto the debit or credit
// side for an account type. It is the inverse of SignedDelta and is used when
// summarizing a period: an Adjustment or Reversal entry lands on the side its
// balance effect economically belongs to.
func EntrySide(delta decimal.Decimal, accountType domain.AccountType) domain.BalanceSide {
	normal := accountType.NormalSide()
	if delta.IsNegative() {
		if normal == domain.DebitSide {
			return domain.CreditSide
		}
		return domain.DebitSide
	}
	return normal
}

// ValidateBalancedLines checks the double-entry invariant over journal lines:
// at least two lines, non-negative amounts, exactly one non-zero side per
// line, and total debits equal to total credits.
func ValidateBalancedLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for i, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("line %d: amounts must not be negative", i+1)
		}
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet == creditSet {
			return fmt.Errorf("line %d: exactly one of debit or credit must be non-zero", i+1)
		}
		totalDebits = totalDebits.Add(line.Debit)
		totalCredits = totalCredits.Add(line.Credit)
	}

	if !totalDebits.Equal(totalCredits) {
		return fmt.Errorf("debits must equal credits: debits sum is %s and credits sum is %s",
			totalDebits.String(), totalCredits.String())
	}
	return nil
}
