package pgsql

import (
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/persistence"
)

// NewRepositoryProvider wires all pgsql repositories over one pool.
func NewRepositoryProvider(db persistence.TxPool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(db),
		JournalRepo:     newPgxJournalRepository(db),
		FiscalYearRepo:  newPgxFiscalYearRepository(db),
		IdempotencyRepo: newPgxIdempotencyRepository(db),
	}
}
