package services

import (
	portsrepo "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/repositories"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/config"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/worker"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. All services mutate through the shared
// dispatcher so each entity has exactly one writer at a time.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, dispatcher *worker.Dispatcher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.AccountRepo, dispatcher)
	container.Chart = NewChartService(repos.AccountRepo)
	container.FiscalYear = NewPeriodService(repos.FiscalYearRepo, dispatcher)
	container.Journal = NewJournalService(repos.JournalRepo, container.Ledger, container.FiscalYear, container.Chart, dispatcher)
	container.Idempotency = NewIdempotencyService(repos.IdempotencyRepo, cfg.IdempotencyKeyTTL)

	return container
}
