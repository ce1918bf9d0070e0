package repositories

// RepositoryProvider bundles all repository facades for dependency injection
// into the service container.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	JournalRepo     JournalRepositoryFacade
	FiscalYearRepo  FiscalYearRepositoryFacade
	IdempotencyRepo IdempotencyKeyRepository
}
