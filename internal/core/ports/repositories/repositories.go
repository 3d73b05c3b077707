package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	WineRepo        WineRepository
	ReceiptRepo     ReceiptRepository
	LocationRepo    LocationRepository
	ParticipantRepo ParticipantRepository
	StockRepo       StockRepositoryWithTx
	OrderRepo       OrderRepositoryWithTx
	AuditRepo       AuditRepository
}
