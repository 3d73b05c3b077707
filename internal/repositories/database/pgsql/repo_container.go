package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx-backed repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		WineRepo:        newPgxWineRepository(pool),
		ReceiptRepo:     newPgxReceiptRepository(pool),
		LocationRepo:    newPgxLocationRepository(pool),
		ParticipantRepo: newPgxParticipantRepository(pool),
		StockRepo:       newPgxStockRepository(pool),
		OrderRepo:       newPgxOrderRepository(pool),
		AuditRepo:       newPgxAuditRepository(pool),
	}
}
