package repositories

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// AuditRepository aggregates the ledger and the open order lines against the
// stock projection. Read-only by construction.
type AuditRepository interface {
	// AggregateByLocation recomputes expected totals for every key at a location.
	AggregateByLocation(ctx context.Context, locationID string) ([]domain.StockAuditRow, error)

	// AggregateByReceipt recomputes expected totals for every key of a receipt.
	AggregateByReceipt(ctx context.Context, receiptID string) ([]domain.StockAuditRow, error)

	// AggregateAll recomputes expected totals for every key known to the
	// projection, the ledger or the open order lines.
	AggregateAll(ctx context.Context) ([]domain.StockAuditRow, error)
}
