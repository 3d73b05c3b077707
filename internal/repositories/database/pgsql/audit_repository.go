package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new read-only repository for consistency checks.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// auditQuery recomputes, per (receipt, location, bin) key, the ledger totals
// and the open order-line demand next to the projected row. Keys are the
// union of all three sources so orphaned projection rows and keys the
// projection lost both show up.
const auditQuery = `
	WITH ledger AS (
		SELECT receipt_id, location_id, bin_id,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0) AS total_in,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0) AS total_out
		FROM stock_movements
		GROUP BY receipt_id, location_id, bin_id
	), demand AS (
		SELECT receipt_id, location_id, bin_id,
			SUM(COALESCE(quantity_override, quantity)) AS open_demand
		FROM order_lines
		WHERE status = 'OPEN'
		GROUP BY receipt_id, location_id, bin_id
	), keys AS (
		SELECT receipt_id, location_id, bin_id FROM cellar_stock
		UNION
		SELECT receipt_id, location_id, bin_id FROM ledger
		UNION
		SELECT receipt_id, location_id, bin_id FROM demand
	)
	SELECT k.receipt_id, k.location_id, k.bin_id,
		COALESCE(s.quantity, 0) AS on_hand,
		COALESCE(l.total_in, 0) AS total_in,
		COALESCE(l.total_out, 0) AS total_out,
		COALESCE(s.reserved, 0) AS reserved,
		COALESCE(d.open_demand, 0) AS open_demand
	FROM keys k
	LEFT JOIN cellar_stock s USING (receipt_id, location_id, bin_id)
	LEFT JOIN ledger l USING (receipt_id, location_id, bin_id)
	LEFT JOIN demand d USING (receipt_id, location_id, bin_id)
`

func (r *PgxAuditRepository) aggregate(ctx context.Context, filter string, args ...any) ([]domain.StockAuditRow, error) {
	query := auditQuery + filter + ` ORDER BY k.location_id, k.bin_id, k.receipt_id;`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to run stock audit query", err)
	}
	defer rows.Close()

	result := []domain.StockAuditRow{}
	for rows.Next() {
		var row domain.StockAuditRow
		err := rows.Scan(
			&row.ReceiptID,
			&row.LocationID,
			&row.BinID,
			&row.OnHand,
			&row.TotalIn,
			&row.TotalOut,
			&row.Reserved,
			&row.OpenDemand,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan stock audit row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating stock audit rows", err)
	}
	return result, nil
}

// AggregateByLocation recomputes expected totals for every key at a location.
func (r *PgxAuditRepository) AggregateByLocation(ctx context.Context, locationID string) ([]domain.StockAuditRow, error) {
	return r.aggregate(ctx, ` WHERE k.location_id = $1`, locationID)
}

// AggregateByReceipt recomputes expected totals for every key of a receipt.
func (r *PgxAuditRepository) AggregateByReceipt(ctx context.Context, receiptID string) ([]domain.StockAuditRow, error) {
	return r.aggregate(ctx, ` WHERE k.receipt_id = $1`, receiptID)
}

// AggregateAll recomputes expected totals for every known key.
func (r *PgxAuditRepository) AggregateAll(ctx context.Context) ([]domain.StockAuditRow, error) {
	return r.aggregate(ctx, ``)
}
