package pgsql

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	"github.com/kelderman/wine_cellar_app/internal/models"
	"github.com/kelderman/wine_cellar_app/internal/utils/mapping"
	"github.com/kelderman/wine_cellar_app/internal/utils/pagination"
)

type PgxStockRepository struct {
	BaseRepository
}

// newPgxStockRepository creates a new repository for the stock projection and
// the movement ledger.
func newPgxStockRepository(pool *pgxpool.Pool) portsrepo.StockRepositoryWithTx {
	return &PgxStockRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.StockRepositoryWithTx = (*PgxStockRepository)(nil)

const stockColumns = `stock_id, wine_id, participant_id, receipt_id, location_id, bin_id, quantity, reserved, created_at, created_by, last_updated_at, last_updated_by`

func scanStockRow(row pgx.Row) (models.CellarStock, error) {
	var s models.CellarStock
	err := row.Scan(
		&s.StockID,
		&s.WineID,
		&s.ParticipantID,
		&s.ReceiptID,
		&s.LocationID,
		&s.BinID,
		&s.Quantity,
		&s.Reserved,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

// FindStockByKey retrieves the projection row for one (receipt, location, bin) key.
func (r *PgxStockRepository) FindStockByKey(ctx context.Context, key domain.StockKey) (*domain.CellarStock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM cellar_stock
		WHERE receipt_id = $1 AND location_id = $2 AND bin_id = $3;
	`
	s, err := scanStockRow(r.Pool.QueryRow(ctx, query, key.ReceiptID, key.LocationID, key.BinID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find stock by key", err)
	}
	stock := mapping.ToDomainStock(s)
	return &stock, nil
}

func (r *PgxStockRepository) listStock(ctx context.Context, where string, arg any) ([]domain.CellarStock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM cellar_stock
		WHERE ` + where + `
		ORDER BY location_id, bin_id, receipt_id;
	`
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query stock rows", err)
	}
	defer rows.Close()

	stock := []models.CellarStock{}
	for rows.Next() {
		s, err := scanStockRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan stock row", err)
		}
		stock = append(stock, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating stock rows", err)
	}
	return mapping.ToDomainStockSlice(stock), nil
}

// ListStockByLocation retrieves all projection rows at a location.
func (r *PgxStockRepository) ListStockByLocation(ctx context.Context, locationID string) ([]domain.CellarStock, error) {
	return r.listStock(ctx, "location_id = $1", locationID)
}

// ListStockByReceipt retrieves all projection rows derived from a receipt.
func (r *PgxStockRepository) ListStockByReceipt(ctx context.Context, receiptID string) ([]domain.CellarStock, error) {
	return r.listStock(ctx, "receipt_id = $1", receiptID)
}

// ListStockByWine retrieves all projection rows for a wine across its receipts.
func (r *PgxStockRepository) ListStockByWine(ctx context.Context, wineID string) ([]domain.CellarStock, error) {
	return r.listStock(ctx, "wine_id = $1", wineID)
}

// SumOnHandByBin returns the total on-hand quantity per bin at a location.
func (r *PgxStockRepository) SumOnHandByBin(ctx context.Context, locationID string) (map[string]int64, error) {
	query := `
		SELECT bin_id, COALESCE(SUM(quantity), 0)
		FROM cellar_stock
		WHERE location_id = $1
		GROUP BY bin_id;
	`
	rows, err := r.Pool.Query(ctx, query, locationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to total stock per bin for location "+locationID, err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var binID string
		var total int64
		if err := rows.Scan(&binID, &total); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bin total", err)
		}
		totals[binID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bin totals", err)
	}
	return totals, nil
}

const movementColumns = `movement_id, receipt_id, location_id, bin_id, direction, cause, movement_date, quantity, description, created_at, created_by, last_updated_at, last_updated_by`

func scanMovementRow(row pgx.Row) (models.StockMovement, error) {
	var m models.StockMovement
	err := row.Scan(
		&m.MovementID,
		&m.ReceiptID,
		&m.LocationID,
		&m.BinID,
		&m.Direction,
		&m.Cause,
		&m.MovementDate,
		&m.Quantity,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindMovementByID retrieves a single movement.
func (r *PgxStockRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE movement_id = $1;
	`
	m, err := scanMovementRow(r.Pool.QueryRow(ctx, query, movementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find movement by ID "+movementID, err)
	}
	movement := mapping.ToDomainMovement(m)
	return &movement, nil
}

// listMovements runs a keyset-paginated movement query ordered by movement
// date descending with creation time as tie-breaker, the same cursor scheme
// the pagination token encodes.
func (r *PgxStockRepository) listMovements(ctx context.Context, where string, arg any, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE ` + where + `
	`
	orderByClause := `ORDER BY movement_date DESC, created_at DESC`

	args := []interface{}{arg}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastMovementDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (movement_date, created_at) < ($2, $3) `
		args = append(args, lastMovementDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query movements", err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		m, err := scanMovementRow(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan movement row", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating movement rows", err)
	}

	var token *string
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		t := pagination.EncodeToken(last.MovementDate, last.CreatedAt)
		token = &t
	}
	return mapping.ToDomainMovementSlice(movements), token, nil
}

// ListMovementsByReceipt retrieves a keyset-paginated list of movements for a receipt.
func (r *PgxStockRepository) ListMovementsByReceipt(ctx context.Context, receiptID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	return r.listMovements(ctx, "receipt_id = $1", receiptID, limit, nextToken)
}

// ListMovementsByLocation retrieves a keyset-paginated list of movements at a location.
func (r *PgxStockRepository) ListMovementsByLocation(ctx context.Context, locationID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	return r.listMovements(ctx, "location_id = $1", locationID, limit, nextToken)
}

// FindStockForUpdate reads and row-locks the projection rows for the given
// keys. Keys are locked in a deterministic order so concurrent multi-key
// transactions cannot deadlock. Keys without a row are absent from the result.
func (r *PgxStockRepository) FindStockForUpdate(ctx context.Context, tx pgx.Tx, keys []domain.StockKey) (map[domain.StockKey]domain.CellarStock, error) {
	sorted := make([]domain.StockKey, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ReceiptID != b.ReceiptID {
			return a.ReceiptID < b.ReceiptID
		}
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		return a.BinID < b.BinID
	})

	query := `
		SELECT ` + stockColumns + `
		FROM cellar_stock
		WHERE receipt_id = $1 AND location_id = $2 AND bin_id = $3
		FOR UPDATE;
	`
	result := make(map[domain.StockKey]domain.CellarStock, len(sorted))
	for _, key := range sorted {
		s, err := scanStockRow(tx.QueryRow(ctx, query, key.ReceiptID, key.LocationID, key.BinID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, apperrors.NewAppError(500, "failed to lock stock row", err)
		}
		result[key] = mapping.ToDomainStock(s)
	}
	return result, nil
}

// UpsertStockInTx inserts or updates one projection row. The (receipt,
// location, bin) key is unique, so replays converge on the same row.
func (r *PgxStockRepository) UpsertStockInTx(ctx context.Context, tx pgx.Tx, stock domain.CellarStock) error {
	m := mapping.ToModelStock(stock)
	query := `
		INSERT INTO cellar_stock (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (receipt_id, location_id, bin_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			reserved = EXCLUDED.reserved,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := tx.Exec(ctx, query,
		m.StockID,
		m.WineID,
		m.ParticipantID,
		m.ReceiptID,
		m.LocationID,
		m.BinID,
		m.Quantity,
		m.Reserved,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert stock row "+m.StockID, err)
	}
	return nil
}

// DeleteStockInTx removes one projection row.
func (r *PgxStockRepository) DeleteStockInTx(ctx context.Context, tx pgx.Tx, stockID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM cellar_stock WHERE stock_id = $1;`, stockID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete stock row "+stockID, err)
	}
	return nil
}

// SaveMovementInTx inserts a ledger entry.
func (r *PgxStockRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	m := mapping.ToModelMovement(movement)
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, query,
		m.MovementID,
		m.ReceiptID,
		m.LocationID,
		m.BinID,
		m.Direction,
		m.Cause,
		m.MovementDate,
		m.Quantity,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert movement "+m.MovementID, err)
	}
	return nil
}

// UpdateMovementInTx rewrites a ledger entry's mutable fields. Direction and
// receipt are immutable on purpose.
func (r *PgxStockRepository) UpdateMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	m := mapping.ToModelMovement(movement)
	query := `
		UPDATE stock_movements SET
			location_id = $2,
			bin_id = $3,
			movement_date = $4,
			quantity = $5,
			description = $6,
			last_updated_at = $7,
			last_updated_by = $8
		WHERE movement_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.MovementID,
		m.LocationID,
		m.BinID,
		m.MovementDate,
		m.Quantity,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update movement "+m.MovementID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteMovementInTx removes a ledger entry.
func (r *PgxStockRepository) DeleteMovementInTx(ctx context.Context, tx pgx.Tx, movementID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM stock_movements WHERE movement_id = $1;`, movementID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete movement "+movementID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindReceiptRefInTx resolves the wine and participant a receipt points at.
func (r *PgxStockRepository) FindReceiptRefInTx(ctx context.Context, tx pgx.Tx, receiptID string) (string, string, error) {
	var wineID, participantID string
	err := tx.QueryRow(ctx, `SELECT wine_id, participant_id FROM receipts WHERE receipt_id = $1;`, receiptID).
		Scan(&wineID, &participantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", apperrors.ErrNotFound
		}
		return "", "", apperrors.NewAppError(500, "failed to resolve receipt "+receiptID, err)
	}
	return wineID, participantID, nil
}

// SumStockForWineInTx totals on-hand quantity across all of a wine's rows.
func (r *PgxStockRepository) SumStockForWineInTx(ctx context.Context, tx pgx.Tx, wineID string) (int64, error) {
	var total int64
	err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM cellar_stock WHERE wine_id = $1;`, wineID).
		Scan(&total)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to total stock for wine "+wineID, err)
	}
	return total, nil
}

// SetWineClosedInTx flips the wine's closed flag.
func (r *PgxStockRepository) SetWineClosedInTx(ctx context.Context, tx pgx.Tx, wineID string, closed bool, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE wines SET closed = $2, last_updated_at = $3, last_updated_by = $4
		WHERE wine_id = $1 AND closed IS DISTINCT FROM $2;
	`
	if _, err := tx.Exec(ctx, query, wineID, closed, updatedAt, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to update closed flag for wine "+wineID, err)
	}
	return nil
}
