package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	"github.com/kelderman/wine_cellar_app/internal/models"
	"github.com/kelderman/wine_cellar_app/internal/utils/mapping"
)

type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for orders and order lines.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepositoryWithTx {
	return &PgxOrderRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.OrderRepositoryWithTx = (*PgxOrderRepository)(nil)

const orderColumns = `order_id, participant_id, location_id, order_date, closed_date, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanOrderRow(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.OrderID,
		&o.ParticipantID,
		&o.LocationID,
		&o.OrderDate,
		&o.ClosedDate,
		&o.Notes,
		&o.CreatedAt,
		&o.CreatedBy,
		&o.LastUpdatedAt,
		&o.LastUpdatedBy,
	)
	return o, err
}

const lineColumns = `line_id, order_id, receipt_id, location_id, bin_id, quantity, quantity_override, collected, status, created_at, created_by, last_updated_at, last_updated_by`

func scanLineRow(row pgx.Row) (models.OrderLine, error) {
	var l models.OrderLine
	err := row.Scan(
		&l.LineID,
		&l.OrderID,
		&l.ReceiptID,
		&l.LocationID,
		&l.BinID,
		&l.Quantity,
		&l.QuantityOverride,
		&l.Collected,
		&l.Status,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	return l, err
}

// FindOrderByID retrieves an order header.
func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1;`
	o, err := scanOrderRow(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find order by ID "+orderID, err)
	}
	order := mapping.ToDomainOrder(o)
	return &order, nil
}

// FindOrderWithLines retrieves an order header with all its lines populated.
func (r *PgxOrderRepository) FindOrderWithLines(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := r.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := r.ListLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

// ListOrders retrieves orders, optionally filtered by participant. Closed
// orders are hidden unless asked for.
func (r *PgxOrderRepository) ListOrders(ctx context.Context, participantID *string, includeClosed bool) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ($1::text IS NULL OR participant_id = $1)`
	if !includeClosed {
		query += ` AND closed_date IS NULL`
	}
	query += ` ORDER BY order_date DESC, created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, participantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query orders", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan order row", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating order rows", err)
	}
	return mapping.ToDomainOrderSlice(orders), nil
}

// FindOrderLineByID retrieves a single order line.
func (r *PgxOrderRepository) FindOrderLineByID(ctx context.Context, lineID string) (*domain.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE line_id = $1;`
	l, err := scanLineRow(r.Pool.QueryRow(ctx, query, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find order line by ID "+lineID, err)
	}
	line := mapping.ToDomainOrderLine(l)
	return &line, nil
}

// ListLinesByOrder retrieves all lines of an order.
func (r *PgxOrderRepository) ListLinesByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	query := `SELECT ` + lineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query order lines for order "+orderID, err)
	}
	defer rows.Close()

	lines := []models.OrderLine{}
	for rows.Next() {
		l, err := scanLineRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan order line row", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating order line rows", err)
	}
	return mapping.ToDomainOrderLineSlice(lines), nil
}

// CountLines counts all lines referencing an order, any status.
func (r *PgxOrderRepository) CountLines(ctx context.Context, orderID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_lines WHERE order_id = $1;`, orderID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count order lines for order "+orderID, err)
	}
	return count, nil
}

// SaveOrder inserts an order header.
func (r *PgxOrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	m := mapping.ToModelOrder(order)
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.OrderID,
		m.ParticipantID,
		m.LocationID,
		m.OrderDate,
		m.ClosedDate,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert order "+m.OrderID, err)
	}
	return nil
}

// UpdateOrder rewrites an order header's mutable fields.
func (r *PgxOrderRepository) UpdateOrder(ctx context.Context, order domain.Order) error {
	m := mapping.ToModelOrder(order)
	query := `
		UPDATE orders SET
			order_date = $2,
			notes = $3,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE order_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, m.OrderID, m.OrderDate, m.Notes, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update order "+m.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteOrder removes an order header. The service refuses deletion while any
// line still references the order, and the order_lines foreign key backs that
// up at the schema level.
func (r *PgxOrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM orders WHERE order_id = $1;`, orderID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete order "+orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveOrderLineInTx inserts an order line.
func (r *PgxOrderRepository) SaveOrderLineInTx(ctx context.Context, tx pgx.Tx, line domain.OrderLine) error {
	m := mapping.ToModelOrderLine(line)
	query := `
		INSERT INTO order_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, query,
		m.LineID,
		m.OrderID,
		m.ReceiptID,
		m.LocationID,
		m.BinID,
		m.Quantity,
		m.QuantityOverride,
		m.Collected,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert order line "+m.LineID, err)
	}
	return nil
}

// UpdateOrderLineInTx rewrites an order line.
func (r *PgxOrderRepository) UpdateOrderLineInTx(ctx context.Context, tx pgx.Tx, line domain.OrderLine) error {
	m := mapping.ToModelOrderLine(line)
	query := `
		UPDATE order_lines SET
			bin_id = $2,
			quantity = $3,
			quantity_override = $4,
			collected = $5,
			status = $6,
			last_updated_at = $7,
			last_updated_by = $8
		WHERE line_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.LineID,
		m.BinID,
		m.Quantity,
		m.QuantityOverride,
		m.Collected,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update order line "+m.LineID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteOrderLineInTx removes an order line.
func (r *PgxOrderRepository) DeleteOrderLineInTx(ctx context.Context, tx pgx.Tx, lineID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE line_id = $1;`, lineID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete order line "+lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountOpenLinesInTx counts lines still in OPEN status.
func (r *PgxOrderRepository) CountOpenLinesInTx(ctx context.Context, tx pgx.Tx, orderID string) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM order_lines WHERE order_id = $1 AND status = 'OPEN';`, orderID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count open lines for order "+orderID, err)
	}
	return count, nil
}

// SetOrderClosedDateInTx sets or clears an order's closing date.
func (r *PgxOrderRepository) SetOrderClosedDateInTx(ctx context.Context, tx pgx.Tx, orderID string, closedDate *time.Time, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE orders SET closed_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE order_id = $1;
	`
	tag, err := tx.Exec(ctx, query, orderID, closedDate, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set closed date for order "+orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
