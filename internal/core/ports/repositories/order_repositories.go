package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// OrderReader defines read operations for orders and order lines.
type OrderReader interface {
	// FindOrderByID retrieves an order header.
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)

	// FindOrderWithLines retrieves an order header with all its lines populated.
	FindOrderWithLines(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders retrieves orders, optionally filtered by participant.
	ListOrders(ctx context.Context, participantID *string, includeClosed bool) ([]domain.Order, error)

	// FindOrderLineByID retrieves a single order line.
	FindOrderLineByID(ctx context.Context, lineID string) (*domain.OrderLine, error)

	// ListLinesByOrder retrieves all lines of an order.
	ListLinesByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error)

	// CountLines counts all lines referencing an order, any status.
	CountLines(ctx context.Context, orderID string) (int64, error)
}

// OrderWriter defines write operations for orders and order lines. Line
// writes are transaction-scoped because they always travel together with a
// reservation or ledger update.
type OrderWriter interface {
	// SaveOrder inserts an order header.
	SaveOrder(ctx context.Context, order domain.Order) error

	// UpdateOrder rewrites an order header's mutable fields.
	UpdateOrder(ctx context.Context, order domain.Order) error

	// DeleteOrder removes an order header. Callers check for lines first.
	DeleteOrder(ctx context.Context, orderID string) error

	// SaveOrderLineInTx inserts an order line.
	SaveOrderLineInTx(ctx context.Context, tx pgx.Tx, line domain.OrderLine) error

	// UpdateOrderLineInTx rewrites an order line.
	UpdateOrderLineInTx(ctx context.Context, tx pgx.Tx, line domain.OrderLine) error

	// DeleteOrderLineInTx removes an order line.
	DeleteOrderLineInTx(ctx context.Context, tx pgx.Tx, lineID string) error

	// CountOpenLinesInTx counts lines still in OPEN status.
	CountOpenLinesInTx(ctx context.Context, tx pgx.Tx, orderID string) (int64, error)

	// SetOrderClosedDateInTx sets or clears an order's closing date.
	SetOrderClosedDateInTx(ctx context.Context, tx pgx.Tx, orderID string, closedDate *time.Time, updatedBy string, updatedAt time.Time) error
}

// OrderRepositoryFacade combines all order-related repository interfaces.
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
}

// OrderRepositoryWithTx extends OrderRepositoryFacade with transaction capabilities.
type OrderRepositoryWithTx interface {
	OrderRepositoryFacade
	TransactionManager
}
