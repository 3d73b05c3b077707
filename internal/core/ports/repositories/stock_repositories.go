package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// StockReader defines read operations against the stock projection.
type StockReader interface {
	// FindStockByKey retrieves the projection row for one (receipt, location, bin) key.
	FindStockByKey(ctx context.Context, key domain.StockKey) (*domain.CellarStock, error)

	// ListStockByLocation retrieves all projection rows at a location.
	ListStockByLocation(ctx context.Context, locationID string) ([]domain.CellarStock, error)

	// ListStockByReceipt retrieves all projection rows derived from a receipt.
	ListStockByReceipt(ctx context.Context, receiptID string) ([]domain.CellarStock, error)

	// ListStockByWine retrieves all projection rows for a wine across its receipts.
	ListStockByWine(ctx context.Context, wineID string) ([]domain.CellarStock, error)

	// SumOnHandByBin returns the total on-hand quantity per bin at a location,
	// used to surface advisory free space next to bin capacities.
	SumOnHandByBin(ctx context.Context, locationID string) (map[string]int64, error)
}

// MovementReader defines read operations against the movement ledger.
type MovementReader interface {
	// FindMovementByID retrieves a single movement.
	FindMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error)

	// ListMovementsByReceipt retrieves a keyset-paginated list of movements for a receipt.
	ListMovementsByReceipt(ctx context.Context, receiptID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error)

	// ListMovementsByLocation retrieves a keyset-paginated list of movements at a location.
	ListMovementsByLocation(ctx context.Context, locationID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error)
}

// StockTxWriter defines the transaction-scoped primitives the mutation and
// reservation engines compose. Every method operates on the supplied tx so a
// validate-then-apply sequence commits or rolls back as one unit.
type StockTxWriter interface {
	// FindStockForUpdate reads and row-locks the projection rows for the given
	// keys. Keys without a row are absent from the result map.
	FindStockForUpdate(ctx context.Context, tx pgx.Tx, keys []domain.StockKey) (map[domain.StockKey]domain.CellarStock, error)

	// UpsertStockInTx inserts or updates one projection row.
	UpsertStockInTx(ctx context.Context, tx pgx.Tx, stock domain.CellarStock) error

	// DeleteStockInTx removes one projection row.
	DeleteStockInTx(ctx context.Context, tx pgx.Tx, stockID string) error

	// SaveMovementInTx inserts a ledger entry.
	SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error

	// UpdateMovementInTx rewrites a ledger entry's mutable fields.
	UpdateMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error

	// DeleteMovementInTx removes a ledger entry.
	DeleteMovementInTx(ctx context.Context, tx pgx.Tx, movementID string) error

	// FindReceiptRefInTx resolves the wine and participant a receipt points at,
	// used to seed projection rows created on first movement.
	FindReceiptRefInTx(ctx context.Context, tx pgx.Tx, receiptID string) (wineID string, participantID string, err error)

	// SumStockForWineInTx totals on-hand quantity across all of a wine's rows.
	SumStockForWineInTx(ctx context.Context, tx pgx.Tx, wineID string) (int64, error)

	// SetWineClosedInTx flips the wine's closed flag.
	SetWineClosedInTx(ctx context.Context, tx pgx.Tx, wineID string, closed bool, updatedBy string, updatedAt time.Time) error
}

// StockRepositoryFacade combines all stock-related repository interfaces.
type StockRepositoryFacade interface {
	StockReader
	MovementReader
	StockTxWriter
}

// StockRepositoryWithTx extends StockRepositoryFacade with transaction capabilities.
type StockRepositoryWithTx interface {
	StockRepositoryFacade
	TransactionManager
}
