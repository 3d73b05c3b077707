package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// StockReaderSvc defines read operations for stock and movement data
type StockReaderSvc interface {
	// GetStockByKey retrieves the projection row for one (receipt, location, bin) key.
	GetStockByKey(ctx context.Context, key domain.StockKey) (*domain.CellarStock, error)

	// ListStockByLocation retrieves all stock rows held at a location.
	ListStockByLocation(ctx context.Context, locationID string) ([]domain.CellarStock, error)

	// ListStockByReceipt retrieves stock rows across locations for one receipt.
	ListStockByReceipt(ctx context.Context, receiptID string) ([]domain.CellarStock, error)

	// ListStockByWine retrieves stock rows across receipts for one wine.
	ListStockByWine(ctx context.Context, wineID string) ([]domain.CellarStock, error)

	// GetMovementByID retrieves a single ledger entry.
	GetMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error)

	// ListMovementsByReceipt retrieves a paginated movement history for a receipt.
	ListMovementsByReceipt(ctx context.Context, receiptID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)

	// ListMovementsByLocation retrieves a paginated movement history for a location.
	ListMovementsByLocation(ctx context.Context, locationID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)
}

// StockMutationSvc defines the validate-then-apply core for ledger changes.
// A change is expressed as a (newEntry, oldEntry) pair: create is (new, nil),
// update is (new, old), delete is (nil, old).
type StockMutationSvc interface {
	// ValidateChange checks a hypothetical change against current stock
	// without persisting anything.
	ValidateChange(ctx context.Context, newEntry, oldEntry *domain.StockMovement) error

	// SubmitMovement validates and applies a change in a single transaction.
	SubmitMovement(ctx context.Context, newEntry, oldEntry *domain.StockMovement, userID string) error
}

// StockWriterSvc defines the request-level write operations on the ledger
type StockWriterSvc interface {
	// CreateMovement records a new ledger entry and applies its effect.
	CreateMovement(ctx context.Context, req dto.CreateMovementRequest, userID string) (*domain.StockMovement, error)

	// UpdateMovement supersedes an existing entry with corrected values.
	UpdateMovement(ctx context.Context, movementID string, req dto.UpdateMovementRequest, userID string) (*domain.StockMovement, error)

	// DeleteMovement removes an entry and reverses its effect.
	DeleteMovement(ctx context.Context, movementID string, userID string) error

	// Drink records consumption at a key, defaulting to one bottle.
	Drink(ctx context.Context, req dto.DrinkRequest, userID string) (*domain.StockMovement, error)

	// Restock puts a single bottle back, reopening the wine if needed.
	Restock(ctx context.Context, req dto.RestockRequest, userID string) (*domain.StockMovement, error)

	// Transfer moves a quantity between two keys in one transaction.
	Transfer(ctx context.Context, req dto.TransferRequest, userID string) error
}

// StockSvcFacade combines all stock-related service interfaces
type StockSvcFacade interface {
	StockReaderSvc
	StockMutationSvc
	StockWriterSvc
}
