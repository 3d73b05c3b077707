package repositories

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// ReceiptRepository defines persistence operations for acquisition receipts.
type ReceiptRepository interface {
	// SaveReceipt inserts a receipt.
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error

	// FindReceiptByID retrieves a receipt.
	FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error)

	// ListReceiptsByParticipant retrieves all receipts of a participant.
	ListReceiptsByParticipant(ctx context.Context, participantID string) ([]domain.Receipt, error)

	// ListReceiptsByWine retrieves all receipts of a wine.
	ListReceiptsByWine(ctx context.Context, wineID string) ([]domain.Receipt, error)

	// UpdateReceipt rewrites a receipt's mutable fields.
	UpdateReceipt(ctx context.Context, receipt domain.Receipt) error

	// DeleteReceipt removes a receipt. Callers check dependents first.
	DeleteReceipt(ctx context.Context, receiptID string) error

	// HasDependents reports whether stock rows or ledger entries still
	// reference the receipt.
	HasDependents(ctx context.Context, receiptID string) (bool, error)
}
