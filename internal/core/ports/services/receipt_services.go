package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// ReceiptReaderSvc defines read operations for receipt data
type ReceiptReaderSvc interface {
	// GetReceiptByID retrieves a specific receipt.
	GetReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error)

	// ListReceiptsByParticipant retrieves all receipts owned by a participant.
	ListReceiptsByParticipant(ctx context.Context, participantID string) ([]domain.Receipt, error)

	// ListReceiptsByWine retrieves all receipts for one wine.
	ListReceiptsByWine(ctx context.Context, wineID string) ([]domain.Receipt, error)
}

// ReceiptWriterSvc defines write operations for receipt data
type ReceiptWriterSvc interface {
	// CreateReceipt persists a new receipt.
	CreateReceipt(ctx context.Context, req dto.CreateReceiptRequest, userID string) (*domain.Receipt, error)

	// UpdateReceipt updates an existing receipt's details.
	UpdateReceipt(ctx context.Context, receiptID string, req dto.UpdateReceiptRequest, userID string) (*domain.Receipt, error)

	// DeleteReceipt removes a receipt that has no movements or order lines.
	DeleteReceipt(ctx context.Context, receiptID string, userID string) error
}

// ReceiptSvcFacade combines all receipt-related service interfaces
type ReceiptSvcFacade interface {
	ReceiptReaderSvc
	ReceiptWriterSvc
}
