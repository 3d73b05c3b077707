package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// CreateReceiptRequest carries the payload for recording an acquisition.
type CreateReceiptRequest struct {
	ParticipantID string          `json:"participantID" binding:"required"`
	WineID        string          `json:"wineID" binding:"required"`
	ReceiptDate   time.Time       `json:"receiptDate" binding:"required"`
	Supplier      string          `json:"supplier"`
	Price         decimal.Decimal `json:"price"`
	Notes         string          `json:"notes"`
}

// UpdateReceiptRequest carries optional field updates for a receipt.
type UpdateReceiptRequest struct {
	ReceiptDate *time.Time       `json:"receiptDate"`
	Supplier    *string          `json:"supplier"`
	Price       *decimal.Decimal `json:"price"`
	Notes       *string          `json:"notes"`
}

// ReceiptResponse defines the data returned for a receipt.
type ReceiptResponse struct {
	ReceiptID     string          `json:"receiptID"`
	ParticipantID string          `json:"participantID"`
	WineID        string          `json:"wineID"`
	ReceiptDate   time.Time       `json:"receiptDate"`
	Supplier      string          `json:"supplier,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToReceiptResponse converts a domain.Receipt to ReceiptResponse.
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:     r.ReceiptID,
		ParticipantID: r.ParticipantID,
		WineID:        r.WineID,
		ReceiptDate:   r.ReceiptDate,
		Supplier:      r.Supplier,
		Price:         r.Price,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

// ToReceiptResponses converts a slice of domain.Receipt to []ReceiptResponse.
func ToReceiptResponses(receipts []domain.Receipt) []ReceiptResponse {
	responses := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		responses[i] = ToReceiptResponse(&receipts[i])
	}
	return responses
}
