package dto

import (
	"time"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// CreateMovementRequest carries the payload for recording a stock movement.
type CreateMovementRequest struct {
	ReceiptID    string    `json:"receiptID" binding:"required"`
	LocationID   string    `json:"locationID" binding:"required"`
	BinID        string    `json:"binID"`
	Direction    string    `json:"direction" binding:"required,oneof=IN OUT"`
	Cause        string    `json:"cause" binding:"required,oneof=PURCHASE RECEIPT TRANSFER DRINK BOOK_OUT"`
	MovementDate time.Time `json:"movementDate" binding:"required"`
	Quantity     int64     `json:"quantity" binding:"required,gt=0"`
	Description  string    `json:"description"`
}

// UpdateMovementRequest carries optional field updates for a movement.
// Direction and receipt are immutable; superseding those means delete and
// recreate. Changing location or bin moves the effect to another key.
type UpdateMovementRequest struct {
	LocationID   *string    `json:"locationID"`
	BinID        *string    `json:"binID"`
	MovementDate *time.Time `json:"movementDate"`
	Quantity     *int64     `json:"quantity" binding:"omitempty,gt=0"`
	Description  *string    `json:"description"`
}

// DrinkRequest records consumption of one or more bottles.
type DrinkRequest struct {
	ReceiptID  string    `json:"receiptID" binding:"required"`
	LocationID string    `json:"locationID" binding:"required"`
	BinID      string    `json:"binID"`
	Quantity   int64     `json:"quantity" binding:"omitempty,gt=0"`
	Date       time.Time `json:"date"`
}

// RestockRequest puts a single bottle back into stock.
type RestockRequest struct {
	ReceiptID  string `json:"receiptID" binding:"required"`
	LocationID string `json:"locationID" binding:"required"`
	BinID      string `json:"binID"`
}

// TransferRequest moves a quantity between two (location, bin) destinations.
type TransferRequest struct {
	ReceiptID    string    `json:"receiptID" binding:"required"`
	FromLocation string    `json:"fromLocationID" binding:"required"`
	FromBin      string    `json:"fromBinID"`
	ToLocation   string    `json:"toLocationID" binding:"required"`
	ToBin        string    `json:"toBinID"`
	Quantity     int64     `json:"quantity" binding:"required,gt=0"`
	Date         time.Time `json:"date"`
}

// StockResponse defines the data returned for one projection row.
type StockResponse struct {
	StockID       string `json:"stockID"`
	WineID        string `json:"wineID"`
	ParticipantID string `json:"participantID"`
	ReceiptID     string `json:"receiptID"`
	LocationID    string `json:"locationID"`
	BinID         string `json:"binID,omitempty"`
	Quantity      int64  `json:"quantity"`
	Reserved      int64  `json:"reserved"`
	Available     int64  `json:"available"`
}

// MovementResponse defines the data returned for one ledger entry.
type MovementResponse struct {
	MovementID   string    `json:"movementID"`
	ReceiptID    string    `json:"receiptID"`
	LocationID   string    `json:"locationID"`
	BinID        string    `json:"binID,omitempty"`
	Direction    string    `json:"direction"`
	Cause        string    `json:"cause"`
	MovementDate time.Time `json:"movementDate"`
	Quantity     int64     `json:"quantity"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListMovementsParams holds pagination parameters for movement listings.
type ListMovementsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListMovementsResponse is a page of movements plus the next-page token.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToStockResponse converts a domain.CellarStock to StockResponse.
func ToStockResponse(s *domain.CellarStock) StockResponse {
	return StockResponse{
		StockID:       s.StockID,
		WineID:        s.WineID,
		ParticipantID: s.ParticipantID,
		ReceiptID:     s.ReceiptID,
		LocationID:    s.LocationID,
		BinID:         s.BinID,
		Quantity:      s.Quantity,
		Reserved:      s.Reserved,
		Available:     s.Available(),
	}
}

// ToStockResponses converts a slice of domain.CellarStock.
func ToStockResponses(stock []domain.CellarStock) []StockResponse {
	responses := make([]StockResponse, len(stock))
	for i := range stock {
		responses[i] = ToStockResponse(&stock[i])
	}
	return responses
}

// ToMovementResponse converts a domain.StockMovement to MovementResponse.
func ToMovementResponse(m *domain.StockMovement) MovementResponse {
	return MovementResponse{
		MovementID:   m.MovementID,
		ReceiptID:    m.ReceiptID,
		LocationID:   m.LocationID,
		BinID:        m.BinID,
		Direction:    string(m.Direction),
		Cause:        string(m.Cause),
		MovementDate: m.MovementDate,
		Quantity:     m.Quantity,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of domain.StockMovement.
func ToMovementResponses(movements []domain.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}
