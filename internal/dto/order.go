package dto

import (
	"time"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// CreateOrderRequest carries the payload for creating a pick list.
type CreateOrderRequest struct {
	ParticipantID string    `json:"participantID" binding:"required"`
	LocationID    string    `json:"locationID" binding:"required"`
	OrderDate     time.Time `json:"orderDate"`
	Notes         string    `json:"notes"`
}

// UpdateOrderRequest carries optional field updates for an order header.
type UpdateOrderRequest struct {
	OrderDate *time.Time `json:"orderDate"`
	Notes     *string    `json:"notes"`
}

// CreateOrderLineRequest carries the payload for adding a line to an order.
type CreateOrderLineRequest struct {
	ReceiptID string `json:"receiptID" binding:"required"`
	BinID     string `json:"binID"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// UpdateOrderLineRequest carries optional field updates for an open line.
// ClearQuantityOverride removes an existing override; a nil pointer alone
// cannot distinguish "leave as is" from "unset".
type UpdateOrderLineRequest struct {
	BinID                 *string `json:"binID"`
	Quantity              *int64  `json:"quantity" binding:"omitempty,gt=0"`
	QuantityOverride      *int64  `json:"quantityOverride" binding:"omitempty,gte=0"`
	ClearQuantityOverride bool    `json:"clearQuantityOverride"`
}

// CollectRequest marks or unmarks a line as physically gathered.
type CollectRequest struct {
	Collected bool `json:"collected"`
}

// OrderLineResponse defines the data returned for an order line.
type OrderLineResponse struct {
	LineID            string  `json:"lineID"`
	OrderID           string  `json:"orderID"`
	ReceiptID         string  `json:"receiptID"`
	LocationID        string  `json:"locationID"`
	BinID             string  `json:"binID,omitempty"`
	Quantity          int64   `json:"quantity"`
	QuantityOverride  *int64  `json:"quantityOverride,omitempty"`
	EffectiveQuantity int64   `json:"effectiveQuantity"`
	Collected         bool    `json:"collected"`
	Status            string  `json:"status"`
}

// OrderResponse defines the data returned for an order.
type OrderResponse struct {
	OrderID       string              `json:"orderID"`
	ParticipantID string              `json:"participantID"`
	LocationID    string              `json:"locationID"`
	OrderDate     time.Time           `json:"orderDate"`
	ClosedDate    *time.Time          `json:"closedDate,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Lines         []OrderLineResponse `json:"lines,omitempty"`
}

// ToOrderLineResponse converts a domain.OrderLine to OrderLineResponse.
func ToOrderLineResponse(l *domain.OrderLine) OrderLineResponse {
	return OrderLineResponse{
		LineID:            l.LineID,
		OrderID:           l.OrderID,
		ReceiptID:         l.ReceiptID,
		LocationID:        l.LocationID,
		BinID:             l.BinID,
		Quantity:          l.Quantity,
		QuantityOverride:  l.QuantityOverride,
		EffectiveQuantity: l.EffectiveQuantity(),
		Collected:         l.Collected,
		Status:            string(l.Status),
	}
}

// ToOrderResponse converts a domain.Order to OrderResponse.
func ToOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:       o.OrderID,
		ParticipantID: o.ParticipantID,
		LocationID:    o.LocationID,
		OrderDate:     o.OrderDate,
		ClosedDate:    o.ClosedDate,
		Notes:         o.Notes,
	}
	if len(o.Lines) > 0 {
		resp.Lines = make([]OrderLineResponse, len(o.Lines))
		for i := range o.Lines {
			resp.Lines[i] = ToOrderLineResponse(&o.Lines[i])
		}
	}
	return resp
}

// ToOrderResponses converts a slice of domain.Order.
func ToOrderResponses(orders []domain.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
