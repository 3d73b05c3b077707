package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// OrderReaderSvc defines read operations for orders and their lines
type OrderReaderSvc interface {
	// GetOrderByID retrieves an order including its lines.
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)

	// ListOrders retrieves orders, optionally filtered by participant.
	ListOrders(ctx context.Context, participantID *string, includeClosed bool) ([]domain.Order, error)

	// GetOrderLineByID retrieves a single order line.
	GetOrderLineByID(ctx context.Context, lineID string) (*domain.OrderLine, error)
}

// OrderWriterSvc defines write operations on order headers and lines
type OrderWriterSvc interface {
	// CreateOrder persists a new order header.
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest, userID string) (*domain.Order, error)

	// UpdateOrder updates order details (excluding lines).
	UpdateOrder(ctx context.Context, orderID string, req dto.UpdateOrderRequest, userID string) (*domain.Order, error)

	// DeleteOrder removes an order with no remaining open reservations.
	DeleteOrder(ctx context.Context, orderID string, userID string) error

	// AddLine appends a line to an open order, reserving its quantity.
	AddLine(ctx context.Context, orderID string, req dto.CreateOrderLineRequest, userID string) (*domain.OrderLine, error)

	// UpdateLine changes an open line, re-reserving under the new values.
	UpdateLine(ctx context.Context, lineID string, req dto.UpdateOrderLineRequest, userID string) (*domain.OrderLine, error)

	// DeleteLine removes an open line and releases its reservation.
	DeleteLine(ctx context.Context, lineID string, userID string) error

	// Collect marks or unmarks a line as physically gathered.
	Collect(ctx context.Context, lineID string, collected bool, userID string) (*domain.OrderLine, error)
}

// OrderFulfillmentSvc defines the terminal transitions for order lines
type OrderFulfillmentSvc interface {
	// BookOut transitions an open line to BOOKED_OUT: releases the
	// reservation, writes the outgoing movement, and adjusts stock, all in
	// one transaction.
	BookOut(ctx context.Context, lineID string, userID string) error

	// BookOutCollected books out every collected open line on an order.
	BookOutCollected(ctx context.Context, orderID string, userID string) (int, error)

	// VoidLine transitions an open line to VOIDED, releasing its
	// reservation without any stock effect.
	VoidLine(ctx context.Context, lineID string, userID string) error
}

// OrderSvcFacade combines all order-related service interfaces
type OrderSvcFacade interface {
	OrderReaderSvc
	OrderWriterSvc
	OrderFulfillmentSvc
}
