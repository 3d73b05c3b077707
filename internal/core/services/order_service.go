package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

var (
	ErrLineNotOpen   = errors.New("order line is no longer open")
	ErrLineBookedOut = errors.New("a booked-out line cannot be removed")
)

// orderService manages pick lists and their line state machine. Lines start
// OPEN and hold a reservation; they end BOOKED_OUT (bottles leave the cellar)
// or VOIDED (reservation released, nothing moves). An order closes when its
// last open line reaches a terminal state and reopens when a new line lands.
type orderService struct {
	orderRepo      portsrepo.OrderRepositoryWithTx
	stockRepo      portsrepo.StockRepositoryWithTx
	reservationSvc portssvc.ReservationSvc
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo portsrepo.OrderRepositoryWithTx, stockRepo portsrepo.StockRepositoryWithTx, reservationSvc portssvc.ReservationSvc) portssvc.OrderSvcFacade {
	return &orderService{
		orderRepo:      orderRepo,
		stockRepo:      stockRepo,
		reservationSvc: reservationSvc,
	}
}

var _ portssvc.OrderSvcFacade = (*orderService)(nil)

// GetOrderByID retrieves an order including its lines.
func (s *orderService) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.FindOrderWithLines(ctx, orderID)
}

// ListOrders retrieves orders, optionally filtered by participant.
func (s *orderService) ListOrders(ctx context.Context, participantID *string, includeClosed bool) ([]domain.Order, error) {
	return s.orderRepo.ListOrders(ctx, participantID, includeClosed)
}

// GetOrderLineByID retrieves a single order line.
func (s *orderService) GetOrderLineByID(ctx context.Context, lineID string) (*domain.OrderLine, error) {
	return s.orderRepo.FindOrderLineByID(ctx, lineID)
}

// CreateOrder persists a new order header.
func (s *orderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest, userID string) (*domain.Order, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	order := domain.Order{
		OrderID:       uuid.NewString(),
		ParticipantID: req.ParticipantID,
		LocationID:    req.LocationID,
		OrderDate:     orderDate,
		Notes:         req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("Failed to save order", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	logger.Info("Order created", slog.String("order_id", order.OrderID))
	return &order, nil
}

// UpdateOrder updates order details (excluding lines).
func (s *orderService) UpdateOrder(ctx context.Context, orderID string, req dto.UpdateOrderRequest, userID string) (*domain.Order, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order %s: %w", orderID, err)
	}

	updated := false
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
		updated = true
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
		updated = true
	}
	if !updated {
		return order, nil
	}

	now := time.Now().UTC()
	order.LastUpdatedAt = now
	order.LastUpdatedBy = userID

	if err := s.orderRepo.UpdateOrder(ctx, *order); err != nil {
		return nil, fmt.Errorf("failed to save order update: %w", err)
	}
	return order, nil
}

// DeleteOrder removes an order. Any remaining line blocks deletion, whatever
// its status; the caller removes the lines first.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.orderRepo.CountLines(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to count lines for order %s: %w", orderID, err)
	}
	if count > 0 {
		return &apperrors.ReferentialIntegrityError{
			Entity:    "order",
			EntityID:  orderID,
			Dependent: "order lines",
		}
	}

	if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
		logger.Error("Failed to delete order", slog.String("error", err.Error()), slog.String("order_id", orderID))
		return fmt.Errorf("failed to delete order: %w", err)
	}

	logger.Info("Order deleted", slog.String("order_id", orderID))
	return nil
}

// AddLine appends a line to an order, reserving its quantity. Adding a line
// to a closed order reopens it.
func (s *orderService) AddLine(ctx context.Context, orderID string, req dto.CreateOrderLineRequest, userID string) (*domain.OrderLine, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order %s: %w", orderID, err)
	}

	now := time.Now().UTC()
	line := domain.OrderLine{
		LineID:     uuid.NewString(),
		OrderID:    order.OrderID,
		ReceiptID:  req.ReceiptID,
		LocationID: order.LocationID,
		BinID:      req.BinID,
		Quantity:   req.Quantity,
		Status:     domain.LineOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.reservationSvc.SubmitOrderLine(ctx, &line, nil, userID); err != nil {
		return nil, err
	}
	if err := s.refreshClosedState(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateLine changes an open line, re-reserving under the new values.
func (s *orderService) UpdateLine(ctx context.Context, lineID string, req dto.UpdateOrderLineRequest, userID string) (*domain.OrderLine, error) {
	existing, err := s.orderRepo.FindOrderLineByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order line %s: %w", lineID, err)
	}
	if !existing.IsOpen() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrLineNotOpen)
	}

	updated := *existing
	if req.BinID != nil {
		updated.BinID = *req.BinID
	}
	if req.Quantity != nil {
		updated.Quantity = *req.Quantity
	}
	if req.ClearQuantityOverride {
		updated.QuantityOverride = nil
	} else if req.QuantityOverride != nil {
		updated.QuantityOverride = req.QuantityOverride
	}

	now := time.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	if err := s.reservationSvc.SubmitOrderLine(ctx, &updated, existing, userID); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLine removes a line. Open lines release their reservation; a
// booked-out line stays because its ledger entry already exists.
func (s *orderService) DeleteLine(ctx context.Context, lineID string, userID string) error {
	existing, err := s.orderRepo.FindOrderLineByID(ctx, lineID)
	if err != nil {
		return fmt.Errorf("failed to find order line %s: %w", lineID, err)
	}
	if existing.Status == domain.LineBookedOut {
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrLineBookedOut)
	}

	if err := s.reservationSvc.SubmitOrderLine(ctx, nil, existing, userID); err != nil {
		return err
	}
	return s.refreshClosedState(ctx, existing.OrderID, userID)
}

// Collect marks or unmarks a line as physically gathered. Collection has no
// stock effect; it only feeds BookOutCollected.
func (s *orderService) Collect(ctx context.Context, lineID string, collected bool, userID string) (*domain.OrderLine, error) {
	line, err := s.orderRepo.FindOrderLineByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order line %s: %w", lineID, err)
	}
	if !line.IsOpen() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrLineNotOpen)
	}

	now := time.Now().UTC()
	line.Collected = collected
	line.LastUpdatedAt = now
	line.LastUpdatedBy = userID

	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.orderRepo.Rollback(ctx, tx)
	}()
	if err := s.orderRepo.UpdateOrderLineInTx(ctx, tx, *line); err != nil {
		return nil, fmt.Errorf("failed to update order line: %w", err)
	}
	if err := s.orderRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit collect change: %w", err)
	}
	return line, nil
}

// BookOut transitions an open line to BOOKED_OUT in one transaction: lock the
// stock row, write the outgoing ledger entry for the effective quantity,
// release the reservation, and close the order if this was its last open line.
// A line already in a terminal state is left untouched.
func (s *orderService) BookOut(ctx context.Context, lineID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	line, err := s.orderRepo.FindOrderLineByID(ctx, lineID)
	if err != nil {
		return fmt.Errorf("failed to find order line %s: %w", lineID, err)
	}
	if !line.IsOpen() {
		logger.Info("Order line already processed, skipping book-out",
			slog.String("line_id", lineID), slog.String("status", string(line.Status)))
		return nil
	}

	quantity := line.EffectiveQuantity()
	key := line.Key()
	now := time.Now().UTC()

	tx, err := s.stockRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.stockRepo.Rollback(ctx, tx)
	}()

	if quantity > 0 {
		locked, err := s.stockRepo.FindStockForUpdate(ctx, tx, []domain.StockKey{key})
		if err != nil {
			return fmt.Errorf("failed to lock stock row: %w", err)
		}
		row, ok := locked[key]
		if !ok || row.Quantity < quantity {
			var onHand int64
			if ok {
				onHand = row.Quantity
			}
			return &apperrors.StockShortageError{
				ReceiptID:  key.ReceiptID,
				LocationID: key.LocationID,
				BinID:      key.BinID,
				Shortfall:  quantity - onHand,
			}
		}

		movement := domain.StockMovement{
			MovementID:   uuid.NewString(),
			ReceiptID:    line.ReceiptID,
			LocationID:   line.LocationID,
			BinID:        line.BinID,
			Direction:    domain.Out,
			Cause:        domain.CauseBookOut,
			MovementDate: now,
			Quantity:     quantity,
			Description:  fmt.Sprintf("Book-out of order line %s", line.LineID),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.stockRepo.SaveMovementInTx(ctx, tx, movement); err != nil {
			logger.Error("Failed to save book-out movement", slog.String("error", err.Error()), slog.String("line_id", lineID))
			return fmt.Errorf("failed to save book-out movement: %w", err)
		}

		row.Quantity -= quantity
		row.Reserved -= quantity
		if row.Reserved < 0 {
			row.Reserved = 0
		}
		row.LastUpdatedAt = now
		row.LastUpdatedBy = userID

		if row.Quantity == 0 && row.Reserved == 0 {
			if err := s.stockRepo.DeleteStockInTx(ctx, tx, row.StockID); err != nil {
				return fmt.Errorf("failed to remove empty stock row: %w", err)
			}
		} else if err := s.stockRepo.UpsertStockInTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to update stock row: %w", err)
		}
	}

	booked := *line
	booked.Status = domain.LineBookedOut
	booked.LastUpdatedAt = now
	booked.LastUpdatedBy = userID
	if err := s.orderRepo.UpdateOrderLineInTx(ctx, tx, booked); err != nil {
		return fmt.Errorf("failed to update order line: %w", err)
	}

	openLines, err := s.orderRepo.CountOpenLinesInTx(ctx, tx, line.OrderID)
	if err != nil {
		return fmt.Errorf("failed to count open lines: %w", err)
	}
	if openLines == 0 {
		if err := s.orderRepo.SetOrderClosedDateInTx(ctx, tx, line.OrderID, &now, userID, now); err != nil {
			return fmt.Errorf("failed to close order: %w", err)
		}
	}

	wineID, _, err := s.stockRepo.FindReceiptRefInTx(ctx, tx, line.ReceiptID)
	if err != nil {
		return fmt.Errorf("failed to resolve receipt %s: %w", line.ReceiptID, err)
	}
	total, err := s.stockRepo.SumStockForWineInTx(ctx, tx, wineID)
	if err != nil {
		return fmt.Errorf("failed to total stock for wine %s: %w", wineID, err)
	}
	if err := s.stockRepo.SetWineClosedInTx(ctx, tx, wineID, total <= 0, userID, now); err != nil {
		return fmt.Errorf("failed to update closed state for wine %s: %w", wineID, err)
	}

	if err := s.stockRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit book-out: %w", err)
	}

	logger.Info("Order line booked out", slog.String("line_id", lineID), slog.Int64("quantity", quantity))
	return nil
}

// BookOutCollected books out every collected open line on an order, one
// transaction per line, and reports how many were processed. Lines that are
// uncollected or already processed are skipped; an order with no eligible
// lines books out zero without error.
func (s *orderService) BookOutCollected(ctx context.Context, orderID string, userID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	lines, err := s.orderRepo.ListLinesByOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to list lines for order %s: %w", orderID, err)
	}

	booked := 0
	for _, line := range lines {
		if !line.IsOpen() || !line.Collected {
			continue
		}
		if err := s.BookOut(ctx, line.LineID, userID); err != nil {
			return booked, err
		}
		booked++
	}

	logger.Info("Collected lines booked out", slog.String("order_id", orderID), slog.Int("count", booked))
	return booked, nil
}

// VoidLine transitions an open line to VOIDED, releasing its reservation
// without any stock effect.
func (s *orderService) VoidLine(ctx context.Context, lineID string, userID string) error {
	line, err := s.orderRepo.FindOrderLineByID(ctx, lineID)
	if err != nil {
		return fmt.Errorf("failed to find order line %s: %w", lineID, err)
	}
	if !line.IsOpen() {
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrLineNotOpen)
	}

	now := time.Now().UTC()
	voided := *line
	voided.Status = domain.LineVoided
	voided.LastUpdatedAt = now
	voided.LastUpdatedBy = userID

	if err := s.reservationSvc.SubmitOrderLine(ctx, &voided, line, userID); err != nil {
		return err
	}
	return s.refreshClosedState(ctx, line.OrderID, userID)
}

// refreshClosedState recomputes an order's closed date from its open line
// count: no open lines closes it, an open line clears the closed date.
func (s *orderService) refreshClosedState(ctx context.Context, orderID string, userID string) error {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to find order %s: %w", orderID, err)
	}

	tx, err := s.orderRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.orderRepo.Rollback(ctx, tx)
	}()

	openLines, err := s.orderRepo.CountOpenLinesInTx(ctx, tx, orderID)
	if err != nil {
		return fmt.Errorf("failed to count open lines: %w", err)
	}

	now := time.Now().UTC()
	switch {
	case openLines == 0 && order.ClosedDate == nil:
		if err := s.orderRepo.SetOrderClosedDateInTx(ctx, tx, orderID, &now, userID, now); err != nil {
			return fmt.Errorf("failed to close order: %w", err)
		}
	case openLines > 0 && order.ClosedDate != nil:
		if err := s.orderRepo.SetOrderClosedDateInTx(ctx, tx, orderID, nil, userID, now); err != nil {
			return fmt.Errorf("failed to reopen order: %w", err)
		}
	}
	return s.orderRepo.Commit(ctx, tx)
}
