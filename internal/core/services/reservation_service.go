package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

var ErrEmptyLineChange = errors.New("a line change needs at least one of new or old line")

// reservationService soft-allocates on-hand stock to open order lines. A
// reservation never moves bottles; it only raises the reserved counter on an
// existing projection row so later ledger writes cannot take those bottles.
type reservationService struct {
	stockRepo portsrepo.StockRepositoryWithTx
	orderRepo portsrepo.OrderRepositoryWithTx
}

// NewReservationService creates a new ReservationService.
func NewReservationService(stockRepo portsrepo.StockRepositoryWithTx, orderRepo portsrepo.OrderRepositoryWithTx) portssvc.ReservationSvc {
	return &reservationService{stockRepo: stockRepo, orderRepo: orderRepo}
}

var _ portssvc.ReservationSvc = (*reservationService)(nil)

// checkReservationDeltas verifies that every key gaining reservation demand
// has a projection row whose on-hand quantity covers the new reserved total.
// A reservation must land on existing stock; it never creates rows.
func checkReservationDeltas(deltas map[domain.StockKey]int64, current map[domain.StockKey]domain.CellarStock) error {
	for key, delta := range deltas {
		if delta <= 0 {
			continue
		}
		row, ok := current[key]
		if !ok {
			return &apperrors.OverReservationError{
				ReceiptID:  key.ReceiptID,
				LocationID: key.LocationID,
				BinID:      key.BinID,
				Requested:  delta,
				OnHand:     0,
			}
		}
		if row.Reserved+delta > row.Quantity {
			return &apperrors.OverReservationError{
				ReceiptID:  key.ReceiptID,
				LocationID: key.LocationID,
				BinID:      key.BinID,
				Requested:  row.Reserved + delta,
				OnHand:     row.Quantity,
			}
		}
	}
	return nil
}

// ValidateReservation checks a hypothetical line change against current
// availability without locking or persisting anything.
func (s *reservationService) ValidateReservation(ctx context.Context, newLine, oldLine *domain.OrderLine) error {
	if newLine == nil && oldLine == nil {
		return ErrEmptyLineChange
	}

	deltas := domain.ReservationDeltas(newLine, oldLine)
	current := make(map[domain.StockKey]domain.CellarStock, len(deltas))
	for key := range deltas {
		row, err := s.stockRepo.FindStockByKey(ctx, key)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to read stock for validation: %w", err)
		}
		current[key] = *row
	}
	return checkReservationDeltas(deltas, current)
}

// SubmitOrderLine validates and applies a line change in one transaction:
// lock the affected projection rows, re-validate, persist the line, and
// adjust the reserved counters by the net difference.
func (s *reservationService) SubmitOrderLine(ctx context.Context, newLine, oldLine *domain.OrderLine, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if newLine == nil && oldLine == nil {
		return ErrEmptyLineChange
	}

	deltas := domain.ReservationDeltas(newLine, oldLine)
	keys := make([]domain.StockKey, 0, len(deltas))
	for key := range deltas {
		keys = append(keys, key)
	}

	tx, err := s.stockRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.stockRepo.Rollback(ctx, tx)
	}()

	locked, err := s.stockRepo.FindStockForUpdate(ctx, tx, keys)
	if err != nil {
		return fmt.Errorf("failed to lock stock rows: %w", err)
	}
	if err := checkReservationDeltas(deltas, locked); err != nil {
		return err
	}

	switch {
	case oldLine == nil:
		if err := s.orderRepo.SaveOrderLineInTx(ctx, tx, *newLine); err != nil {
			logger.Error("Failed to save order line", slog.String("error", err.Error()), slog.String("line_id", newLine.LineID))
			return fmt.Errorf("failed to save order line: %w", err)
		}
	case newLine == nil:
		if err := s.orderRepo.DeleteOrderLineInTx(ctx, tx, oldLine.LineID); err != nil {
			logger.Error("Failed to delete order line", slog.String("error", err.Error()), slog.String("line_id", oldLine.LineID))
			return fmt.Errorf("failed to delete order line: %w", err)
		}
	default:
		if err := s.orderRepo.UpdateOrderLineInTx(ctx, tx, *newLine); err != nil {
			logger.Error("Failed to update order line", slog.String("error", err.Error()), slog.String("line_id", newLine.LineID))
			return fmt.Errorf("failed to update order line: %w", err)
		}
	}

	now := time.Now().UTC()
	for key, delta := range deltas {
		row, ok := locked[key]
		if !ok {
			// Validated above: a missing row can only be losing demand,
			// which means the projection already drifted. Nothing to adjust.
			logger.Warn("Reservation release against missing stock row",
				slog.String("receipt_id", key.ReceiptID), slog.String("location_id", key.LocationID), slog.String("bin_id", key.BinID))
			continue
		}
		row.Reserved += delta
		if row.Reserved < 0 {
			logger.Warn("Reserved counter would drop below zero, clamping",
				slog.String("stock_id", row.StockID), slog.Int64("reserved", row.Reserved))
			row.Reserved = 0
		}
		row.LastUpdatedAt = now
		row.LastUpdatedBy = userID

		if row.Quantity == 0 && row.Reserved == 0 {
			if err := s.stockRepo.DeleteStockInTx(ctx, tx, row.StockID); err != nil {
				return fmt.Errorf("failed to remove empty stock row: %w", err)
			}
			continue
		}
		if err := s.stockRepo.UpsertStockInTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to update stock row: %w", err)
		}
	}

	if err := s.stockRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit reservation change: %w", err)
	}

	logger.Info("Reservation change applied", slog.Int("keys", len(deltas)))
	return nil
}
