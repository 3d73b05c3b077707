package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

var (
	ErrSameKeyTransfer  = errors.New("transfer source and destination must differ")
	ErrEmptyChange      = errors.New("a change needs at least one of new or old entry")
	ErrReceiptImmutable = errors.New("a movement cannot be moved to another receipt")
)

const defaultMovementPageLimit = 20

// movementChange pairs the new and old version of one ledger entry.
// (new, nil) creates, (new, old) supersedes, (nil, old) removes.
type movementChange struct {
	newEntry *domain.StockMovement
	oldEntry *domain.StockMovement
}

// stockService owns the movement ledger and the stock projection derived
// from it. Every write validates the hypothetical end state first and then
// applies ledger and projection changes in one transaction with the affected
// projection rows locked.
type stockService struct {
	stockRepo portsrepo.StockRepositoryWithTx
}

// NewStockService creates a new StockService.
func NewStockService(stockRepo portsrepo.StockRepositoryWithTx) portssvc.StockSvcFacade {
	return &stockService{stockRepo: stockRepo}
}

var _ portssvc.StockSvcFacade = (*stockService)(nil)

// combineDeltas merges the per-key net effects of a set of changes, so a
// transfer's OUT and IN against the same key cancel before validation.
func combineDeltas(changes []movementChange) map[domain.StockKey]int64 {
	total := make(map[domain.StockKey]int64)
	for _, ch := range changes {
		for key, delta := range domain.MovementDeltas(ch.newEntry, ch.oldEntry) {
			total[key] += delta
		}
	}
	for key, delta := range total {
		if delta == 0 {
			delete(total, key)
		}
	}
	return total
}

// checkResultingStock verifies that applying the deltas leaves every key with
// a non-negative on-hand quantity that still covers its reservations.
func checkResultingStock(deltas map[domain.StockKey]int64, current map[domain.StockKey]domain.CellarStock) error {
	for key, delta := range deltas {
		var onHand, reserved int64
		if row, ok := current[key]; ok {
			onHand = row.Quantity
			reserved = row.Reserved
		}
		result := onHand + delta
		if result < 0 {
			return &apperrors.StockShortageError{
				ReceiptID:  key.ReceiptID,
				LocationID: key.LocationID,
				BinID:      key.BinID,
				Shortfall:  -result,
			}
		}
		if result < reserved {
			return &apperrors.StockShortageError{
				ReceiptID:  key.ReceiptID,
				LocationID: key.LocationID,
				BinID:      key.BinID,
				Shortfall:  reserved - result,
			}
		}
	}
	return nil
}

// ValidateChange checks a hypothetical ledger change against the current
// projection without locking or persisting anything. SubmitMovement repeats
// the same check on locked rows, so a pass here is advisory under concurrency.
func (s *stockService) ValidateChange(ctx context.Context, newEntry, oldEntry *domain.StockMovement) error {
	if newEntry == nil && oldEntry == nil {
		return ErrEmptyChange
	}
	if newEntry != nil && oldEntry != nil && newEntry.ReceiptID != oldEntry.ReceiptID {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrReceiptImmutable)
	}

	deltas := combineDeltas([]movementChange{{newEntry: newEntry, oldEntry: oldEntry}})
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
	return checkResultingStock(deltas, current)
}

// SubmitMovement validates and applies a single ledger change atomically.
func (s *stockService) SubmitMovement(ctx context.Context, newEntry, oldEntry *domain.StockMovement, userID string) error {
	if newEntry == nil && oldEntry == nil {
		return ErrEmptyChange
	}
	if newEntry != nil && oldEntry != nil && newEntry.ReceiptID != oldEntry.ReceiptID {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrReceiptImmutable)
	}
	return s.submit(ctx, []movementChange{{newEntry: newEntry, oldEntry: oldEntry}}, userID)
}

// submit runs the full validate-then-apply sequence for a batch of changes in
// one transaction: lock the affected projection rows, re-validate against the
// locked values, persist the ledger entries, fold the net deltas into the
// projection, and recompute the closed flag of every touched wine.
func (s *stockService) submit(ctx context.Context, changes []movementChange, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	deltas := combineDeltas(changes)
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
	if err := checkResultingStock(deltas, locked); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, ch := range changes {
		switch {
		case ch.oldEntry == nil:
			if err := s.stockRepo.SaveMovementInTx(ctx, tx, *ch.newEntry); err != nil {
				logger.Error("Failed to save movement", slog.String("error", err.Error()), slog.String("movement_id", ch.newEntry.MovementID))
				return fmt.Errorf("failed to save movement: %w", err)
			}
		case ch.newEntry == nil:
			if err := s.stockRepo.DeleteMovementInTx(ctx, tx, ch.oldEntry.MovementID); err != nil {
				logger.Error("Failed to delete movement", slog.String("error", err.Error()), slog.String("movement_id", ch.oldEntry.MovementID))
				return fmt.Errorf("failed to delete movement: %w", err)
			}
		default:
			if err := s.stockRepo.UpdateMovementInTx(ctx, tx, *ch.newEntry); err != nil {
				logger.Error("Failed to update movement", slog.String("error", err.Error()), slog.String("movement_id", ch.newEntry.MovementID))
				return fmt.Errorf("failed to update movement: %w", err)
			}
		}
	}

	if err := s.applyDeltas(ctx, tx, deltas, locked, userID, now); err != nil {
		return err
	}

	if err := s.refreshWineClosedState(ctx, tx, changes, userID, now); err != nil {
		return err
	}

	if err := s.stockRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit stock change: %w", err)
	}

	logger.Info("Stock change applied", slog.Int("changes", len(changes)), slog.Int("keys", len(deltas)))
	return nil
}

// applyDeltas folds the net deltas into the projection rows. Rows that end at
// zero quantity with nothing reserved are removed; rows for keys seen for the
// first time are seeded from the receipt's wine and participant.
func (s *stockService) applyDeltas(ctx context.Context, tx pgx.Tx, deltas map[domain.StockKey]int64, locked map[domain.StockKey]domain.CellarStock, userID string, now time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	for key, delta := range deltas {
		row, exists := locked[key]
		if !exists {
			wineID, participantID, err := s.stockRepo.FindReceiptRefInTx(ctx, tx, key.ReceiptID)
			if err != nil {
				logger.Error("Failed to resolve receipt for new stock row", slog.String("error", err.Error()), slog.String("receipt_id", key.ReceiptID))
				return fmt.Errorf("failed to resolve receipt %s: %w", key.ReceiptID, err)
			}
			row = domain.CellarStock{
				StockID:       uuid.NewString(),
				WineID:        wineID,
				ParticipantID: participantID,
				ReceiptID:     key.ReceiptID,
				LocationID:    key.LocationID,
				BinID:         key.BinID,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
		}

		row.Quantity += delta
		row.LastUpdatedAt = now
		row.LastUpdatedBy = userID

		if row.Quantity == 0 && row.Reserved == 0 {
			if exists {
				if err := s.stockRepo.DeleteStockInTx(ctx, tx, row.StockID); err != nil {
					return fmt.Errorf("failed to remove empty stock row: %w", err)
				}
			}
			continue
		}
		if err := s.stockRepo.UpsertStockInTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to update stock row: %w", err)
		}
	}
	return nil
}

// refreshWineClosedState recomputes the closed flag for every wine touched by
// the batch: a wine with no bottles left anywhere closes, a wine that gained
// bottles reopens.
func (s *stockService) refreshWineClosedState(ctx context.Context, tx pgx.Tx, changes []movementChange, userID string, now time.Time) error {
	receipts := make(map[string]struct{})
	for _, ch := range changes {
		if ch.newEntry != nil {
			receipts[ch.newEntry.ReceiptID] = struct{}{}
		}
		if ch.oldEntry != nil {
			receipts[ch.oldEntry.ReceiptID] = struct{}{}
		}
	}

	wines := make(map[string]struct{}, len(receipts))
	for receiptID := range receipts {
		wineID, _, err := s.stockRepo.FindReceiptRefInTx(ctx, tx, receiptID)
		if err != nil {
			return fmt.Errorf("failed to resolve receipt %s: %w", receiptID, err)
		}
		wines[wineID] = struct{}{}
	}

	for wineID := range wines {
		total, err := s.stockRepo.SumStockForWineInTx(ctx, tx, wineID)
		if err != nil {
			return fmt.Errorf("failed to total stock for wine %s: %w", wineID, err)
		}
		if err := s.stockRepo.SetWineClosedInTx(ctx, tx, wineID, total <= 0, userID, now); err != nil {
			return fmt.Errorf("failed to update closed state for wine %s: %w", wineID, err)
		}
	}
	return nil
}

// CreateMovement records a new ledger entry and applies its effect.
func (s *stockService) CreateMovement(ctx context.Context, req dto.CreateMovementRequest, userID string) (*domain.StockMovement, error) {
	now := time.Now().UTC()
	movement := domain.StockMovement{
		MovementID:   uuid.NewString(),
		ReceiptID:    req.ReceiptID,
		LocationID:   req.LocationID,
		BinID:        req.BinID,
		Direction:    domain.MovementDirection(req.Direction),
		Cause:        domain.MovementCause(req.Cause),
		MovementDate: req.MovementDate,
		Quantity:     req.Quantity,
		Description:  req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.SubmitMovement(ctx, &movement, nil, userID); err != nil {
		return nil, err
	}
	return &movement, nil
}

// UpdateMovement supersedes an existing entry with corrected values. The
// projection is adjusted by the net difference between old and new effect.
func (s *stockService) UpdateMovement(ctx context.Context, movementID string, req dto.UpdateMovementRequest, userID string) (*domain.StockMovement, error) {
	existing, err := s.stockRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to find movement %s: %w", movementID, err)
	}

	updated := *existing
	if req.LocationID != nil {
		updated.LocationID = *req.LocationID
	}
	if req.BinID != nil {
		updated.BinID = *req.BinID
	}
	if req.MovementDate != nil {
		updated.MovementDate = *req.MovementDate
	}
	if req.Quantity != nil {
		updated.Quantity = *req.Quantity
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}

	now := time.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	if err := s.SubmitMovement(ctx, &updated, existing, userID); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteMovement removes an entry and reverses its effect on the projection.
func (s *stockService) DeleteMovement(ctx context.Context, movementID string, userID string) error {
	existing, err := s.stockRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return fmt.Errorf("failed to find movement %s: %w", movementID, err)
	}
	return s.SubmitMovement(ctx, nil, existing, userID)
}

// Drink records consumption at a key. Quantity defaults to a single bottle
// and the date to now, which matches the common case of opening one bottle.
func (s *stockService) Drink(ctx context.Context, req dto.DrinkRequest, userID string) (*domain.StockMovement, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return s.CreateMovement(ctx, dto.CreateMovementRequest{
		ReceiptID:    req.ReceiptID,
		LocationID:   req.LocationID,
		BinID:        req.BinID,
		Direction:    string(domain.Out),
		Cause:        string(domain.CauseDrink),
		MovementDate: date,
		Quantity:     quantity,
	}, userID)
}

// Restock puts a single bottle back into stock, the undo of an accidental
// Drink. The wine reopens automatically when the total becomes positive.
func (s *stockService) Restock(ctx context.Context, req dto.RestockRequest, userID string) (*domain.StockMovement, error) {
	return s.CreateMovement(ctx, dto.CreateMovementRequest{
		ReceiptID:    req.ReceiptID,
		LocationID:   req.LocationID,
		BinID:        req.BinID,
		Direction:    string(domain.In),
		Cause:        string(domain.CauseReceipt),
		MovementDate: time.Now().UTC(),
		Quantity:     1,
	}, userID)
}

// Transfer moves a quantity between two keys of the same receipt: one OUT at
// the source and one IN at the destination, validated and applied together.
func (s *stockService) Transfer(ctx context.Context, req dto.TransferRequest, userID string) error {
	from := domain.StockKey{ReceiptID: req.ReceiptID, LocationID: req.FromLocation, BinID: req.FromBin}
	to := domain.StockKey{ReceiptID: req.ReceiptID, LocationID: req.ToLocation, BinID: req.ToBin}
	if from == to {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSameKeyTransfer)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	out := domain.StockMovement{
		MovementID:   uuid.NewString(),
		ReceiptID:    req.ReceiptID,
		LocationID:   req.FromLocation,
		BinID:        req.FromBin,
		Direction:    domain.Out,
		Cause:        domain.CauseTransfer,
		MovementDate: date,
		Quantity:     req.Quantity,
		AuditFields:  audit,
	}
	in := domain.StockMovement{
		MovementID:   uuid.NewString(),
		ReceiptID:    req.ReceiptID,
		LocationID:   req.ToLocation,
		BinID:        req.ToBin,
		Direction:    domain.In,
		Cause:        domain.CauseTransfer,
		MovementDate: date,
		Quantity:     req.Quantity,
		AuditFields:  audit,
	}

	return s.submit(ctx, []movementChange{
		{newEntry: &out},
		{newEntry: &in},
	}, userID)
}

// GetStockByKey retrieves the projection row for one key.
func (s *stockService) GetStockByKey(ctx context.Context, key domain.StockKey) (*domain.CellarStock, error) {
	return s.stockRepo.FindStockByKey(ctx, key)
}

// ListStockByLocation retrieves all stock rows held at a location.
func (s *stockService) ListStockByLocation(ctx context.Context, locationID string) ([]domain.CellarStock, error) {
	return s.stockRepo.ListStockByLocation(ctx, locationID)
}

// ListStockByReceipt retrieves stock rows across locations for one receipt.
func (s *stockService) ListStockByReceipt(ctx context.Context, receiptID string) ([]domain.CellarStock, error) {
	return s.stockRepo.ListStockByReceipt(ctx, receiptID)
}

// ListStockByWine retrieves stock rows across receipts for one wine.
func (s *stockService) ListStockByWine(ctx context.Context, wineID string) ([]domain.CellarStock, error) {
	return s.stockRepo.ListStockByWine(ctx, wineID)
}

// GetMovementByID retrieves a single ledger entry.
func (s *stockService) GetMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error) {
	return s.stockRepo.FindMovementByID(ctx, movementID)
}

// ListMovementsByReceipt retrieves a paginated movement history for a receipt.
func (s *stockService) ListMovementsByReceipt(ctx context.Context, receiptID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultMovementPageLimit
	}
	movements, nextToken, err := s.stockRepo.ListMovementsByReceipt(ctx, receiptID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return &dto.ListMovementsResponse{
		Movements: dto.ToMovementResponses(movements),
		NextToken: nextToken,
	}, nil
}

// ListMovementsByLocation retrieves a paginated movement history for a location.
func (s *stockService) ListMovementsByLocation(ctx context.Context, locationID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultMovementPageLimit
	}
	movements, nextToken, err := s.stockRepo.ListMovementsByLocation(ctx, locationID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return &dto.ListMovementsResponse{
		Movements: dto.ToMovementResponses(movements),
		NextToken: nextToken,
	}, nil
}
