package services

import (
	"context"
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

// receiptService manages acquisitions. A receipt links a participant to a
// wine and anchors every stock movement and order line for those bottles.
type receiptService struct {
	receiptRepo     portsrepo.ReceiptRepository
	wineRepo        portsrepo.WineRepository
	participantRepo portsrepo.ParticipantRepository
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(receiptRepo portsrepo.ReceiptRepository, wineRepo portsrepo.WineRepository, participantRepo portsrepo.ParticipantRepository) portssvc.ReceiptSvcFacade {
	return &receiptService{
		receiptRepo:     receiptRepo,
		wineRepo:        wineRepo,
		participantRepo: participantRepo,
	}
}

var _ portssvc.ReceiptSvcFacade = (*receiptService)(nil)

// GetReceiptByID retrieves a specific receipt.
func (s *receiptService) GetReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	return s.receiptRepo.FindReceiptByID(ctx, receiptID)
}

// ListReceiptsByParticipant retrieves all receipts owned by a participant.
func (s *receiptService) ListReceiptsByParticipant(ctx context.Context, participantID string) ([]domain.Receipt, error) {
	return s.receiptRepo.ListReceiptsByParticipant(ctx, participantID)
}

// ListReceiptsByWine retrieves all receipts for one wine.
func (s *receiptService) ListReceiptsByWine(ctx context.Context, wineID string) ([]domain.Receipt, error) {
	return s.receiptRepo.ListReceiptsByWine(ctx, wineID)
}

// CreateReceipt persists a new receipt after checking that the referenced
// participant and wine exist.
func (s *receiptService) CreateReceipt(ctx context.Context, req dto.CreateReceiptRequest, userID string) (*domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.participantRepo.FindParticipantByID(ctx, req.ParticipantID); err != nil {
		return nil, fmt.Errorf("failed to find participant %s: %w", req.ParticipantID, err)
	}
	if _, err := s.wineRepo.FindWineByID(ctx, req.WineID); err != nil {
		return nil, fmt.Errorf("failed to find wine %s: %w", req.WineID, err)
	}

	now := time.Now().UTC()
	receipt := domain.Receipt{
		ReceiptID:     uuid.NewString(),
		ParticipantID: req.ParticipantID,
		WineID:        req.WineID,
		ReceiptDate:   req.ReceiptDate,
		Supplier:      req.Supplier,
		Price:         req.Price,
		Notes:         req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.receiptRepo.SaveReceipt(ctx, receipt); err != nil {
		logger.Error("Failed to save receipt", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}

	logger.Info("Receipt created", slog.String("receipt_id", receipt.ReceiptID), slog.String("wine_id", receipt.WineID))
	return &receipt, nil
}

// UpdateReceipt updates an existing receipt's details.
func (s *receiptService) UpdateReceipt(ctx context.Context, receiptID string, req dto.UpdateReceiptRequest, userID string) (*domain.Receipt, error) {
	receipt, err := s.receiptRepo.FindReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptID, err)
	}

	updated := false
	if req.ReceiptDate != nil {
		receipt.ReceiptDate = *req.ReceiptDate
		updated = true
	}
	if req.Supplier != nil {
		receipt.Supplier = *req.Supplier
		updated = true
	}
	if req.Price != nil {
		receipt.Price = *req.Price
		updated = true
	}
	if req.Notes != nil {
		receipt.Notes = *req.Notes
		updated = true
	}
	if !updated {
		return receipt, nil
	}

	now := time.Now().UTC()
	receipt.LastUpdatedAt = now
	receipt.LastUpdatedBy = userID

	if err := s.receiptRepo.UpdateReceipt(ctx, *receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt update: %w", err)
	}
	return receipt, nil
}

// DeleteReceipt removes a receipt. Any movement or order line that still
// references it blocks the delete.
func (s *receiptService) DeleteReceipt(ctx context.Context, receiptID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	hasDependents, err := s.receiptRepo.HasDependents(ctx, receiptID)
	if err != nil {
		return fmt.Errorf("failed to check receipt dependents: %w", err)
	}
	if hasDependents {
		return &apperrors.ReferentialIntegrityError{
			Entity:    "receipt",
			EntityID:  receiptID,
			Dependent: "stock movements or order lines",
		}
	}

	if err := s.receiptRepo.DeleteReceipt(ctx, receiptID); err != nil {
		logger.Error("Failed to delete receipt", slog.String("error", err.Error()), slog.String("receipt_id", receiptID))
		return fmt.Errorf("failed to delete receipt: %w", err)
	}

	logger.Info("Receipt deleted", slog.String("receipt_id", receiptID))
	return nil
}
