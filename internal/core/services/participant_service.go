package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

// participantService manages the owners of wine in the shared cellar and
// their user-account links.
type participantService struct {
	participantRepo portsrepo.ParticipantRepository
}

// NewParticipantService creates a new ParticipantService.
func NewParticipantService(participantRepo portsrepo.ParticipantRepository) portssvc.ParticipantSvcFacade {
	return &participantService{participantRepo: participantRepo}
}

var _ portssvc.ParticipantSvcFacade = (*participantService)(nil)

// GetParticipantByID retrieves a specific participant.
func (s *participantService) GetParticipantByID(ctx context.Context, participantID string) (*domain.Participant, error) {
	return s.participantRepo.FindParticipantByID(ctx, participantID)
}

// ListParticipants retrieves all participants.
func (s *participantService) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	return s.participantRepo.ListParticipants(ctx)
}

// ListParticipantsByUser retrieves the participants a user is linked to.
func (s *participantService) ListParticipantsByUser(ctx context.Context, userID string) ([]domain.Participant, error) {
	return s.participantRepo.ListParticipantsByUser(ctx, userID)
}

// CreateParticipant persists a new participant.
func (s *participantService) CreateParticipant(ctx context.Context, req dto.CreateParticipantRequest, userID string) (*domain.Participant, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	participant := domain.Participant{
		ParticipantID: uuid.NewString(),
		Name:          req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.participantRepo.SaveParticipant(ctx, participant); err != nil {
		logger.Error("Failed to save participant", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save participant: %w", err)
	}

	logger.Info("Participant created", slog.String("participant_id", participant.ParticipantID))
	return &participant, nil
}

// UpdateParticipant updates an existing participant's details.
func (s *participantService) UpdateParticipant(ctx context.Context, participantID string, req dto.UpdateParticipantRequest, userID string) (*domain.Participant, error) {
	participant, err := s.participantRepo.FindParticipantByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to find participant %s: %w", participantID, err)
	}

	if req.Name == nil {
		return participant, nil
	}
	participant.Name = *req.Name

	now := time.Now().UTC()
	participant.LastUpdatedAt = now
	participant.LastUpdatedBy = userID

	if err := s.participantRepo.UpdateParticipant(ctx, *participant); err != nil {
		return nil, fmt.Errorf("failed to save participant update: %w", err)
	}
	return participant, nil
}

// LinkUser associates a user account with a participant.
func (s *participantService) LinkUser(ctx context.Context, participantID string, linkedUserID string, userID string) error {
	if _, err := s.participantRepo.FindParticipantByID(ctx, participantID); err != nil {
		return fmt.Errorf("failed to find participant %s: %w", participantID, err)
	}
	if err := s.participantRepo.LinkUser(ctx, participantID, linkedUserID); err != nil {
		return fmt.Errorf("failed to link user: %w", err)
	}
	return nil
}

// UnlinkUser removes a user association from a participant.
func (s *participantService) UnlinkUser(ctx context.Context, participantID string, linkedUserID string, userID string) error {
	if err := s.participantRepo.UnlinkUser(ctx, participantID, linkedUserID); err != nil {
		return fmt.Errorf("failed to unlink user: %w", err)
	}
	return nil
}
