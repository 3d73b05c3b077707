package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// ParticipantReaderSvc defines read operations for participant data
type ParticipantReaderSvc interface {
	// GetParticipantByID retrieves a specific participant.
	GetParticipantByID(ctx context.Context, participantID string) (*domain.Participant, error)

	// ListParticipants retrieves all participants.
	ListParticipants(ctx context.Context) ([]domain.Participant, error)

	// ListParticipantsByUser retrieves the participants a user is linked to.
	ListParticipantsByUser(ctx context.Context, userID string) ([]domain.Participant, error)
}

// ParticipantWriterSvc defines write operations for participant data
type ParticipantWriterSvc interface {
	// CreateParticipant persists a new participant.
	CreateParticipant(ctx context.Context, req dto.CreateParticipantRequest, userID string) (*domain.Participant, error)

	// UpdateParticipant updates an existing participant's details.
	UpdateParticipant(ctx context.Context, participantID string, req dto.UpdateParticipantRequest, userID string) (*domain.Participant, error)

	// LinkUser associates a user account with a participant.
	LinkUser(ctx context.Context, participantID string, linkedUserID string, userID string) error

	// UnlinkUser removes a user association from a participant.
	UnlinkUser(ctx context.Context, participantID string, linkedUserID string, userID string) error
}

// ParticipantSvcFacade combines all participant-related service interfaces
type ParticipantSvcFacade interface {
	ParticipantReaderSvc
	ParticipantWriterSvc
}
