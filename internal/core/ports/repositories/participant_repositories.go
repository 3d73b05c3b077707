package repositories

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// ParticipantRepository defines persistence operations for participants and
// their user-account links.
type ParticipantRepository interface {
	// SaveParticipant inserts a participant.
	SaveParticipant(ctx context.Context, participant domain.Participant) error

	// FindParticipantByID retrieves a participant with its linked user IDs.
	FindParticipantByID(ctx context.Context, participantID string) (*domain.Participant, error)

	// ListParticipants retrieves all participants.
	ListParticipants(ctx context.Context) ([]domain.Participant, error)

	// UpdateParticipant rewrites a participant's mutable fields.
	UpdateParticipant(ctx context.Context, participant domain.Participant) error

	// LinkUser associates a user account with a participant.
	LinkUser(ctx context.Context, participantID, userID string) error

	// UnlinkUser removes a user-account association.
	UnlinkUser(ctx context.Context, participantID, userID string) error

	// ListParticipantsByUser retrieves the participants a user is linked to.
	ListParticipantsByUser(ctx context.Context, userID string) ([]domain.Participant, error)
}
