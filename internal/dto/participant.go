package dto

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// CreateParticipantRequest carries the payload for creating a participant.
type CreateParticipantRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateParticipantRequest carries optional field updates for a participant.
type UpdateParticipantRequest struct {
	Name *string `json:"name"`
}

// LinkUserRequest carries the user account to link to a participant.
type LinkUserRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// ParticipantResponse defines the data returned for a participant.
type ParticipantResponse struct {
	ParticipantID string   `json:"participantID"`
	Name          string   `json:"name"`
	UserIDs       []string `json:"userIDs,omitempty"`
}

// ToParticipantResponse converts a domain.Participant to ParticipantResponse.
func ToParticipantResponse(p *domain.Participant) ParticipantResponse {
	return ParticipantResponse{
		ParticipantID: p.ParticipantID,
		Name:          p.Name,
		UserIDs:       p.UserIDs,
	}
}

// ToParticipantResponses converts a slice of domain.Participant.
func ToParticipantResponses(participants []domain.Participant) []ParticipantResponse {
	responses := make([]ParticipantResponse, len(participants))
	for i := range participants {
		responses[i] = ToParticipantResponse(&participants[i])
	}
	return responses
}
