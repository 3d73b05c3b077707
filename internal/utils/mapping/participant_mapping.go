package mapping

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/models"
)

// ToModelParticipant converts a domain Participant to a model Participant
func ToModelParticipant(d domain.Participant) models.Participant {
	return models.Participant{
		ParticipantID: d.ParticipantID,
		Name:          d.Name,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainParticipant converts a model Participant to a domain Participant.
// Linked user IDs live in a join table and are loaded separately.
func ToDomainParticipant(m models.Participant) domain.Participant {
	return domain.Participant{
		ParticipantID: m.ParticipantID,
		Name:          m.Name,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainParticipantSlice converts a slice of model Participants
func ToDomainParticipantSlice(ms []models.Participant) []domain.Participant {
	ds := make([]domain.Participant, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainParticipant(m)
	}
	return ds
}
