package models

// Participant represents an owner of wine in the shared cellar.
type Participant struct {
	ParticipantID string `db:"participant_id"`
	Name          string `db:"name"`
	AuditFields
}
