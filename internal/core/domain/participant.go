package domain

// Participant owns or shares stock in the cellar. Participants are linked
// many-to-many to user accounts; user management itself lives elsewhere.
type Participant struct {
	ParticipantID string   `json:"participantID"` // Primary Key (UUID)
	Name          string   `json:"name"`
	UserIDs       []string `json:"userIDs,omitempty"` // Linked user accounts
	AuditFields
}
