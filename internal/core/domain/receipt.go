package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is one acquisition event: a participant acquiring a wine.
// Deliberately not unique on (participant, wine, date) -- re-ordering the
// same wine produces a second receipt.
type Receipt struct {
	ReceiptID     string          `json:"receiptID"`     // Primary Key (UUID)
	ParticipantID string          `json:"participantID"` // FK -> participants (Not Null)
	WineID        string          `json:"wineID"`        // FK -> wines (Not Null)
	ReceiptDate   time.Time       `json:"receiptDate"`   // Date of acquisition
	Supplier      string          `json:"supplier"`      // Nullable
	Price         decimal.Decimal `json:"price"`         // Purchase price per bottle
	Notes         string          `json:"notes"`         // Nullable
	AuditFields
}
