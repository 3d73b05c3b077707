package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt represents one acquisition of a wine by a participant.
type Receipt struct {
	ReceiptID     string          `db:"receipt_id"`
	ParticipantID string          `db:"participant_id"`
	WineID        string          `db:"wine_id"`
	ReceiptDate   time.Time       `db:"receipt_date"`
	Supplier      string          `db:"supplier"`
	Price         decimal.Decimal `db:"price"`
	Notes         string          `db:"notes"`
	AuditFields
}
