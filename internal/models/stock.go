package models

import "time"

// CellarStock is the projection row for one (receipt, location, bin) key.
// Quantity and Reserved are derived from movements and open order lines; the
// ledger remains the source of truth.
type CellarStock struct {
	StockID       string `db:"stock_id"`
	WineID        string `db:"wine_id"`
	ParticipantID string `db:"participant_id"`
	ReceiptID     string `db:"receipt_id"`
	LocationID    string `db:"location_id"`
	BinID         string `db:"bin_id"`
	Quantity      int64  `db:"quantity"`
	Reserved      int64  `db:"reserved"`
	AuditFields
}

// MovementDirection indicates whether a movement adds or removes stock.
type MovementDirection string

const (
	In  MovementDirection = "IN"
	Out MovementDirection = "OUT"
)

// StockMovement is one immutable-in-spirit ledger entry. Updates supersede
// the stored values and the projection is adjusted by the net difference.
type StockMovement struct {
	MovementID   string            `db:"movement_id"`
	ReceiptID    string            `db:"receipt_id"`
	LocationID   string            `db:"location_id"`
	BinID        string            `db:"bin_id"`
	Direction    MovementDirection `db:"direction"`
	Cause        string            `db:"cause"`
	MovementDate time.Time         `db:"movement_date"`
	Quantity     int64             `db:"quantity"`
	Description  string            `db:"description"`
	AuditFields
}
