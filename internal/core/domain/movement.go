package domain

import "time"

// MovementDirection indicates whether a movement adds to or removes from stock.
type MovementDirection string

const (
	In  MovementDirection = "IN"
	Out MovementDirection = "OUT"
)

// MovementCause records why a movement happened.
type MovementCause string

const (
	CausePurchase MovementCause = "PURCHASE"
	CauseReceipt  MovementCause = "RECEIPT"
	CauseTransfer MovementCause = "TRANSFER"
	CauseDrink    MovementCause = "DRINK"
	CauseBookOut  MovementCause = "BOOK_OUT"
)

// StockMovement is one recorded stock movement, IN or OUT, against a
// (receipt, location, bin) key. Movements are append-style: a legitimate
// edit changes the quantity (reversal + reapplication) or supersedes the
// entry via delete and recreate; direction and receipt are never rewritten
// in place.
type StockMovement struct {
	MovementID   string            `json:"movementID"`   // Primary Key (UUID)
	ReceiptID    string            `json:"receiptID"`    // FK -> receipts (Not Null)
	LocationID   string            `json:"locationID"`   // FK -> locations (Not Null)
	BinID        string            `json:"binID"`        // FK -> bins, empty when unbinned
	Direction    MovementDirection `json:"direction"`    // IN or OUT
	Cause        MovementCause     `json:"cause"`        // PURCHASE, TRANSFER, ...
	MovementDate time.Time         `json:"movementDate"` // Date the movement occurred
	Quantity     int64             `json:"quantity"`     // Positive integer
	Description  string            `json:"description"`  // Nullable free text
	AuditFields
}

// Key returns the projection key this movement applies to.
func (m StockMovement) Key() StockKey {
	return StockKey{ReceiptID: m.ReceiptID, LocationID: m.LocationID, BinID: m.BinID}
}

// Effect is the signed on-hand delta of applying this movement: +Quantity
// for IN, -Quantity for OUT. Reversing a movement is applying -Effect.
func (m StockMovement) Effect() int64 {
	if m.Direction == Out {
		return -m.Quantity
	}
	return m.Quantity
}

// MovementDeltas collapses a movement change into net on-hand deltas per
// projection key: the old entry's effect is reversed and the new entry's
// effect applied. When both touch the same key the two combine
// algebraically into a single delta.
func MovementDeltas(newEntry, oldEntry *StockMovement) map[StockKey]int64 {
	deltas := make(map[StockKey]int64, 2)
	if oldEntry != nil {
		deltas[oldEntry.Key()] -= oldEntry.Effect()
	}
	if newEntry != nil {
		deltas[newEntry.Key()] += newEntry.Effect()
	}
	return deltas
}
