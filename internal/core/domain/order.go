package domain

import "time"

// OrderLineStatus is the processing state of an order line.
// OPEN is the only non-terminal state.
type OrderLineStatus string

const (
	LineOpen      OrderLineStatus = "OPEN"
	LineBookedOut OrderLineStatus = "BOOKED_OUT"
	LineVoided    OrderLineStatus = "VOIDED"
)

// Order is a pick-list header. ClosedDate is set automatically once no
// line remains open and cleared again if a new open line is added.
type Order struct {
	OrderID       string      `json:"orderID"`       // Primary Key (UUID)
	ParticipantID string      `json:"participantID"` // FK -> participants (Not Null)
	LocationID    string      `json:"locationID"`    // Source location (Not Null)
	OrderDate     time.Time   `json:"orderDate"`
	ClosedDate    *time.Time  `json:"closedDate"` // Nil while any line is open
	Notes         string      `json:"notes"`      // Nullable
	Lines         []OrderLine `json:"lines,omitempty"`
	AuditFields
}

// OrderLine is one requested pick against a receipt/bin. Only OPEN lines
// count toward reserved stock. QuantityOverride holds the actually-picked
// amount when it differs from the requested quantity.
type OrderLine struct {
	LineID           string          `json:"lineID"`    // Primary Key (UUID)
	OrderID          string          `json:"orderID"`   // FK -> orders (Not Null)
	ReceiptID        string          `json:"receiptID"` // FK -> receipts (Not Null)
	LocationID       string          `json:"locationID"`
	BinID            string          `json:"binID"`     // Empty when unbinned
	Quantity         int64           `json:"quantity"`  // Requested amount, positive
	QuantityOverride *int64          `json:"quantityOverride"`
	Collected        bool            `json:"collected"` // Physically gathered, not yet finalized
	Status           OrderLineStatus `json:"status"`
	AuditFields
}

// Key returns the projection key this line reserves against.
func (l OrderLine) Key() StockKey {
	return StockKey{ReceiptID: l.ReceiptID, LocationID: l.LocationID, BinID: l.BinID}
}

// EffectiveQuantity is the override when set, else the requested quantity.
func (l OrderLine) EffectiveQuantity() int64 {
	if l.QuantityOverride != nil {
		return *l.QuantityOverride
	}
	return l.Quantity
}

// IsOpen reports whether the line still counts toward reserved demand.
func (l OrderLine) IsOpen() bool {
	return l.Status == LineOpen
}

// ReservationDeltas collapses an order-line change into net reserved-quantity
// deltas per projection key. Only lines in OPEN status contribute; a line
// leaving OPEN releases its claim, a line entering OPEN takes one.
func ReservationDeltas(newLine, oldLine *OrderLine) map[StockKey]int64 {
	deltas := make(map[StockKey]int64, 2)
	if oldLine != nil && oldLine.IsOpen() {
		deltas[oldLine.Key()] -= oldLine.EffectiveQuantity()
	}
	if newLine != nil && newLine.IsOpen() {
		deltas[newLine.Key()] += newLine.EffectiveQuantity()
	}
	return deltas
}
