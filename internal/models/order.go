package models

import "time"

// OrderLineStatus indicates the state of an order line.
type OrderLineStatus string

const (
	LineOpen      OrderLineStatus = "OPEN"
	LineBookedOut OrderLineStatus = "BOOKED_OUT"
	LineVoided    OrderLineStatus = "VOIDED"
)

// Order represents a pick list for one participant at one location.
type Order struct {
	OrderID       string     `db:"order_id"`
	ParticipantID string     `db:"participant_id"`
	LocationID    string     `db:"location_id"`
	OrderDate     time.Time  `db:"order_date"`
	ClosedDate    *time.Time `db:"closed_date"`
	Notes         string     `db:"notes"`
	AuditFields
}

// OrderLine represents one requested quantity of a receipt on an order.
// LocationID is denormalized from the order so the reservation key is
// self-contained.
type OrderLine struct {
	LineID           string          `db:"line_id"`
	OrderID          string          `db:"order_id"`
	ReceiptID        string          `db:"receipt_id"`
	LocationID       string          `db:"location_id"`
	BinID            string          `db:"bin_id"`
	Quantity         int64           `db:"quantity"`
	QuantityOverride *int64          `db:"quantity_override"`
	Collected        bool            `db:"collected"`
	Status           OrderLineStatus `db:"status"`
	AuditFields
}
