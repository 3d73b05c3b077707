package domain

// StockKey identifies one projection row. The receipt determines the wine
// and participant, so (receipt, location, bin) is the effective key.
// BinID is empty for stock not placed in a bin.
type StockKey struct {
	ReceiptID  string `json:"receiptID"`
	LocationID string `json:"locationID"`
	BinID      string `json:"binID"`
}

// CellarStock is the materialized projection of the movement ledger: the
// current on-hand and reserved quantity per (receipt, location, bin).
// Rows are owned exclusively by the mutation and reservation engines.
type CellarStock struct {
	StockID       string `json:"stockID"`       // Primary Key (UUID)
	WineID        string `json:"wineID"`        // Denormalized from the receipt
	ParticipantID string `json:"participantID"` // Denormalized from the receipt
	ReceiptID     string `json:"receiptID"`     // FK -> receipts (Not Null)
	LocationID    string `json:"locationID"`    // FK -> locations (Not Null)
	BinID         string `json:"binID"`         // FK -> bins, empty when unbinned
	Quantity      int64  `json:"quantity"`      // On-hand; negative only as a transient state
	Reserved      int64  `json:"reserved"`      // Claimed by open order lines
	AuditFields
}

// Key returns the projection key of this row.
func (s CellarStock) Key() StockKey {
	return StockKey{ReceiptID: s.ReceiptID, LocationID: s.LocationID, BinID: s.BinID}
}

// Available is the on-hand quantity not claimed by open order lines.
func (s CellarStock) Available() int64 {
	return s.Quantity - s.Reserved
}
