package domain

import "time"

// StockAuditRow compares one projection key against the movement ledger
// and the open order lines. Correct means both comparisons hold.
type StockAuditRow struct {
	ReceiptID  string `json:"receiptID"`
	LocationID string `json:"locationID"`
	BinID      string `json:"binID"`
	OnHand     int64  `json:"onHand"`     // Projected quantity
	TotalIn    int64  `json:"totalIn"`    // Sum of IN movements
	TotalOut   int64  `json:"totalOut"`   // Sum of OUT movements
	Reserved   int64  `json:"reserved"`   // Projected reserved quantity
	OpenDemand int64  `json:"openDemand"` // Sum of open order-line quantities
	Correct    bool   `json:"correct"`
}

// Drifted reports whether the projection disagrees with the ledger or the
// open order lines for this key.
func (r StockAuditRow) Drifted() bool {
	return r.OnHand != r.TotalIn-r.TotalOut || r.Reserved != r.OpenDemand
}

// StockAuditReport is the read-only result of a consistency check.
// Discrepancies are surfaced, never healed.
type StockAuditReport struct {
	Scope      string          `json:"scope"` // "location:<id>", "receipt:<id>" or "all"
	CheckedAt  time.Time       `json:"checkedAt"`
	Rows       []StockAuditRow `json:"rows"`
	DriftCount int             `json:"driftCount"`
}
