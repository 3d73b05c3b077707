package apperrors

import "fmt"

// StockShortageError signals that a ledger change would drive the on-hand
// quantity of a (receipt, location, bin) key negative. The offending key
// and the shortfall are domain-meaningful and surfaced to the user verbatim.
type StockShortageError struct {
	ReceiptID  string
	LocationID string
	BinID      string
	Shortfall  int64 // How many bottles short the key would be
}

func (e *StockShortageError) Error() string {
	if e.BinID != "" {
		return fmt.Sprintf("stock shortage of %d for receipt %s at location %s bin %s", e.Shortfall, e.ReceiptID, e.LocationID, e.BinID)
	}
	return fmt.Sprintf("stock shortage of %d for receipt %s at location %s", e.Shortfall, e.ReceiptID, e.LocationID)
}

func (e *StockShortageError) Unwrap() error { return ErrValidation }

// OverReservationError signals that an order-line change would reserve more
// than the on-hand quantity of a (receipt, location, bin) key.
type OverReservationError struct {
	ReceiptID  string
	LocationID string
	BinID      string
	Requested  int64 // Would-be total reserved quantity
	OnHand     int64
}

func (e *OverReservationError) Error() string {
	return fmt.Sprintf("reservation of %d exceeds on-hand quantity %d for receipt %s at location %s", e.Requested, e.OnHand, e.ReceiptID, e.LocationID)
}

func (e *OverReservationError) Unwrap() error { return ErrValidation }

// ReferentialIntegrityError signals a delete blocked by dependent rows.
// The caller must remove the dependents first; nothing cascades.
type ReferentialIntegrityError struct {
	Entity    string // e.g. "receipt"
	EntityID  string
	Dependent string // e.g. "stock movements"
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: %s still reference it", e.Entity, e.EntityID, e.Dependent)
}

func (e *ReferentialIntegrityError) Unwrap() error { return ErrConflict }

// CopyLimitExceededError signals that the wine copy-duplication cap was hit.
type CopyLimitExceededError struct {
	WineID string
	Limit  int
}

func (e *CopyLimitExceededError) Error() string {
	return fmt.Sprintf("wine %s already has %d copies", e.WineID, e.Limit)
}

func (e *CopyLimitExceededError) Unwrap() error { return ErrConflict }
