package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// ReservationSvc defines the validate-then-apply core for order line
// reservations. A change is expressed as a (newLine, oldLine) pair just like
// ledger changes: create is (new, nil), update is (new, old), delete or void
// is (nil, old). Only lines in the OPEN state hold a reservation.
type ReservationSvc interface {
	// ValidateReservation checks a hypothetical line change against current
	// availability without persisting anything.
	ValidateReservation(ctx context.Context, newLine, oldLine *domain.OrderLine) error

	// SubmitOrderLine validates and applies a line change in a single
	// transaction, persisting the line and adjusting reserved quantities on
	// the affected stock rows.
	SubmitOrderLine(ctx context.Context, newLine, oldLine *domain.OrderLine, userID string) error
}
