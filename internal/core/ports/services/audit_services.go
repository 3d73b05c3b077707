package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// AuditSvc recomputes stock truth from the ledger and open demand from order
// lines, and reports every key where the projection has drifted.
type AuditSvc interface {
	// CheckLocation audits all keys at one location.
	CheckLocation(ctx context.Context, locationID string) (*domain.StockAuditReport, error)

	// CheckReceipt audits all keys for one receipt.
	CheckReceipt(ctx context.Context, receiptID string) (*domain.StockAuditReport, error)

	// CheckAll audits the entire cellar.
	CheckAll(ctx context.Context) (*domain.StockAuditReport, error)
}
