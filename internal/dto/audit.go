package dto

import (
	"time"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// AuditRowResponse defines one checked stock key in a consistency report.
type AuditRowResponse struct {
	ReceiptID  string `json:"receiptID"`
	LocationID string `json:"locationID"`
	BinID      string `json:"binID,omitempty"`
	OnHand     int64  `json:"onHand"`
	TotalIn    int64  `json:"totalIn"`
	TotalOut   int64  `json:"totalOut"`
	Reserved   int64  `json:"reserved"`
	OpenDemand int64  `json:"openDemand"`
	Correct    bool   `json:"correct"`
}

// AuditReportResponse defines the data returned for a consistency check.
type AuditReportResponse struct {
	Scope      string             `json:"scope"`
	CheckedAt  time.Time          `json:"checkedAt"`
	DriftCount int                `json:"driftCount"`
	Rows       []AuditRowResponse `json:"rows"`
}

// ToAuditReportResponse converts a domain.StockAuditReport.
func ToAuditReportResponse(r *domain.StockAuditReport) AuditReportResponse {
	rows := make([]AuditRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = AuditRowResponse{
			ReceiptID:  row.ReceiptID,
			LocationID: row.LocationID,
			BinID:      row.BinID,
			OnHand:     row.OnHand,
			TotalIn:    row.TotalIn,
			TotalOut:   row.TotalOut,
			Reserved:   row.Reserved,
			OpenDemand: row.OpenDemand,
			Correct:    row.Correct,
		}
	}
	return AuditReportResponse{
		Scope:      r.Scope,
		CheckedAt:  r.CheckedAt,
		DriftCount: r.DriftCount,
		Rows:       rows,
	}
}
