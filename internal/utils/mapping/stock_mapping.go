package mapping

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/models"
)

// ToModelStock converts a domain CellarStock to a model CellarStock
func ToModelStock(d domain.CellarStock) models.CellarStock {
	return models.CellarStock{
		StockID:       d.StockID,
		WineID:        d.WineID,
		ParticipantID: d.ParticipantID,
		ReceiptID:     d.ReceiptID,
		LocationID:    d.LocationID,
		BinID:         d.BinID,
		Quantity:      d.Quantity,
		Reserved:      d.Reserved,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStock converts a model CellarStock to a domain CellarStock
func ToDomainStock(m models.CellarStock) domain.CellarStock {
	return domain.CellarStock{
		StockID:       m.StockID,
		WineID:        m.WineID,
		ParticipantID: m.ParticipantID,
		ReceiptID:     m.ReceiptID,
		LocationID:    m.LocationID,
		BinID:         m.BinID,
		Quantity:      m.Quantity,
		Reserved:      m.Reserved,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStockSlice converts a slice of model CellarStock to domain
func ToDomainStockSlice(ms []models.CellarStock) []domain.CellarStock {
	ds := make([]domain.CellarStock, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStock(m)
	}
	return ds
}

// ToModelMovement converts a domain StockMovement to a model StockMovement
func ToModelMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:   d.MovementID,
		ReceiptID:    d.ReceiptID,
		LocationID:   d.LocationID,
		BinID:        d.BinID,
		Direction:    models.MovementDirection(d.Direction),
		Cause:        string(d.Cause),
		MovementDate: d.MovementDate,
		Quantity:     d.Quantity,
		Description:  d.Description,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMovement converts a model StockMovement to a domain StockMovement
func ToDomainMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:   m.MovementID,
		ReceiptID:    m.ReceiptID,
		LocationID:   m.LocationID,
		BinID:        m.BinID,
		Direction:    domain.MovementDirection(m.Direction),
		Cause:        domain.MovementCause(m.Cause),
		MovementDate: m.MovementDate,
		Quantity:     m.Quantity,
		Description:  m.Description,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMovementSlice converts a slice of model StockMovements to domain
func ToDomainMovementSlice(ms []models.StockMovement) []domain.StockMovement {
	ds := make([]domain.StockMovement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMovement(m)
	}
	return ds
}
