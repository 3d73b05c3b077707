package mapping

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/models"
)

// ToModelOrder converts a domain Order to a model Order
func ToModelOrder(d domain.Order) models.Order {
	return models.Order{
		OrderID:       d.OrderID,
		ParticipantID: d.ParticipantID,
		LocationID:    d.LocationID,
		OrderDate:     d.OrderDate,
		ClosedDate:    d.ClosedDate,
		Notes:         d.Notes,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOrder converts a model Order to a domain Order. Lines are loaded
// separately.
func ToDomainOrder(m models.Order) domain.Order {
	return domain.Order{
		OrderID:       m.OrderID,
		ParticipantID: m.ParticipantID,
		LocationID:    m.LocationID,
		OrderDate:     m.OrderDate,
		ClosedDate:    m.ClosedDate,
		Notes:         m.Notes,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOrderSlice converts a slice of model Orders to domain Orders
func ToDomainOrderSlice(ms []models.Order) []domain.Order {
	ds := make([]domain.Order, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOrder(m)
	}
	return ds
}

// ToModelOrderLine converts a domain OrderLine to a model OrderLine
func ToModelOrderLine(d domain.OrderLine) models.OrderLine {
	return models.OrderLine{
		LineID:           d.LineID,
		OrderID:          d.OrderID,
		ReceiptID:        d.ReceiptID,
		LocationID:       d.LocationID,
		BinID:            d.BinID,
		Quantity:         d.Quantity,
		QuantityOverride: d.QuantityOverride,
		Collected:        d.Collected,
		Status:           models.OrderLineStatus(d.Status),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOrderLine converts a model OrderLine to a domain OrderLine
func ToDomainOrderLine(m models.OrderLine) domain.OrderLine {
	return domain.OrderLine{
		LineID:           m.LineID,
		OrderID:          m.OrderID,
		ReceiptID:        m.ReceiptID,
		LocationID:       m.LocationID,
		BinID:            m.BinID,
		Quantity:         m.Quantity,
		QuantityOverride: m.QuantityOverride,
		Collected:        m.Collected,
		Status:           domain.OrderLineStatus(m.Status),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOrderLineSlice converts a slice of model OrderLines to domain
func ToDomainOrderLineSlice(ms []models.OrderLine) []domain.OrderLine {
	ds := make([]domain.OrderLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOrderLine(m)
	}
	return ds
}
