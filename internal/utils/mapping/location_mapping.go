package mapping

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/models"
)

// ToModelLocation converts a domain Location to a model Location
func ToModelLocation(d domain.Location) models.Location {
	return models.Location{
		LocationID:  d.LocationID,
		Name:        d.Name,
		Description: d.Description,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLocation converts a model Location to a domain Location
func ToDomainLocation(m models.Location) domain.Location {
	return domain.Location{
		LocationID:  m.LocationID,
		Name:        m.Name,
		Description: m.Description,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLocationSlice converts a slice of model Locations to domain Locations
func ToDomainLocationSlice(ms []models.Location) []domain.Location {
	ds := make([]domain.Location, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLocation(m)
	}
	return ds
}

// ToModelBin converts a domain Bin to a model Bin
func ToModelBin(d domain.Bin) models.Bin {
	return models.Bin{
		BinID:       d.BinID,
		LocationID:  d.LocationID,
		Code:        d.Code,
		Capacity:    d.Capacity,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBin converts a model Bin to a domain Bin
func ToDomainBin(m models.Bin) domain.Bin {
	return domain.Bin{
		BinID:       m.BinID,
		LocationID:  m.LocationID,
		Code:        m.Code,
		Capacity:    m.Capacity,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBinSlice converts a slice of model Bins to domain Bins
func ToDomainBinSlice(ms []models.Bin) []domain.Bin {
	ds := make([]domain.Bin, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBin(m)
	}
	return ds
}
