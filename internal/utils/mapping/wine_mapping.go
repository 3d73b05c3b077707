package mapping

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/models"
)

// ToModelWine converts a domain Wine to a model Wine
func ToModelWine(d domain.Wine) models.Wine {
	return models.Wine{
		WineID:         d.WineID,
		Name:           d.Name,
		WineDomain:     d.WineDomain,
		WineType:       models.WineType(d.WineType),
		Year:           d.Year,
		Region:         d.Region,
		Classification: d.Classification,
		Notes:          d.Notes,
		Closed:         d.Closed,
		CopyOfID:       d.CopyOfID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWine converts a model Wine to a domain Wine
func ToDomainWine(m models.Wine) domain.Wine {
	return domain.Wine{
		WineID:         m.WineID,
		Name:           m.Name,
		WineDomain:     m.WineDomain,
		WineType:       domain.WineType(m.WineType),
		Year:           m.Year,
		Region:         m.Region,
		Classification: m.Classification,
		Notes:          m.Notes,
		Closed:         m.Closed,
		CopyOfID:       m.CopyOfID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainWineSlice converts a slice of model Wines to a slice of domain Wines
func ToDomainWineSlice(ms []models.Wine) []domain.Wine {
	ds := make([]domain.Wine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWine(m)
	}
	return ds
}

// ToDomainGrape converts a model GrapeVariety to a domain GrapeVariety
func ToDomainGrape(m models.GrapeVariety) domain.GrapeVariety {
	return domain.GrapeVariety{
		GrapeID: m.GrapeID,
		Name:    m.Name,
	}
}

// ToModelGrape converts a domain GrapeVariety to a model GrapeVariety
func ToModelGrape(d domain.GrapeVariety) models.GrapeVariety {
	return models.GrapeVariety{
		GrapeID: d.GrapeID,
		Name:    d.Name,
	}
}
