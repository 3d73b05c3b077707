package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// WineReaderSvc defines read operations for wine catalog data
type WineReaderSvc interface {
	// GetWineByID retrieves a specific wine by its unique identifier.
	GetWineByID(ctx context.Context, wineID string) (*domain.Wine, error)

	// ListWines retrieves wines, hiding closed ones unless asked.
	ListWines(ctx context.Context, includeClosed bool) ([]domain.Wine, error)

	// ListGrapes retrieves the grape variety catalog.
	ListGrapes(ctx context.Context) ([]domain.GrapeVariety, error)
}

// WineWriterSvc defines write operations for wine catalog data
type WineWriterSvc interface {
	// CreateWine persists a new wine.
	CreateWine(ctx context.Context, req dto.CreateWineRequest, userID string) (*domain.Wine, error)

	// UpdateWine updates an existing wine's details.
	UpdateWine(ctx context.Context, wineID string, req dto.UpdateWineRequest, userID string) (*domain.Wine, error)

	// CreateCopy duplicates a wine under the copy cap, suffixing the name.
	CreateCopy(ctx context.Context, wineID string, userID string) (*domain.Wine, error)

	// CreateGrape persists a new grape variety.
	CreateGrape(ctx context.Context, req dto.CreateGrapeRequest, userID string) (*domain.GrapeVariety, error)
}

// WineSvcFacade combines all wine-related service interfaces
type WineSvcFacade interface {
	WineReaderSvc
	WineWriterSvc
}
