package services

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// LocationReaderSvc defines read operations for storage locations and bins
type LocationReaderSvc interface {
	// GetLocationByID retrieves a location including its bins, with per-bin
	// on-hand totals for advisory free-space reporting.
	GetLocationByID(ctx context.Context, locationID string) (*domain.Location, map[string]int64, error)

	// ListLocations retrieves all storage locations.
	ListLocations(ctx context.Context) ([]domain.Location, error)

	// GetBinByID retrieves a single bin.
	GetBinByID(ctx context.Context, binID string) (*domain.Bin, error)
}

// LocationWriterSvc defines write operations for locations and bins
type LocationWriterSvc interface {
	// CreateLocation persists a new storage location.
	CreateLocation(ctx context.Context, req dto.CreateLocationRequest, userID string) (*domain.Location, error)

	// UpdateLocation updates an existing location's details.
	UpdateLocation(ctx context.Context, locationID string, req dto.UpdateLocationRequest, userID string) (*domain.Location, error)

	// DeleteLocation removes a location that holds no stock.
	DeleteLocation(ctx context.Context, locationID string, userID string) error

	// CreateBin adds a bin to a location. Codes are unique per location.
	CreateBin(ctx context.Context, locationID string, req dto.CreateBinRequest, userID string) (*domain.Bin, error)

	// UpdateBin updates an existing bin's details.
	UpdateBin(ctx context.Context, binID string, req dto.UpdateBinRequest, userID string) (*domain.Bin, error)

	// DeleteBin removes a bin that holds no stock.
	DeleteBin(ctx context.Context, binID string, userID string) error
}

// LocationSvcFacade combines all location-related service interfaces
type LocationSvcFacade interface {
	LocationReaderSvc
	LocationWriterSvc
}
