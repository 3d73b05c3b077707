package repositories

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// LocationRepository defines persistence operations for locations and bins.
type LocationRepository interface {
	// SaveLocation inserts a location.
	SaveLocation(ctx context.Context, location domain.Location) error

	// FindLocationByID retrieves a location with its bins.
	FindLocationByID(ctx context.Context, locationID string) (*domain.Location, error)

	// ListLocations retrieves all locations (headers only).
	ListLocations(ctx context.Context) ([]domain.Location, error)

	// UpdateLocation rewrites a location's mutable fields.
	UpdateLocation(ctx context.Context, location domain.Location) error

	// DeleteLocation removes a location. Callers check for stock first.
	DeleteLocation(ctx context.Context, locationID string) error

	// HasStock reports whether any projection row references the location.
	HasStock(ctx context.Context, locationID string) (bool, error)

	// SaveBin inserts a bin. Duplicate codes within a location surface as
	// apperrors.ErrDuplicate.
	SaveBin(ctx context.Context, bin domain.Bin) error

	// FindBinByID retrieves a bin.
	FindBinByID(ctx context.Context, binID string) (*domain.Bin, error)

	// ListBinsByLocation retrieves all bins of a location ordered by code.
	ListBinsByLocation(ctx context.Context, locationID string) ([]domain.Bin, error)

	// UpdateBin rewrites a bin's mutable fields.
	UpdateBin(ctx context.Context, bin domain.Bin) error

	// DeleteBin removes a bin. Callers check for stock first.
	DeleteBin(ctx context.Context, binID string) error

	// BinHasStock reports whether any projection row references the bin.
	BinHasStock(ctx context.Context, binID string) (bool, error)
}
