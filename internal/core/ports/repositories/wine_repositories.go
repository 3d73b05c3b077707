package repositories

import (
	"context"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// WineRepository defines persistence operations for the wine catalog.
type WineRepository interface {
	// SaveWine inserts a wine together with its grape associations.
	SaveWine(ctx context.Context, wine domain.Wine) error

	// FindWineByID retrieves a wine with its grape associations.
	FindWineByID(ctx context.Context, wineID string) (*domain.Wine, error)

	// FindWineByNaturalKey retrieves a wine by its (name, domain, year) key.
	FindWineByNaturalKey(ctx context.Context, name, wineDomain string, year int) (*domain.Wine, error)

	// ListWines retrieves catalog entries, optionally including closed wines.
	ListWines(ctx context.Context, includeClosed bool) ([]domain.Wine, error)

	// UpdateWine rewrites a wine's mutable fields and grape associations.
	UpdateWine(ctx context.Context, wine domain.Wine) error

	// CountCopies counts copies derived from the given origin wine.
	CountCopies(ctx context.Context, originWineID string) (int64, error)

	// SaveGrape inserts a grape variety.
	SaveGrape(ctx context.Context, grape domain.GrapeVariety) error

	// ListGrapes retrieves all grape varieties.
	ListGrapes(ctx context.Context) ([]domain.GrapeVariety, error)
}
