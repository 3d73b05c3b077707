package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

// locationService manages storage locations and their bins. Bin capacity is
// advisory: surfaced as free space in listings, never enforced on writes.
type locationService struct {
	locationRepo portsrepo.LocationRepository
	stockReader  portsrepo.StockReader
}

// NewLocationService creates a new LocationService.
func NewLocationService(locationRepo portsrepo.LocationRepository, stockReader portsrepo.StockReader) portssvc.LocationSvcFacade {
	return &locationService{
		locationRepo: locationRepo,
		stockReader:  stockReader,
	}
}

var _ portssvc.LocationSvcFacade = (*locationService)(nil)

// GetLocationByID retrieves a location with its bins and per-bin on-hand totals.
func (s *locationService) GetLocationByID(ctx context.Context, locationID string) (*domain.Location, map[string]int64, error) {
	location, err := s.locationRepo.FindLocationByID(ctx, locationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find location %s: %w", locationID, err)
	}
	onHandByBin, err := s.stockReader.SumOnHandByBin(ctx, locationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to total stock per bin: %w", err)
	}
	return location, onHandByBin, nil
}

// ListLocations retrieves all storage locations.
func (s *locationService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.locationRepo.ListLocations(ctx)
}

// GetBinByID retrieves a single bin.
func (s *locationService) GetBinByID(ctx context.Context, binID string) (*domain.Bin, error) {
	return s.locationRepo.FindBinByID(ctx, binID)
}

// CreateLocation persists a new storage location.
func (s *locationService) CreateLocation(ctx context.Context, req dto.CreateLocationRequest, userID string) (*domain.Location, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	location := domain.Location{
		LocationID:  uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.locationRepo.SaveLocation(ctx, location); err != nil {
		logger.Error("Failed to save location", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	logger.Info("Location created", slog.String("location_id", location.LocationID))
	return &location, nil
}

// UpdateLocation updates an existing location's details.
func (s *locationService) UpdateLocation(ctx context.Context, locationID string, req dto.UpdateLocationRequest, userID string) (*domain.Location, error) {
	location, err := s.locationRepo.FindLocationByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find location %s: %w", locationID, err)
	}

	updated := false
	if req.Name != nil {
		location.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		location.Description = *req.Description
		updated = true
	}
	if !updated {
		return location, nil
	}

	now := time.Now().UTC()
	location.LastUpdatedAt = now
	location.LastUpdatedBy = userID

	if err := s.locationRepo.UpdateLocation(ctx, *location); err != nil {
		return nil, fmt.Errorf("failed to save location update: %w", err)
	}
	return location, nil
}

// DeleteLocation removes a location that holds no stock.
func (s *locationService) DeleteLocation(ctx context.Context, locationID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	hasStock, err := s.locationRepo.HasStock(ctx, locationID)
	if err != nil {
		return fmt.Errorf("failed to check location stock: %w", err)
	}
	if hasStock {
		return &apperrors.ReferentialIntegrityError{
			Entity:    "location",
			EntityID:  locationID,
			Dependent: "stock rows",
		}
	}

	if err := s.locationRepo.DeleteLocation(ctx, locationID); err != nil {
		logger.Error("Failed to delete location", slog.String("error", err.Error()), slog.String("location_id", locationID))
		return fmt.Errorf("failed to delete location: %w", err)
	}

	logger.Info("Location deleted", slog.String("location_id", locationID))
	return nil
}

// CreateBin adds a bin to a location. Codes are unique per location; the
// repository surfaces a duplicate as apperrors.ErrDuplicate.
func (s *locationService) CreateBin(ctx context.Context, locationID string, req dto.CreateBinRequest, userID string) (*domain.Bin, error) {
	if _, err := s.locationRepo.FindLocationByID(ctx, locationID); err != nil {
		return nil, fmt.Errorf("failed to find location %s: %w", locationID, err)
	}

	now := time.Now().UTC()
	bin := domain.Bin{
		BinID:      uuid.NewString(),
		LocationID: locationID,
		Code:       req.Code,
		Capacity:   req.Capacity,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.locationRepo.SaveBin(ctx, bin); err != nil {
		return nil, fmt.Errorf("failed to save bin: %w", err)
	}
	return &bin, nil
}

// UpdateBin updates an existing bin's details.
func (s *locationService) UpdateBin(ctx context.Context, binID string, req dto.UpdateBinRequest, userID string) (*domain.Bin, error) {
	bin, err := s.locationRepo.FindBinByID(ctx, binID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bin %s: %w", binID, err)
	}

	updated := false
	if req.Code != nil {
		bin.Code = *req.Code
		updated = true
	}
	if req.Capacity != nil {
		bin.Capacity = *req.Capacity
		updated = true
	}
	if !updated {
		return bin, nil
	}

	now := time.Now().UTC()
	bin.LastUpdatedAt = now
	bin.LastUpdatedBy = userID

	if err := s.locationRepo.UpdateBin(ctx, *bin); err != nil {
		return nil, fmt.Errorf("failed to save bin update: %w", err)
	}
	return bin, nil
}

// DeleteBin removes a bin that holds no stock.
func (s *locationService) DeleteBin(ctx context.Context, binID string, userID string) error {
	hasStock, err := s.locationRepo.BinHasStock(ctx, binID)
	if err != nil {
		return fmt.Errorf("failed to check bin stock: %w", err)
	}
	if hasStock {
		return &apperrors.ReferentialIntegrityError{
			Entity:    "bin",
			EntityID:  binID,
			Dependent: "stock rows",
		}
	}
	if err := s.locationRepo.DeleteBin(ctx, binID); err != nil {
		return fmt.Errorf("failed to delete bin: %w", err)
	}
	return nil
}
