package services

import (
	"context"
	"errors"
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

var ErrWineExists = errors.New("a wine with this name, domain and year already exists")

// wineService manages the wine catalog and grape varieties. The closed flag
// is owned by the stock engine; this service never sets it directly.
type wineService struct {
	wineRepo portsrepo.WineRepository
}

// NewWineService creates a new WineService.
func NewWineService(wineRepo portsrepo.WineRepository) portssvc.WineSvcFacade {
	return &wineService{wineRepo: wineRepo}
}

var _ portssvc.WineSvcFacade = (*wineService)(nil)

// GetWineByID retrieves a specific wine.
func (s *wineService) GetWineByID(ctx context.Context, wineID string) (*domain.Wine, error) {
	return s.wineRepo.FindWineByID(ctx, wineID)
}

// ListWines retrieves wines, hiding closed ones unless asked.
func (s *wineService) ListWines(ctx context.Context, includeClosed bool) ([]domain.Wine, error) {
	return s.wineRepo.ListWines(ctx, includeClosed)
}

// ListGrapes retrieves the grape variety catalog.
func (s *wineService) ListGrapes(ctx context.Context) ([]domain.GrapeVariety, error) {
	return s.wineRepo.ListGrapes(ctx)
}

// CreateWine persists a new wine after checking the (name, domain, year) key.
func (s *wineService) CreateWine(ctx context.Context, req dto.CreateWineRequest, userID string) (*domain.Wine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.wineRepo.FindWineByNaturalKey(ctx, req.Name, req.WineDomain, req.Year)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing wine: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDuplicate, ErrWineExists)
	}

	now := time.Now().UTC()
	grapes := make([]domain.GrapeVariety, len(req.GrapeIDs))
	for i, id := range req.GrapeIDs {
		grapes[i] = domain.GrapeVariety{GrapeID: id}
	}
	wine := domain.Wine{
		WineID:         uuid.NewString(),
		Name:           req.Name,
		WineDomain:     req.WineDomain,
		WineType:       domain.WineType(req.WineType),
		Year:           req.Year,
		Region:         req.Region,
		Classification: req.Classification,
		Notes:          req.Notes,
		Grapes:         grapes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.wineRepo.SaveWine(ctx, wine); err != nil {
		logger.Error("Failed to save wine", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save wine: %w", err)
	}

	logger.Info("Wine created", slog.String("wine_id", wine.WineID), slog.String("name", wine.Name))
	return &wine, nil
}

// UpdateWine updates an existing wine's details.
func (s *wineService) UpdateWine(ctx context.Context, wineID string, req dto.UpdateWineRequest, userID string) (*domain.Wine, error) {
	wine, err := s.wineRepo.FindWineByID(ctx, wineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wine %s: %w", wineID, err)
	}

	updated := false
	if req.Name != nil {
		wine.Name = *req.Name
		updated = true
	}
	if req.WineDomain != nil {
		wine.WineDomain = *req.WineDomain
		updated = true
	}
	if req.WineType != nil {
		wine.WineType = domain.WineType(*req.WineType)
		updated = true
	}
	if req.Year != nil {
		wine.Year = *req.Year
		updated = true
	}
	if req.Region != nil {
		wine.Region = *req.Region
		updated = true
	}
	if req.Classification != nil {
		wine.Classification = *req.Classification
		updated = true
	}
	if req.Notes != nil {
		wine.Notes = *req.Notes
		updated = true
	}
	if req.GrapeIDs != nil {
		grapes := make([]domain.GrapeVariety, len(*req.GrapeIDs))
		for i, id := range *req.GrapeIDs {
			grapes[i] = domain.GrapeVariety{GrapeID: id}
		}
		wine.Grapes = grapes
		updated = true
	}
	if !updated {
		return wine, nil
	}

	now := time.Now().UTC()
	wine.LastUpdatedAt = now
	wine.LastUpdatedBy = userID

	if err := s.wineRepo.UpdateWine(ctx, *wine); err != nil {
		return nil, fmt.Errorf("failed to save wine update: %w", err)
	}
	return wine, nil
}

// CreateCopy duplicates a wine. Copies count against the origin wine's cap no
// matter how deep the copy chain goes, and carry a numbered name suffix.
func (s *wineService) CreateCopy(ctx context.Context, wineID string, userID string) (*domain.Wine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	wine, err := s.wineRepo.FindWineByID(ctx, wineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wine %s: %w", wineID, err)
	}

	originID := wine.CopyOrigin()
	count, err := s.wineRepo.CountCopies(ctx, originID)
	if err != nil {
		return nil, fmt.Errorf("failed to count copies of wine %s: %w", originID, err)
	}
	// The origin itself occupies one of the MaxWineCopies slots.
	if count+1 >= domain.MaxWineCopies {
		return nil, &apperrors.CopyLimitExceededError{WineID: originID, Limit: domain.MaxWineCopies}
	}

	baseName := wine.Name
	if wine.CopyOfID != nil {
		origin, err := s.wineRepo.FindWineByID(ctx, originID)
		if err != nil {
			return nil, fmt.Errorf("failed to find origin wine %s: %w", originID, err)
		}
		baseName = origin.Name
	}

	now := time.Now().UTC()
	copyWine := domain.Wine{
		WineID:         uuid.NewString(),
		Name:           fmt.Sprintf("%s (#%d)", baseName, count+2),
		WineDomain:     wine.WineDomain,
		WineType:       wine.WineType,
		Year:           wine.Year,
		Region:         wine.Region,
		Classification: wine.Classification,
		Notes:          wine.Notes,
		CopyOfID:       &originID,
		Grapes:         wine.Grapes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.wineRepo.SaveWine(ctx, copyWine); err != nil {
		logger.Error("Failed to save wine copy", slog.String("error", err.Error()), slog.String("origin_id", originID))
		return nil, fmt.Errorf("failed to save wine copy: %w", err)
	}

	logger.Info("Wine copied", slog.String("wine_id", copyWine.WineID), slog.String("origin_id", originID))
	return &copyWine, nil
}

// CreateGrape persists a new grape variety.
func (s *wineService) CreateGrape(ctx context.Context, req dto.CreateGrapeRequest, userID string) (*domain.GrapeVariety, error) {
	grape := domain.GrapeVariety{
		GrapeID: uuid.NewString(),
		Name:    req.Name,
	}
	if err := s.wineRepo.SaveGrape(ctx, grape); err != nil {
		return nil, fmt.Errorf("failed to save grape variety: %w", err)
	}
	return &grape, nil
}
