package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

// locationHandler handles HTTP requests related to locations and bins.
type locationHandler struct {
	locationService portssvc.LocationSvcFacade
}

// newLocationHandler creates a new locationHandler.
func newLocationHandler(ls portssvc.LocationSvcFacade) *locationHandler {
	return &locationHandler{
		locationService: ls,
	}
}

// registerLocationRoutes registers routes for locations and their bins.
func registerLocationRoutes(rg *gin.RouterGroup, locationService portssvc.LocationSvcFacade) {
	h := newLocationHandler(locationService)

	locations := rg.Group("/locations")
	{
		locations.POST("", h.createLocation)
		locations.GET("", h.listLocations)
		locations.GET("/:locationID", h.getLocation)
		locations.PUT("/:locationID", h.updateLocation)
		locations.DELETE("/:locationID", h.deleteLocation)
		locations.POST("/:locationID/bins", h.createBin)
	}

	bins := rg.Group("/bins")
	{
		bins.PUT("/:binID", h.updateBin)
		bins.DELETE("/:binID", h.deleteBin)
	}
}

func (h *locationHandler) createLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	location, err := h.locationService.CreateLocation(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to create location in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}

	logger.Info("Location created successfully", slog.String("location_id", location.LocationID))
	c.JSON(http.StatusCreated, dto.ToLocationResponse(location, nil))
}

func (h *locationHandler) getLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	location, onHandByBin, err := h.locationService.GetLocationByID(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Location not found", slog.String("location_id", locationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		logger.Error("Failed to get location from service", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve location"})
		return
	}

	c.JSON(http.StatusOK, dto.ToLocationResponse(location, onHandByBin))
}

func (h *locationHandler) listLocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	locations, err := h.locationService.ListLocations(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list locations from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list locations"})
		return
	}

	responses := make([]dto.LocationResponse, len(locations))
	for i := range locations {
		responses[i] = dto.ToLocationResponse(&locations[i], nil)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *locationHandler) updateLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	location, err := h.locationService.UpdateLocation(c.Request.Context(), locationID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Location not found for update", slog.String("location_id", locationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		logger.Error("Failed to update location in service", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	logger.Info("Location updated successfully", slog.String("location_id", locationID))
	c.JSON(http.StatusOK, dto.ToLocationResponse(location, nil))
}

func (h *locationHandler) deleteLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.locationService.DeleteLocation(c.Request.Context(), locationID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Location not found for delete", slog.String("location_id", locationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Location still holds stock", slog.String("location_id", locationID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to delete location in service", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete location"})
		return
	}

	logger.Info("Location deleted successfully", slog.String("location_id", locationID))
	c.Status(http.StatusNoContent)
}

func (h *locationHandler) createBin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	var req dto.CreateBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBin", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bin, err := h.locationService.CreateBin(c.Request.Context(), locationID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Location not found for bin", slog.String("location_id", locationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Bin code already used at location", slog.String("location_id", locationID), slog.String("code", req.Code))
			c.JSON(http.StatusConflict, gin.H{"error": "A bin with this code already exists at the location"})
			return
		}
		logger.Error("Failed to create bin in service", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bin"})
		return
	}

	logger.Info("Bin created successfully", slog.String("bin_id", bin.BinID), slog.String("location_id", locationID))
	c.JSON(http.StatusCreated, dto.ToBinResponse(bin, 0))
}

func (h *locationHandler) updateBin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	binID := c.Param("binID")

	var req dto.UpdateBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBin", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bin, err := h.locationService.UpdateBin(c.Request.Context(), binID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bin not found for update", slog.String("bin_id", binID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Bin not found"})
			return
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Bin code already used at location", slog.String("bin_id", binID))
			c.JSON(http.StatusConflict, gin.H{"error": "A bin with this code already exists at the location"})
			return
		}
		logger.Error("Failed to update bin in service", slog.String("error", err.Error()), slog.String("bin_id", binID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bin"})
		return
	}

	logger.Info("Bin updated successfully", slog.String("bin_id", binID))
	c.JSON(http.StatusOK, dto.ToBinResponse(bin, 0))
}

func (h *locationHandler) deleteBin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	binID := c.Param("binID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.locationService.DeleteBin(c.Request.Context(), binID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bin not found for delete", slog.String("bin_id", binID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Bin not found"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Bin still holds stock", slog.String("bin_id", binID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to delete bin in service", slog.String("error", err.Error()), slog.String("bin_id", binID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bin"})
		return
	}

	logger.Info("Bin deleted successfully", slog.String("bin_id", binID))
	c.Status(http.StatusNoContent)
}
