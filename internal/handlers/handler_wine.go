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

// wineHandler handles HTTP requests related to the wine catalog.
type wineHandler struct {
	wineService portssvc.WineSvcFacade
}

// newWineHandler creates a new wineHandler.
func newWineHandler(ws portssvc.WineSvcFacade) *wineHandler {
	return &wineHandler{
		wineService: ws,
	}
}

// registerWineRoutes registers routes for wines and grape varieties.
func registerWineRoutes(rg *gin.RouterGroup, wineService portssvc.WineSvcFacade) {
	h := newWineHandler(wineService)

	wines := rg.Group("/wines")
	{
		wines.POST("", h.createWine)
		wines.GET("", h.listWines)
		wines.GET("/:wineID", h.getWine)
		wines.PUT("/:wineID", h.updateWine)
		wines.POST("/:wineID/copy", h.createCopy)
	}

	grapes := rg.Group("/grapes")
	{
		grapes.POST("", h.createGrape)
		grapes.GET("", h.listGrapes)
	}
}

func (h *wineHandler) createWine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateWineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateWine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wine, err := h.wineService.CreateWine(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Wine already exists", slog.String("name", req.Name))
			c.JSON(http.StatusConflict, gin.H{"error": "A wine with this name, domain and year already exists"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating wine", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create wine in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wine"})
		return
	}

	logger.Info("Wine created successfully", slog.String("wine_id", wine.WineID))
	c.JSON(http.StatusCreated, dto.ToWineResponse(wine))
}

func (h *wineHandler) getWine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	wineID := c.Param("wineID")

	wine, err := h.wineService.GetWineByID(c.Request.Context(), wineID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wine not found", slog.String("wine_id", wineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wine not found"})
			return
		}
		logger.Error("Failed to get wine from service", slog.String("error", err.Error()), slog.String("wine_id", wineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wine"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWineResponse(wine))
}

func (h *wineHandler) listWines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	includeClosed := c.Query("includeClosed") == "true"

	wines, err := h.wineService.ListWines(c.Request.Context(), includeClosed)
	if err != nil {
		logger.Error("Failed to list wines from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list wines"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWineResponses(wines))
}

func (h *wineHandler) updateWine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	wineID := c.Param("wineID")

	var req dto.UpdateWineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateWine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wine, err := h.wineService.UpdateWine(c.Request.Context(), wineID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wine not found for update", slog.String("wine_id", wineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wine not found"})
			return
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Wine update collides with existing natural key", slog.String("wine_id", wineID))
			c.JSON(http.StatusConflict, gin.H{"error": "A wine with this name, domain and year already exists"})
			return
		}
		logger.Error("Failed to update wine in service", slog.String("error", err.Error()), slog.String("wine_id", wineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wine"})
		return
	}

	logger.Info("Wine updated successfully", slog.String("wine_id", wineID))
	c.JSON(http.StatusOK, dto.ToWineResponse(wine))
}

func (h *wineHandler) createCopy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	wineID := c.Param("wineID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	copyWine, err := h.wineService.CreateCopy(c.Request.Context(), wineID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wine not found for copy", slog.String("wine_id", wineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wine not found"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Copy limit reached", slog.String("wine_id", wineID), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to copy wine in service", slog.String("error", err.Error()), slog.String("wine_id", wineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to copy wine"})
		return
	}

	logger.Info("Wine copied successfully", slog.String("wine_id", wineID), slog.String("copy_id", copyWine.WineID))
	c.JSON(http.StatusCreated, dto.ToWineResponse(copyWine))
}

func (h *wineHandler) createGrape(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateGrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGrape", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	grape, err := h.wineService.CreateGrape(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Grape variety already exists", slog.String("name", req.Name))
			c.JSON(http.StatusConflict, gin.H{"error": "Grape variety already exists"})
			return
		}
		logger.Error("Failed to create grape variety in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create grape variety"})
		return
	}

	logger.Info("Grape variety created successfully", slog.String("grape_id", grape.GrapeID))
	c.JSON(http.StatusCreated, grape)
}

func (h *wineHandler) listGrapes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	grapes, err := h.wineService.ListGrapes(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list grape varieties from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list grape varieties"})
		return
	}

	c.JSON(http.StatusOK, grapes)
}
