package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
	"github.com/kelderman/wine_cellar_app/internal/middleware"
)

// stockHandler handles HTTP requests for the stock projection and the
// movement ledger.
type stockHandler struct {
	stockService portssvc.StockSvcFacade
}

// newStockHandler creates a new stockHandler.
func newStockHandler(ss portssvc.StockSvcFacade) *stockHandler {
	return &stockHandler{
		stockService: ss,
	}
}

// registerStockRoutes registers routes for stock rows, movements and the
// drink/restock/transfer conveniences.
func registerStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockSvcFacade) {
	h := newStockHandler(stockService)

	stock := rg.Group("/stock")
	{
		stock.GET("", h.getStockByKey)
		stock.POST("/drink", h.drink)
		stock.POST("/restock", h.restock)
		stock.POST("/transfer", h.transfer)
	}

	movements := rg.Group("/movements")
	{
		movements.POST("", h.createMovement)
		movements.GET("/:movementID", h.getMovement)
		movements.PUT("/:movementID", h.updateMovement)
		movements.DELETE("/:movementID", h.deleteMovement)
	}

	rg.GET("/locations/:locationID/stock", h.listStockByLocation)
	rg.GET("/locations/:locationID/movements", h.listMovementsByLocation)
	rg.GET("/receipts/:receiptID/stock", h.listStockByReceipt)
	rg.GET("/receipts/:receiptID/movements", h.listMovementsByReceipt)
	rg.GET("/wines/:wineID/stock", h.listStockByWine)
}

func (h *stockHandler) getStockByKey(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	key := domain.StockKey{
		ReceiptID:  c.Query("receiptID"),
		LocationID: c.Query("locationID"),
		BinID:      c.Query("binID"),
	}
	if key.ReceiptID == "" || key.LocationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiptID and locationID query parameters are required"})
		return
	}

	stock, err := h.stockService.GetStockByKey(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Debug("No stock at key", slog.String("receipt_id", key.ReceiptID), slog.String("location_id", key.LocationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "No stock at this key"})
			return
		}
		logger.Error("Failed to get stock from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStockResponse(stock))
}

func (h *stockHandler) listStockByLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	stock, err := h.stockService.ListStockByLocation(c.Request.Context(), locationID)
	if err != nil {
		logger.Error("Failed to list stock from service", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stock"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStockResponses(stock))
}

func (h *stockHandler) listStockByReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receiptID := c.Param("receiptID")

	stock, err := h.stockService.ListStockByReceipt(c.Request.Context(), receiptID)
	if err != nil {
		logger.Error("Failed to list stock from service", slog.String("error", err.Error()), slog.String("receipt_id", receiptID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stock"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStockResponses(stock))
}

func (h *stockHandler) listStockByWine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	wineID := c.Param("wineID")

	stock, err := h.stockService.ListStockByWine(c.Request.Context(), wineID)
	if err != nil {
		logger.Error("Failed to list stock from service", slog.String("error", err.Error()), slog.String("wine_id", wineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stock"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStockResponses(stock))
}

func (h *stockHandler) createMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.stockService.CreateMovement(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Movement rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Referenced receipt or location not found", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create movement in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record movement"})
		return
	}

	logger.Info("Movement recorded successfully", slog.String("movement_id", movement.MovementID))
	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

func (h *stockHandler) getMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	movementID := c.Param("movementID")

	movement, err := h.stockService.GetMovementByID(c.Request.Context(), movementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Movement not found", slog.String("movement_id", movementID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Movement not found"})
			return
		}
		logger.Error("Failed to get movement from service", slog.String("error", err.Error()), slog.String("movement_id", movementID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve movement"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}

func (h *stockHandler) updateMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	movementID := c.Param("movementID")

	var req dto.UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.stockService.UpdateMovement(c.Request.Context(), movementID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Movement not found for update", slog.String("movement_id", movementID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Movement not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Movement update rejected", slog.String("movement_id", movementID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to update movement in service", slog.String("error", err.Error()), slog.String("movement_id", movementID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update movement"})
		return
	}

	logger.Info("Movement updated successfully", slog.String("movement_id", movementID))
	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}

func (h *stockHandler) deleteMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	movementID := c.Param("movementID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.stockService.DeleteMovement(c.Request.Context(), movementID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Movement not found for delete", slog.String("movement_id", movementID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Movement not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Movement delete rejected", slog.String("movement_id", movementID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to delete movement in service", slog.String("error", err.Error()), slog.String("movement_id", movementID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete movement"})
		return
	}

	logger.Info("Movement deleted successfully", slog.String("movement_id", movementID))
	c.Status(http.StatusNoContent)
}

func (h *stockHandler) listMovementsByReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receiptID := c.Param("receiptID")

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListMovements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.stockService.ListMovementsByReceipt(c.Request.Context(), receiptID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination token"})
			return
		}
		logger.Error("Failed to list movements from service", slog.String("error", err.Error()), slog.String("receipt_id", receiptID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movements"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *stockHandler) listMovementsByLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListMovements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.stockService.ListMovementsByLocation(c.Request.Context(), locationID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination token"})
			return
		}
		logger.Error("Failed to list movements from service", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movements"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *stockHandler) drink(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Drink", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.stockService.Drink(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Drink rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to record drink in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record drink"})
		return
	}

	logger.Info("Drink recorded successfully", slog.String("movement_id", movement.MovementID))
	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

func (h *stockHandler) restock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Restock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.stockService.Restock(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Restock rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to record restock in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record restock"})
		return
	}

	logger.Info("Restock recorded successfully", slog.String("movement_id", movement.MovementID))
	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

func (h *stockHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.stockService.Transfer(c.Request.Context(), req, userID); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Transfer rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to transfer stock in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer stock"})
		return
	}

	logger.Info("Transfer recorded successfully", slog.String("receipt_id", req.ReceiptID))
	c.Status(http.StatusNoContent)
}
