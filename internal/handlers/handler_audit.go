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

// auditHandler handles HTTP requests for stock consistency checks.
type auditHandler struct {
	auditService portssvc.AuditSvc
}

// newAuditHandler creates a new auditHandler.
func newAuditHandler(as portssvc.AuditSvc) *auditHandler {
	return &auditHandler{
		auditService: as,
	}
}

// registerAuditRoutes registers the read-only consistency check routes.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvc) {
	h := newAuditHandler(auditService)

	audit := rg.Group("/audit")
	{
		audit.GET("/stock", h.checkAll)
		audit.GET("/locations/:locationID", h.checkLocation)
		audit.GET("/receipts/:receiptID", h.checkReceipt)
	}
}

func (h *auditHandler) checkAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.auditService.CheckAll(c.Request.Context())
	if err != nil {
		logger.Error("Failed to run full stock audit", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run stock audit"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAuditReportResponse(report))
}

func (h *auditHandler) checkLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("locationID")

	report, err := h.auditService.CheckLocation(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Location not found for audit", slog.String("location_id", locationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		logger.Error("Failed to run stock audit for location", slog.String("error", err.Error()), slog.String("location_id", locationID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run stock audit"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAuditReportResponse(report))
}

func (h *auditHandler) checkReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receiptID := c.Param("receiptID")

	report, err := h.auditService.CheckReceipt(c.Request.Context(), receiptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Receipt not found for audit", slog.String("receipt_id", receiptID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
			return
		}
		logger.Error("Failed to run stock audit for receipt", slog.String("error", err.Error()), slog.String("receipt_id", receiptID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run stock audit"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAuditReportResponse(report))
}
