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

// orderHandler handles HTTP requests for orders, their lines and the
// fulfillment transitions.
type orderHandler struct {
	orderService portssvc.OrderSvcFacade
}

// newOrderHandler creates a new orderHandler.
func newOrderHandler(os portssvc.OrderSvcFacade) *orderHandler {
	return &orderHandler{
		orderService: os,
	}
}

// registerOrderRoutes registers routes for orders and order lines.
func registerOrderRoutes(rg *gin.RouterGroup, orderService portssvc.OrderSvcFacade) {
	h := newOrderHandler(orderService)

	orders := rg.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:orderID", h.getOrder)
		orders.PUT("/:orderID", h.updateOrder)
		orders.DELETE("/:orderID", h.deleteOrder)
		orders.POST("/:orderID/lines", h.addLine)
		orders.POST("/:orderID/bookout-collected", h.bookOutCollected)
	}

	lines := rg.Group("/order-lines")
	{
		lines.GET("/:lineID", h.getLine)
		lines.PUT("/:lineID", h.updateLine)
		lines.DELETE("/:lineID", h.deleteLine)
		lines.POST("/:lineID/collect", h.collectLine)
		lines.POST("/:lineID/bookout", h.bookOutLine)
		lines.POST("/:lineID/void", h.voidLine)
	}
}

func (h *orderHandler) createOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateOrder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Referenced participant or location not found", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create order in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	logger.Info("Order created successfully", slog.String("order_id", order.OrderID))
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

func (h *orderHandler) getOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order not found", slog.String("order_id", orderID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		logger.Error("Failed to get order from service", slog.String("error", err.Error()), slog.String("order_id", orderID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func (h *orderHandler) listOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var participantID *string
	if pid := c.Query("participantID"); pid != "" {
		participantID = &pid
	}
	includeClosed := c.Query("includeClosed") == "true"

	orders, err := h.orderService.ListOrders(c.Request.Context(), participantID, includeClosed)
	if err != nil {
		logger.Error("Failed to list orders from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponses(orders))
}

func (h *orderHandler) updateOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateOrder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), orderID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order not found for update", slog.String("order_id", orderID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		logger.Error("Failed to update order in service", slog.String("error", err.Error()), slog.String("order_id", orderID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	logger.Info("Order updated successfully", slog.String("order_id", orderID))
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func (h *orderHandler) deleteOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order not found for delete", slog.String("order_id", orderID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Order still has open lines", slog.String("order_id", orderID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to delete order in service", slog.String("error", err.Error()), slog.String("order_id", orderID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}

	logger.Info("Order deleted successfully", slog.String("order_id", orderID))
	c.Status(http.StatusNoContent)
}

func (h *orderHandler) addLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	var req dto.CreateOrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	line, err := h.orderService.AddLine(c.Request.Context(), orderID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order or receipt not found for line", slog.String("order_id", orderID), slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Reservation rejected", slog.String("order_id", orderID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to add order line in service", slog.String("error", err.Error()), slog.String("order_id", orderID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add order line"})
		return
	}

	logger.Info("Order line added successfully", slog.String("order_id", orderID), slog.String("line_id", line.LineID))
	c.JSON(http.StatusCreated, dto.ToOrderLineResponse(line))
}

func (h *orderHandler) getLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lineID := c.Param("lineID")

	line, err := h.orderService.GetOrderLineByID(c.Request.Context(), lineID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order line not found", slog.String("line_id", lineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
			return
		}
		logger.Error("Failed to get order line from service", slog.String("error", err.Error()), slog.String("line_id", lineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order line"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderLineResponse(line))
}

func (h *orderHandler) updateLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lineID := c.Param("lineID")

	var req dto.UpdateOrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	line, err := h.orderService.UpdateLine(c.Request.Context(), lineID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order line not found for update", slog.String("line_id", lineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Order line update rejected", slog.String("line_id", lineID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to update order line in service", slog.String("error", err.Error()), slog.String("line_id", lineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order line"})
		return
	}

	logger.Info("Order line updated successfully", slog.String("line_id", lineID))
	c.JSON(http.StatusOK, dto.ToOrderLineResponse(line))
}

func (h *orderHandler) deleteLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lineID := c.Param("lineID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.orderService.DeleteLine(c.Request.Context(), lineID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order line not found for delete", slog.String("line_id", lineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Order line delete rejected", slog.String("line_id", lineID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to delete order line in service", slog.String("error", err.Error()), slog.String("line_id", lineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order line"})
		return
	}

	logger.Info("Order line deleted successfully", slog.String("line_id", lineID))
	c.Status(http.StatusNoContent)
}

func (h *orderHandler) collectLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lineID := c.Param("lineID")

	var req dto.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Collect", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	line, err := h.orderService.Collect(c.Request.Context(), lineID, req.Collected, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order line not found for collect", slog.String("line_id", lineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Collect rejected", slog.String("line_id", lineID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to collect order line in service", slog.String("error", err.Error()), slog.String("line_id", lineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update collected state"})
		return
	}

	logger.Info("Order line collect state updated", slog.String("line_id", lineID), slog.Bool("collected", req.Collected))
	c.JSON(http.StatusOK, dto.ToOrderLineResponse(line))
}

func (h *orderHandler) bookOutLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lineID := c.Param("lineID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.orderService.BookOut(c.Request.Context(), lineID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order line not found for book-out", slog.String("line_id", lineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Book-out rejected", slog.String("line_id", lineID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to book out order line in service", slog.String("error", err.Error()), slog.String("line_id", lineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book out order line"})
		return
	}

	logger.Info("Order line booked out successfully", slog.String("line_id", lineID))
	c.Status(http.StatusNoContent)
}

func (h *orderHandler) bookOutCollected(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booked, err := h.orderService.BookOutCollected(c.Request.Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order not found for book-out", slog.String("order_id", orderID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Book-out of collected lines rejected", slog.String("order_id", orderID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to book out collected lines in service", slog.String("error", err.Error()), slog.String("order_id", orderID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book out collected lines"})
		return
	}

	logger.Info("Collected lines booked out", slog.String("order_id", orderID), slog.Int("booked", booked))
	c.JSON(http.StatusOK, gin.H{"booked": booked})
}

func (h *orderHandler) voidLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lineID := c.Param("lineID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.orderService.VoidLine(c.Request.Context(), lineID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Order line not found for void", slog.String("line_id", lineID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Order line not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Void rejected", slog.String("line_id", lineID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to void order line in service", slog.String("error", err.Error()), slog.String("line_id", lineID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to void order line"})
		return
	}

	logger.Info("Order line voided successfully", slog.String("line_id", lineID))
	c.Status(http.StatusNoContent)
}
