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

// participantHandler handles HTTP requests related to participants.
type participantHandler struct {
	participantService portssvc.ParticipantSvcFacade
}

// newParticipantHandler creates a new participantHandler.
func newParticipantHandler(ps portssvc.ParticipantSvcFacade) *participantHandler {
	return &participantHandler{
		participantService: ps,
	}
}

// registerParticipantRoutes registers routes for participants and their
// user-account links.
func registerParticipantRoutes(rg *gin.RouterGroup, participantService portssvc.ParticipantSvcFacade) {
	h := newParticipantHandler(participantService)

	participants := rg.Group("/participants")
	{
		participants.POST("", h.createParticipant)
		participants.GET("", h.listParticipants)
		participants.GET("/mine", h.listMyParticipants)
		participants.GET("/:participantID", h.getParticipant)
		participants.PUT("/:participantID", h.updateParticipant)
		participants.POST("/:participantID/users", h.linkUser)
		participants.DELETE("/:participantID/users/:userID", h.unlinkUser)
	}
}

func (h *participantHandler) createParticipant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateParticipant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	participant, err := h.participantService.CreateParticipant(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to create participant in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create participant"})
		return
	}

	logger.Info("Participant created successfully", slog.String("participant_id", participant.ParticipantID))
	c.JSON(http.StatusCreated, dto.ToParticipantResponse(participant))
}

func (h *participantHandler) getParticipant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	participantID := c.Param("participantID")

	participant, err := h.participantService.GetParticipantByID(c.Request.Context(), participantID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Participant not found", slog.String("participant_id", participantID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
			return
		}
		logger.Error("Failed to get participant from service", slog.String("error", err.Error()), slog.String("participant_id", participantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve participant"})
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipantResponse(participant))
}

func (h *participantHandler) listParticipants(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	participants, err := h.participantService.ListParticipants(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list participants from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list participants"})
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipantResponses(participants))
}

// listMyParticipants lists the participants linked to the calling user.
func (h *participantHandler) listMyParticipants(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	participants, err := h.participantService.ListParticipantsByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list participants of user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list participants"})
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipantResponses(participants))
}

func (h *participantHandler) updateParticipant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	participantID := c.Param("participantID")

	var req dto.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateParticipant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	participant, err := h.participantService.UpdateParticipant(c.Request.Context(), participantID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Participant not found for update", slog.String("participant_id", participantID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
			return
		}
		logger.Error("Failed to update participant in service", slog.String("error", err.Error()), slog.String("participant_id", participantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update participant"})
		return
	}

	logger.Info("Participant updated successfully", slog.String("participant_id", participantID))
	c.JSON(http.StatusOK, dto.ToParticipantResponse(participant))
}

func (h *participantHandler) linkUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	participantID := c.Param("participantID")

	var req dto.LinkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LinkUser", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.participantService.LinkUser(c.Request.Context(), participantID, req.UserID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Participant not found for link", slog.String("participant_id", participantID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
			return
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("User already linked", slog.String("participant_id", participantID), slog.String("linked_user_id", req.UserID))
			c.JSON(http.StatusConflict, gin.H{"error": "User is already linked to this participant"})
			return
		}
		logger.Error("Failed to link user in service", slog.String("error", err.Error()), slog.String("participant_id", participantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link user"})
		return
	}

	logger.Info("User linked to participant", slog.String("participant_id", participantID), slog.String("linked_user_id", req.UserID))
	c.Status(http.StatusNoContent)
}

func (h *participantHandler) unlinkUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	participantID := c.Param("participantID")
	linkedUserID := c.Param("userID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.participantService.UnlinkUser(c.Request.Context(), participantID, linkedUserID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Link not found for unlink", slog.String("participant_id", participantID), slog.String("linked_user_id", linkedUserID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		logger.Error("Failed to unlink user in service", slog.String("error", err.Error()), slog.String("participant_id", participantID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlink user"})
		return
	}

	logger.Info("User unlinked from participant", slog.String("participant_id", participantID), slog.String("linked_user_id", linkedUserID))
	c.Status(http.StatusNoContent)
}
