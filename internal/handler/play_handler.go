package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lingo-server/internal/middleware"
	"lingo-server/internal/models"
	"lingo-server/internal/service"
)

// PlayHandler обслуживает HTTP эндпоинты прохождений эпизодов.
type PlayHandler struct {
	service *service.PlayService
	logger  *zap.Logger
}

// NewPlayHandler создает обработчик прохождений.
func NewPlayHandler(service *service.PlayService, logger *zap.Logger) *PlayHandler {
	return &PlayHandler{
		service: service,
		logger:  logger.Named("PlayHandler"),
	}
}

// RegisterRoutes регистрирует маршруты прохождений за auth-middleware.
func (h *PlayHandler) RegisterRoutes(router *gin.Engine, authMW gin.HandlerFunc) {
	plays := router.Group("/play-episodes", authMW)
	{
		plays.GET("/me", h.listMyPlayEpisodes)
		plays.POST("", h.startPlayEpisode)
		plays.GET("/:id", h.getPlayEpisode)
		plays.PATCH("/:id/progress", h.updateProgress)
		plays.POST("/:id/ai-slot", h.generateSlot)
		plays.POST("/:id/ai-input-slot", h.generateReplySlot)
		plays.POST("/:id/complete", h.completePlay)
		plays.GET("/:id/result", h.getPlayResult)
	}
}

type startPlayRequest struct {
	EpisodeID int64 `json:"episodeId" binding:"required"`
}

type generateSlotRequest struct {
	DialogueID int64 `json:"dialogueId" binding:"required"`
}

type generateReplySlotRequest struct {
	DialogueID int64  `json:"dialogueId" binding:"required"`
	Text       string `json:"text"`
}

type listPlaysResponse struct {
	Items      []models.PlayEpisodeSummary `json:"items"`
	NextCursor string                      `json:"nextCursor,omitempty"`
}

func (h *PlayHandler) startPlayEpisode(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req startPlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	view, err := h.service.StartPlayEpisode(c.Request.Context(), userID, req.EpisodeID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	playsStartedTotal.Inc()
	c.JSON(http.StatusCreated, view)
}

func (h *PlayHandler) getPlayEpisode(c *gin.Context) {
	userID, playID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	view, err := h.service.GetPlayEpisode(c.Request.Context(), userID, playID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlayHandler) listMyPlayEpisodes(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = parsed
	}

	items, nextCursor, err := h.service.ListMyPlayEpisodes(c.Request.Context(), userID, c.Query("cursor"), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listPlaysResponse{Items: items, NextCursor: nextCursor})
}

func (h *PlayHandler) updateProgress(c *gin.Context) {
	userID, playID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var upd models.ProgressUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.UpdateProgress(c.Request.Context(), userID, playID, upd); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlayHandler) generateSlot(c *gin.Context) {
	claims, playID, ok := h.pathClaims(c)
	if !ok {
		return
	}

	var req generateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	view, err := h.service.GenerateSlot(c.Request.Context(), claims, playID, req.DialogueID)
	if err != nil {
		slotsGeneratedTotal.WithLabelValues("ai_slot", "error").Inc()
		handleServiceError(c, err)
		return
	}

	slotsGeneratedTotal.WithLabelValues("ai_slot", "success").Inc()
	c.JSON(http.StatusCreated, view)
}

func (h *PlayHandler) generateReplySlot(c *gin.Context) {
	claims, playID, ok := h.pathClaims(c)
	if !ok {
		return
	}

	var req generateReplySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	view, err := h.service.GenerateReplySlot(c.Request.Context(), claims, playID, req.DialogueID, req.Text)
	if err != nil {
		slotsGeneratedTotal.WithLabelValues("ai_input_slot", "error").Inc()
		handleServiceError(c, err)
		return
	}

	slotsGeneratedTotal.WithLabelValues("ai_input_slot", "success").Inc()
	c.JSON(http.StatusCreated, view)
}

func (h *PlayHandler) completePlay(c *gin.Context) {
	userID, playID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	view, err := h.service.CompletePlay(c.Request.Context(), userID, playID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	playsCompletedTotal.Inc()
	c.JSON(http.StatusOK, view)
}

func (h *PlayHandler) getPlayResult(c *gin.Context) {
	userID, playID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	view, err := h.service.GetPlayResult(c.Request.Context(), userID, playID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// pathIDs извлекает id пользователя из контекста и id прохождения из пути.
func (h *PlayHandler) pathIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	playID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid play episode id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, playID, true
}

// pathClaims - как pathIDs, но возвращает полные claims для генерации слотов.
func (h *PlayHandler) pathClaims(c *gin.Context) (*models.Claims, uuid.UUID, bool) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return nil, uuid.Nil, false
	}

	playID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid play episode id"})
		return nil, uuid.Nil, false
	}
	return claims, playID, true
}
