package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orchid-health/breastcare-backend/internal/service"
	"go.uber.org/zap"
)

// SelfCheckHandler exposes the guided self-check flow over HTTP.
type SelfCheckHandler struct {
	service *service.SelfCheckService
	logger  *zap.Logger
}

// NewSelfCheckHandler creates a new SelfCheckHandler
func NewSelfCheckHandler(service *service.SelfCheckService, logger *zap.Logger) *SelfCheckHandler {
	return &SelfCheckHandler{
		service: service,
		logger:  logger,
	}
}

// ChatReplyRequest carries a quick-reply value for the active chat question.
type ChatReplyRequest struct {
	Value string `json:"value" binding:"required"`
}

// ClarifyRequest carries a free-text clarification question.
type ClarifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// StartSession begins a guided self-check
func (h *SelfCheckHandler) StartSession(c *gin.Context) {
	state := h.service.StartSession()
	c.JSON(http.StatusOK, state)
}

// NextInstruction advances within the current step's instruction pages
func (h *SelfCheckHandler) NextInstruction(c *gin.Context) {
	sessionID := c.Param("sessionId")

	state, advanced, err := h.service.NextInstruction(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Self-check session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":    state,
		"advanced": advanced,
	})
}

// PreviousInstruction moves back one instruction page
func (h *SelfCheckHandler) PreviousInstruction(c *gin.Context) {
	sessionID := c.Param("sessionId")

	state, err := h.service.PreviousInstruction(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Self-check session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

// EnterChat switches the current step to its conversational phase
func (h *SelfCheckHandler) EnterChat(c *gin.Context) {
	sessionID := c.Param("sessionId")

	state, err := h.service.EnterChat(c.Request.Context(), sessionID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to enter chat phase",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Self-check session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

// ChatReply submits a quick-reply answer for the active chat question
func (h *SelfCheckHandler) ChatReply(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var req ChatReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	state, err := h.service.ChatReply(c.Request.Context(), sessionID, req.Value, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to submit chat reply",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "INVALID_PHASE",
			Message: "Session is not accepting chat replies",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Clarify forwards a free-text clarification to the conversational component
func (h *SelfCheckHandler) Clarify(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var req ClarifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	message, err := h.service.Clarify(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "INVALID_PHASE",
			Message: "Session is not accepting clarifications",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Progress reports the virtual-page progress across all steps
func (h *SelfCheckHandler) Progress(c *gin.Context) {
	sessionID := c.Param("sessionId")

	progress, err := h.service.Progress(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Self-check session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Reset returns the session to the landing phase
func (h *SelfCheckHandler) Reset(c *gin.Context) {
	sessionID := c.Param("sessionId")

	state, err := h.service.Reset(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Self-check session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}
