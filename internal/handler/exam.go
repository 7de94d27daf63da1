package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orchid-health/breastcare-backend/internal/service"
	"go.uber.org/zap"
)

// ExamHandler exposes the adaptive questionnaire over HTTP.
type ExamHandler struct {
	service *service.ExamService
	logger  *zap.Logger
}

// NewExamHandler creates a new ExamHandler
func NewExamHandler(service *service.ExamService, logger *zap.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger,
	}
}

// RecordAnswerRequest carries one answer for the current question.
type RecordAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Value      any    `json:"value" binding:"required"`
}

// StartSession creates a new questionnaire session
func (h *ExamHandler) StartSession(c *gin.Context) {
	state := h.service.StartSession()
	c.JSON(http.StatusOK, state)
}

// RecordAnswer stores an answer without moving the position
func (h *ExamHandler) RecordAnswer(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var req RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if err := h.service.RecordAnswer(sessionID, req.QuestionID, req.Value); err != nil {
		h.logger.Error("failed to record answer",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Exam session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer recorded"})
}

// Advance moves to the next visible question
func (h *ExamHandler) Advance(c *gin.Context) {
	sessionID := c.Param("sessionId")

	state, err := h.service.Advance(sessionID)
	if err != nil {
		h.logger.Error("failed to advance session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Exam session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Retreat moves back to the previous visible question
func (h *ExamHandler) Retreat(c *gin.Context) {
	sessionID := c.Param("sessionId")

	state, err := h.service.Retreat(sessionID)
	if err != nil {
		h.logger.Error("failed to retreat session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Exam session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Progress reports skip-aware progress for the session
func (h *ExamHandler) Progress(c *gin.Context) {
	sessionID := c.Param("sessionId")

	progress, err := h.service.Progress(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Exam session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Complete scores the session and returns the risk assessment
func (h *ExamHandler) Complete(c *gin.Context) {
	sessionID := c.Param("sessionId")

	result, err := h.service.Complete(c.Request.Context(), sessionID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to complete session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "SESSION_NOT_FOUND",
			Message: "Exam session not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
