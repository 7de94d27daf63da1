package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/orchid-health/breastcare-backend/internal/service"
	"go.uber.org/zap"
)

// HistoryHandler exposes the stored assessment history: listing, dashboard
// summary, privacy export and erasure.
type HistoryHandler struct {
	history *service.HistoryStore
	summary *service.SummaryService
	audit   service.AuditTrail
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler. audit may be nil.
func NewHistoryHandler(history *service.HistoryStore, summary *service.SummaryService, audit service.AuditTrail, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		summary: summary,
		audit:   audit,
		logger:  logger,
	}
}

// List returns all stored assessment records, most recent first
func (h *HistoryHandler) List(c *gin.Context) {
	records := h.history.Records()
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// Summary returns dashboard aggregates; ?days=N limits the window
func (h *HistoryHandler) Summary(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "days must be a non-negative integer",
			})
			return
		}
		days = parsed
	}

	c.JSON(http.StatusOK, h.summary.GetSummary(days))
}

// Export returns the full history as a downloadable JSON document
func (h *HistoryHandler) Export(c *gin.Context) {
	data, err := h.history.ExportJSON()
	if err != nil {
		h.logger.Error("failed to export history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to export history",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="assessment-history.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Erase deletes the whole assessment history. Unlike appends, erasure is
// synchronous and surfaces failures: the user must know whether their data
// is gone.
func (h *HistoryHandler) Erase(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.history.Clear(ctx); err != nil {
		h.logger.Error("failed to erase history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to erase history",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if h.audit != nil {
		if err := h.audit.LogDelete(ctx, "", "history", "all", c.ClientIP(), c.Request.UserAgent()); err != nil {
			h.logger.Warn("failed to audit history erasure", zap.Error(err))
		}
	}

	h.logger.Info("assessment history erased", zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"message": "Assessment history erased"})
}
