package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orchid-health/breastcare-backend/internal/service"
	"go.uber.org/zap"
)

// ReportHandler exposes PDF report generation and download.
type ReportHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// GenerateRequest names the assessment record to render.
type GenerateRequest struct {
	RecordID string `json:"record_id" binding:"required"`
}

// Generate renders a stored assessment as a PDF and uploads it
func (h *ReportHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	blobName, err := h.service.GenerateReport(c.Request.Context(), req.RecordID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("failed to generate report",
			zap.Error(err),
			zap.String("record_id", req.RecordID),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to generate report",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blob_name": blobName})
}

// Download streams a previously generated report PDF
func (h *ReportHandler) Download(c *gin.Context) {
	blobName := c.Query("blob_name")
	if blobName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "blob_name query parameter is required",
		})
		return
	}

	data, err := h.service.GetReport(c.Request.Context(), blobName)
	if err != nil {
		h.logger.Error("failed to download report",
			zap.Error(err),
			zap.String("blob_name", blobName),
		)
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "REPORT_NOT_FOUND",
			Message: "Report not found",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="assessment-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
