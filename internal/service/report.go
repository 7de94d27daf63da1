package service

import (
	"context"
	"fmt"

	"github.com/orchid-health/breastcare-backend/internal/azure"
	"github.com/orchid-health/breastcare-backend/internal/pdf"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"go.uber.org/zap"
)

// ReportService renders an assessment record as a PDF and stores it in blob
// storage. Unlike history persistence, report generation surfaces errors:
// the caller asked for a document and needs to know it is missing.
type ReportService struct {
	history    *HistoryStore
	blobClient azure.BlobStorage
	pdfGen     *pdf.Generator
	audit      AuditTrail
	logger     *zap.Logger
}

// NewReportService creates a new ReportService. audit may be nil.
func NewReportService(history *HistoryStore, blobClient azure.BlobStorage, pdfGen *pdf.Generator, audit AuditTrail, logger *zap.Logger) *ReportService {
	return &ReportService{
		history:    history,
		blobClient: blobClient,
		pdfGen:     pdfGen,
		audit:      audit,
		logger:     logger,
	}
}

// GenerateReport builds a PDF for one stored assessment record, including
// the surrounding score trend, and uploads it. Returns the blob name.
func (s *ReportService) GenerateReport(ctx context.Context, recordID, clientIP, userAgent string) (string, error) {
	s.logger.Info("generating assessment report", zap.String("record_id", recordID))

	records := s.history.Records()
	var record *model.AssessmentRecord
	for i := range records {
		if records[i].ID == recordID {
			record = &records[i]
			break
		}
	}
	if record == nil {
		return "", fmt.Errorf("assessment record not found: %s", recordID)
	}

	pdfBytes, err := s.pdfGen.Generate(&pdf.ReportData{
		Record:  *record,
		History: records,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate report PDF: %w", err)
	}

	blobName, err := s.blobClient.UploadReport(ctx, fmt.Sprintf("%s.pdf", recordID), pdfBytes)
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, "", "report", blobName, clientIP, userAgent); err != nil {
			s.logger.Warn("failed to audit report generation", zap.Error(err))
		}
	}

	s.logger.Info("assessment report generated",
		zap.String("record_id", recordID),
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(pdfBytes)),
	)
	return blobName, nil
}

// GetReport downloads a previously generated report.
func (s *ReportService) GetReport(ctx context.Context, blobName string) ([]byte, error) {
	data, err := s.blobClient.DownloadReport(ctx, blobName)
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	return data, nil
}
