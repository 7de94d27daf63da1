package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"go.uber.org/zap"
)

// Generator renders assessment results as shareable PDF reports.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new Generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{
		logger: logger,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	Record  model.AssessmentRecord
	History []model.AssessmentRecord
}

// Generate creates a PDF report for one assessment, with the stored history
// as a score trend.
func (g *Generator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating assessment report PDF",
		zap.String("record_id", data.Record.ID),
		zap.String("risk_level", string(data.Record.Result.RiskLevel)),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	g.addTitle(pdf, data.Record)
	g.addResultSummary(pdf, data.Record.Result)
	g.addRedFlags(pdf, data.Record.Result.RedFlags)
	g.addReportedSymptoms(pdf, data.Record.Answers)
	g.addGuidance(pdf, data.Record.Result.GuidanceKeys)
	g.addScoreTrend(pdf, data.History)

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("assessment report PDF generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *Generator) addTitle(pdf *gofpdf.Fpdf, record model.AssessmentRecord) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Breast Self-Assessment Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	kind := "Symptom questionnaire"
	if record.Kind == model.AssessmentKindSelfCheck {
		kind = "Guided self-check"
	}

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Assessment type: %s", kind), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Completed: %s", record.Timestamp.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *Generator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addResultSummary adds the risk result section
func (g *Generator) addResultSummary(pdf *gofpdf.Fpdf, result model.RiskAssessment) {
	g.addSectionHeader(pdf, "Result")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Risk level: %s", strings.ToUpper(string(result.RiskLevel))), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Score: %d of %d", result.Score, result.MaxScore), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Recommendation: %s", recommendationLabel(result.Recommendation)), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

// addRedFlags adds the red flag findings section
func (g *Generator) addRedFlags(pdf *gofpdf.Fpdf, redFlags []string) {
	g.addSectionHeader(pdf, "Findings Requiring Attention")

	if len(redFlags) == 0 {
		pdf.CellFormat(0, 8, "No red-flag findings were reported.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, flag := range redFlags {
		pdf.CellFormat(0, 5, fmt.Sprintf("  - %s", questionLabel(flag)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addReportedSymptoms lists the answers in catalog order
func (g *Generator) addReportedSymptoms(pdf *gofpdf.Fpdf, answers model.AnswerSet) {
	g.addSectionHeader(pdf, "Reported Answers")

	if len(answers) == 0 {
		pdf.CellFormat(0, 8, "No answers were recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, q := range catalog.Questions() {
		value, ok := answers[q.ID]
		if !ok {
			continue
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("  %s: %s", questionLabel(q.ID), answerLabel(value)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addGuidance lists the guidance message keys resolved client-side
func (g *Generator) addGuidance(pdf *gofpdf.Fpdf, guidanceKeys []string) {
	g.addSectionHeader(pdf, "Guidance")

	if len(guidanceKeys) == 0 {
		pdf.CellFormat(0, 8, "No guidance available.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, key := range guidanceKeys {
		pdf.CellFormat(0, 5, fmt.Sprintf("  - %s", key), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addScoreTrend adds the history score trend section
func (g *Generator) addScoreTrend(pdf *gofpdf.Fpdf, history []model.AssessmentRecord) {
	g.addSectionHeader(pdf, "Score History")

	if len(history) == 0 {
		pdf.CellFormat(0, 8, "No previous assessments on record.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	maxEntries := 10
	if len(history) < maxEntries {
		maxEntries = len(history)
	}

	for i := 0; i < maxEntries; i++ {
		record := history[i]
		dateStr := record.Timestamp.Format("2006-01-02")
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: score %d, %s risk",
			dateStr, record.Result.Score, record.Result.RiskLevel), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func recommendationLabel(tier model.RecommendationTier) string {
	switch tier {
	case model.RecommendationUrgentConsultation:
		return "Consult a healthcare professional promptly"
	case model.RecommendationScheduleCheckup:
		return "Schedule a clinical checkup"
	default:
		return "Continue regular self-checks"
	}
}

func questionLabel(questionID string) string {
	return strings.ReplaceAll(questionID, "_", " ")
}

func answerLabel(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		return questionLabel(v)
	case []string:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			labels = append(labels, questionLabel(item))
		}
		return strings.Join(labels, ", ")
	case []any:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			labels = append(labels, answerLabel(item))
		}
		return strings.Join(labels, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
