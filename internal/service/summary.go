package service

import (
	"time"

	"github.com/orchid-health/breastcare-backend/pkg/model"
	"go.uber.org/zap"
)

// TrendPoint is one completed assessment on the score timeline.
type TrendPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Score     int             `json:"score"`
	RiskLevel model.RiskLevel `json:"risk_level"`
}

// HistorySummary aggregates the stored assessment records for the home
// dashboard: how often the user checks, how results are distributed and how
// the score moves over time.
type HistorySummary struct {
	TotalAssessments int                     `json:"total_assessments"`
	TierCounts       map[model.RiskLevel]int `json:"tier_counts"`
	LatestResult     *model.RiskAssessment   `json:"latest_result,omitempty"`
	LatestAt         *time.Time              `json:"latest_at,omitempty"`
	ScoreTrend       []TrendPoint            `json:"score_trend"`
}

// SummaryService derives dashboard aggregates from the history store.
type SummaryService struct {
	history *HistoryStore
	logger  *zap.Logger
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(history *HistoryStore, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		history: history,
		logger:  logger,
	}
}

// GetSummary aggregates records from the last `days` days; days <= 0 means
// the whole history. The trend is returned oldest first so it plots
// left-to-right.
func (s *SummaryService) GetSummary(days int) HistorySummary {
	records := s.history.Records()

	var cutoff time.Time
	if days > 0 {
		cutoff = time.Now().AddDate(0, 0, -days)
	}

	summary := HistorySummary{
		TierCounts: map[model.RiskLevel]int{
			model.RiskLevelLow:      0,
			model.RiskLevelModerate: 0,
			model.RiskLevelHigh:     0,
		},
		ScoreTrend: []TrendPoint{},
	}

	// Records are most-recent-first; the first one in range is the latest.
	for _, r := range records {
		if days > 0 && r.Timestamp.Before(cutoff) {
			continue
		}
		summary.TotalAssessments++
		summary.TierCounts[r.Result.RiskLevel]++
		if summary.LatestResult == nil {
			result := r.Result
			at := r.Timestamp
			summary.LatestResult = &result
			summary.LatestAt = &at
		}
		summary.ScoreTrend = append([]TrendPoint{{
			Timestamp: r.Timestamp,
			Score:     r.Result.Score,
			RiskLevel: r.Result.RiskLevel,
		}}, summary.ScoreTrend...)
	}

	s.logger.Debug("history summary computed",
		zap.Int("records", summary.TotalAssessments),
		zap.Int("window_days", days),
	)
	return summary
}
