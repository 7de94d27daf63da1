package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recordAt(ts time.Time, score int, level model.RiskLevel) model.AssessmentRecord {
	return model.AssessmentRecord{
		ID:        uuid.New().String(),
		Kind:      model.AssessmentKindExam,
		Timestamp: ts,
		Answers:   model.AnswerSet{},
		Result: model.RiskAssessment{
			RiskLevel: level,
			Score:     score,
			MaxScore:  22,
			RedFlags:  []string{},
		},
		Completed: true,
	}
}

func TestSummaryService_EmptyHistory(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSummaryService(history, zap.NewNop())

	summary := svc.GetSummary(0)

	assert.Zero(t, summary.TotalAssessments)
	assert.Nil(t, summary.LatestResult)
	assert.Nil(t, summary.LatestAt)
	assert.Empty(t, summary.ScoreTrend)
	assert.Equal(t, 0, summary.TierCounts[model.RiskLevelLow])
}

func TestSummaryService_AggregatesAllRecords(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	now := time.Now()

	// Appends prepend, so the last appended record is the most recent.
	history.Append(recordAt(now.AddDate(0, 0, -60), 8, model.RiskLevelHigh))
	history.Append(recordAt(now.AddDate(0, 0, -10), 2, model.RiskLevelModerate))
	history.Append(recordAt(now.AddDate(0, 0, -1), 0, model.RiskLevelLow))

	svc := NewSummaryService(history, zap.NewNop())
	summary := svc.GetSummary(0)

	assert.Equal(t, 3, summary.TotalAssessments)
	assert.Equal(t, 1, summary.TierCounts[model.RiskLevelLow])
	assert.Equal(t, 1, summary.TierCounts[model.RiskLevelModerate])
	assert.Equal(t, 1, summary.TierCounts[model.RiskLevelHigh])

	require.NotNil(t, summary.LatestResult)
	assert.Equal(t, model.RiskLevelLow, summary.LatestResult.RiskLevel)

	// Trend plots oldest first.
	require.Len(t, summary.ScoreTrend, 3)
	assert.Equal(t, 8, summary.ScoreTrend[0].Score)
	assert.Equal(t, 0, summary.ScoreTrend[2].Score)
}

func TestSummaryService_WindowFiltersOldRecords(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	now := time.Now()
	history.Append(recordAt(now.AddDate(0, 0, -60), 8, model.RiskLevelHigh))
	history.Append(recordAt(now.AddDate(0, 0, -1), 0, model.RiskLevelLow))

	svc := NewSummaryService(history, zap.NewNop())
	summary := svc.GetSummary(30)

	assert.Equal(t, 1, summary.TotalAssessments)
	assert.Equal(t, 0, summary.TierCounts[model.RiskLevelHigh])
	require.Len(t, summary.ScoreTrend, 1)
	assert.Equal(t, 0, summary.ScoreTrend[0].Score)
}

func TestSummaryService_WindowedLatestIsFirstInRange(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	now := time.Now()
	history.Append(recordAt(now.AddDate(0, 0, -40), 5, model.RiskLevelHigh))
	history.Append(recordAt(now.AddDate(0, 0, -5), 2, model.RiskLevelModerate))

	svc := NewSummaryService(history, zap.NewNop())
	summary := svc.GetSummary(30)

	require.NotNil(t, summary.LatestResult)
	assert.Equal(t, model.RiskLevelModerate, summary.LatestResult.RiskLevel)
	require.NotNil(t, summary.LatestAt)
	assert.WithinDuration(t, now.AddDate(0, 0, -5), *summary.LatestAt, time.Second)
}
