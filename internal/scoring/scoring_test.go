package scoring

import (
	"testing"

	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestAssess_EmptyAnswers(t *testing.T) {
	result := Assess(model.AnswerSet{})

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, MaxScore(), result.MaxScore)
	assert.Empty(t, result.RedFlags)
	assert.Equal(t, model.RiskLevelLow, result.RiskLevel)
	assert.Equal(t, model.RecommendationContinueMonitoring, result.Recommendation)
	assert.Len(t, result.GuidanceKeys, 4)
}

func TestAssess_HighRisk(t *testing.T) {
	answers := model.AnswerSet{
		"lump_found":           true,
		"lump_characteristics": []string{"hard", "fixed", "painless"},
		"lump_location":        "upper_outer",
		"nipple_discharge":     true,
	}

	result := Assess(answers)

	// lump 3 + traits 5 + discharge 2
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, []string{"lump_found", "nipple_discharge"}, result.RedFlags)
	assert.Equal(t, model.RiskLevelHigh, result.RiskLevel)
	assert.Equal(t, model.RecommendationUrgentConsultation, result.Recommendation)
}

func TestAssess_ModerateByScore(t *testing.T) {
	answers := model.AnswerSet{
		"breast_pain": true,
		"size_change": true,
	}

	result := Assess(answers)

	assert.Equal(t, 2, result.Score)
	assert.Empty(t, result.RedFlags)
	assert.Equal(t, model.RiskLevelModerate, result.RiskLevel)
	assert.Equal(t, model.RecommendationScheduleCheckup, result.Recommendation)
}

func TestAssess_TwoRedFlagsEscalate(t *testing.T) {
	// Two red flags force High even though the thresholds alone would too;
	// the flag rule matters for hypothetical low-weight flags, so pin it.
	answers := model.AnswerSet{
		"nipple_retraction": true,
		"skin_dimpling":     true,
	}

	result := Assess(answers)

	assert.Len(t, result.RedFlags, 2)
	assert.Equal(t, model.RiskLevelHigh, result.RiskLevel)
}

func TestAssess_FalseAnswersContributeNothing(t *testing.T) {
	answers := model.AnswerSet{
		"lump_found":       false,
		"nipple_discharge": false,
		"family_history":   false,
	}

	result := Assess(answers)

	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.RedFlags)
	assert.Equal(t, model.RiskLevelLow, result.RiskLevel)
}

func TestAssess_UnknownAndMistypedAnswersIgnored(t *testing.T) {
	answers := model.AnswerSet{
		"no_such_question": true,
		"lump_found":       "not a bool",
		"breast_pain":      42,
	}

	result := Assess(answers)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, model.RiskLevelLow, result.RiskLevel)
}

func TestAssess_ZeroWeightQuestionDoesNotScore(t *testing.T) {
	result := Assess(model.AnswerSet{"regular_self_checks": true})

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, model.RiskLevelLow, result.RiskLevel)
}

func TestMassBonus(t *testing.T) {
	tests := []struct {
		trait string
		want  int
	}{
		{trait: "hard", want: 2},
		{trait: "fixed", want: 2},
		{trait: "painless", want: 1},
		{trait: "soft", want: 0},
		{trait: "movable", want: 0},
		{trait: "unknown", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.trait, func(t *testing.T) {
			assert.Equal(t, tt.want, massBonus(tt.trait))
		})
	}
}

func TestMaxScore_ProductionCatalog(t *testing.T) {
	// Sum of positive weights (17) plus the composite bonus maximum (5).
	assert.Equal(t, 22, MaxScore())
}

func TestAssessQuestions_CustomCatalog(t *testing.T) {
	questions := []catalog.Question{
		{ID: "q1", Type: model.QuestionTypeBoolean, Weight: 3, RedFlag: true},
		{ID: "q2", Type: model.QuestionTypeBoolean, Weight: 1},
		{
			ID:   "q3",
			Type: model.QuestionTypeBoolean,
			VisibleWhen: func(a model.AnswerSet) bool {
				return a.Bool("q1")
			},
		},
	}

	result := AssessQuestions(questions, model.AnswerSet{"q1": true})

	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 4+massBonusMax, result.MaxScore)
	assert.Equal(t, []string{"q1"}, result.RedFlags)
	assert.Equal(t, model.RiskLevelModerate, result.RiskLevel)
}
