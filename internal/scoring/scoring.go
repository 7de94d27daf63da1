// Package scoring turns a collected answer set into a tiered risk
// recommendation. It is pure and total: any answer set scores without error,
// unknown keys are ignored and mistyped values contribute nothing. Field
// types are plain so the package stays dependency-free beyond the catalog.
package scoring

import (
	"sync"

	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/pkg/model"
)

// Tier thresholds, evaluated high to low; first match wins.
const (
	highScoreThreshold     = 5
	highRedFlagCount       = 2
	moderateScoreThreshold = 2
	moderateRedFlagCount   = 1
)

// massBonusMax is the largest bonus the mass-characteristics composite can
// contribute (hard +2, fixed +2, painless +1). It is part of MaxScore.
const massBonusMax = 5

var guidanceByTier = map[model.RiskLevel][]string{
	model.RiskLevelLow: {
		"guidance.low.keep_monthly_routine",
		"guidance.low.know_your_normal",
		"guidance.low.lifestyle_basics",
		"guidance.low.next_reminder",
	},
	model.RiskLevelModerate: {
		"guidance.moderate.schedule_checkup",
		"guidance.moderate.track_changes",
		"guidance.moderate.bring_notes",
		"guidance.moderate.stay_calm",
	},
	model.RiskLevelHigh: {
		"guidance.high.see_doctor_soon",
		"guidance.high.do_not_panic",
		"guidance.high.what_to_expect",
		"guidance.high.bring_history",
	},
}

var (
	maxScoreOnce sync.Once
	maxScore     int
)

// MaxScore is the highest achievable score for the current catalog: the sum
// of all non-negative question weights plus the composite bonus maximum. It
// does not depend on any answer set.
func MaxScore() int {
	maxScoreOnce.Do(func() {
		maxScore = maxScoreFor(catalog.Questions())
	})
	return maxScore
}

// massBonus returns the fixed bonus for one selected mass characteristic.
// These are domain heuristics, deliberately hardcoded rather than modeled as
// per-option weights.
func massBonus(trait string) int {
	switch trait {
	case "hard", "fixed":
		return 2
	case "painless":
		return 1
	default:
		return 0
	}
}

// Assess scores an answer set against the full catalog. It iterates every
// question in catalog order, so the red-flag list is reproducible regardless
// of the order in which the user actually answered. Missing answers are
// treated as "no contribution"; Assess never fails.
func Assess(answers model.AnswerSet) model.RiskAssessment {
	return assess(catalog.Questions(), answers, MaxScore())
}

// AssessQuestions scores against an explicit question list instead of the
// package catalog. The flows use it so a controller constructed over a custom
// catalog scores consistently with what it traversed.
func AssessQuestions(questions []catalog.Question, answers model.AnswerSet) model.RiskAssessment {
	return assess(questions, answers, maxScoreFor(questions))
}

func maxScoreFor(questions []catalog.Question) int {
	total := 0
	for _, q := range questions {
		if q.Weight > 0 {
			total += q.Weight
		}
	}
	return total + massBonusMax
}

func assess(questions []catalog.Question, answers model.AnswerSet, maxScore int) model.RiskAssessment {
	score := 0
	redFlags := []string{}

	for _, q := range questions {
		switch q.Type {
		case model.QuestionTypeBoolean:
			if answers.Bool(q.ID) {
				score += q.Weight
				if q.RedFlag {
					redFlags = append(redFlags, q.ID)
				}
			}
		case model.QuestionTypeMultiSelect:
			if q.ID == catalog.MassCharacteristicsID {
				seen := map[string]bool{}
				for _, trait := range answers.Strings(q.ID) {
					if seen[trait] {
						continue
					}
					seen[trait] = true
					score += massBonus(trait)
				}
			}
		}
	}

	level := tier(score, len(redFlags))

	return model.RiskAssessment{
		RiskLevel:      level,
		Score:          score,
		MaxScore:       maxScore,
		RedFlags:       redFlags,
		Recommendation: recommendation(level),
		GuidanceKeys:   guidanceByTier[level],
	}
}

// tier classifies a score and red-flag count, highest tier first.
func tier(score, redFlagCount int) model.RiskLevel {
	switch {
	case score >= highScoreThreshold || redFlagCount >= highRedFlagCount:
		return model.RiskLevelHigh
	case score >= moderateScoreThreshold || redFlagCount >= moderateRedFlagCount:
		return model.RiskLevelModerate
	default:
		return model.RiskLevelLow
	}
}

func recommendation(level model.RiskLevel) model.RecommendationTier {
	switch level {
	case model.RiskLevelHigh:
		return model.RecommendationUrgentConsultation
	case model.RiskLevelModerate:
		return model.RecommendationScheduleCheckup
	default:
		return model.RecommendationContinueMonitoring
	}
}
