package scoring

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/pkg/model"
)

// answerSetFromMasks builds an arbitrary answer set: one bit per boolean
// question, one bit per mass characteristic trait.
func answerSetFromMasks(boolMask uint32, traitMask uint8) model.AnswerSet {
	answers := model.AnswerSet{}

	bit := 0
	for _, q := range catalog.Questions() {
		if q.Type != model.QuestionTypeBoolean {
			continue
		}
		answers[q.ID] = boolMask&(1<<bit) != 0
		bit++
	}

	traits := []string{"hard", "fixed", "painless", "soft", "movable"}
	var selected []string
	for i, trait := range traits {
		if traitMask&(1<<i) != 0 {
			selected = append(selected, trait)
		}
	}
	if len(selected) > 0 {
		answers[catalog.MassCharacteristicsID] = selected
	}

	return answers
}

func tierRank(level model.RiskLevel) int {
	switch level {
	case model.RiskLevelHigh:
		return 2
	case model.RiskLevelModerate:
		return 1
	default:
		return 0
	}
}

// The score is always within [0, MaxScore] and MaxScore never depends on the
// answers.
func TestProperty_ScoreBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("score stays within bounds", prop.ForAll(
		func(boolMask uint32, traitMask uint8) bool {
			result := Assess(answerSetFromMasks(boolMask, traitMask))

			if result.Score < 0 || result.Score > result.MaxScore {
				t.Logf("score %d outside [0, %d]", result.Score, result.MaxScore)
				return false
			}
			if result.MaxScore != MaxScore() {
				t.Logf("MaxScore varied with answers: %d != %d", result.MaxScore, MaxScore())
				return false
			}
			return true
		},
		gen.UInt32(),
		gen.UInt8(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Red flags are exactly the red-flag questions answered true, reported in
// catalog order.
func TestProperty_RedFlagsMatchAnswers(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("red flags mirror affirmative red-flag answers in catalog order", prop.ForAll(
		func(boolMask uint32, traitMask uint8) bool {
			answers := answerSetFromMasks(boolMask, traitMask)
			result := Assess(answers)

			var expected []string
			for _, q := range catalog.Questions() {
				if q.Type == model.QuestionTypeBoolean && q.RedFlag && answers.Bool(q.ID) {
					expected = append(expected, q.ID)
				}
			}
			if expected == nil {
				expected = []string{}
			}

			if !reflect.DeepEqual(expected, result.RedFlags) {
				t.Logf("expected red flags %v, got %v", expected, result.RedFlags)
				return false
			}
			return true
		},
		gen.UInt32(),
		gen.UInt8(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Turning one more boolean answer to true never lowers the risk tier.
func TestProperty_TierMonotonicity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	boolCount := 0
	for _, q := range catalog.Questions() {
		if q.Type == model.QuestionTypeBoolean {
			boolCount++
		}
	}

	properties.Property("affirming an additional symptom never lowers the tier", prop.ForAll(
		func(boolMask uint32, traitMask uint8, flip int) bool {
			before := Assess(answerSetFromMasks(boolMask, traitMask))
			after := Assess(answerSetFromMasks(boolMask|(1<<uint(flip)), traitMask))

			if tierRank(after.RiskLevel) < tierRank(before.RiskLevel) {
				t.Logf("tier dropped from %s to %s", before.RiskLevel, after.RiskLevel)
				return false
			}
			if after.Score < before.Score {
				t.Logf("score dropped from %d to %d", before.Score, after.Score)
				return false
			}
			return true
		},
		gen.UInt32(),
		gen.UInt8(),
		gen.IntRange(0, boolCount-1),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Scoring is pure: the same answer set always produces the same result.
func TestProperty_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repeated assessment of the same answers is identical", prop.ForAll(
		func(boolMask uint32, traitMask uint8) bool {
			answers := answerSetFromMasks(boolMask, traitMask)
			first := Assess(answers)
			second := Assess(answers)
			return reflect.DeepEqual(first, second)
		},
		gen.UInt32(),
		gen.UInt8(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Every tier carries a non-empty guidance key list.
func TestProperty_GuidancePresent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every result carries guidance keys", prop.ForAll(
		func(boolMask uint32, traitMask uint8) bool {
			result := Assess(answerSetFromMasks(boolMask, traitMask))
			return len(result.GuidanceKeys) > 0
		},
		gen.UInt32(),
		gen.UInt8(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
