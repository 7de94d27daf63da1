package model

import "time"

// QuestionType represents the answer shape a question expects
type QuestionType string

const (
	QuestionTypeBoolean     QuestionType = "boolean"
	QuestionTypeMultiSelect QuestionType = "multi_select"
	QuestionTypeQuadrant    QuestionType = "quadrant"
)

// AnswerSet maps question IDs to collected answer values. Values are bool for
// boolean questions, string for quadrant questions and []string for
// multi-select questions. A value of the wrong type contributes nothing to
// scoring; it is never an error.
type AnswerSet map[string]any

// Bool reports whether the question was answered with an affirmative boolean.
// Missing answers and non-boolean values read as false.
func (a AnswerSet) Bool(id string) bool {
	v, ok := a[id]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Strings returns the answer as a string slice. Handles []string directly and
// []any as produced by JSON decoding; anything else reads as empty.
func (a AnswerSet) Strings(id string) []string {
	switch v := a[id].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// String returns the answer as a string, or "" when missing or mistyped.
func (a AnswerSet) String(id string) string {
	s, _ := a[id].(string)
	return s
}

// Clone returns a shallow copy of the answer set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// RiskLevel is the three-bucket classification of an assessment
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelHigh     RiskLevel = "high"
)

// RecommendationTier identifies the follow-up action bundle for a risk level
type RecommendationTier string

const (
	RecommendationContinueMonitoring RecommendationTier = "continue_monitoring"
	RecommendationScheduleCheckup    RecommendationTier = "schedule_checkup"
	RecommendationUrgentConsultation RecommendationTier = "urgent_consultation"
)

// RiskAssessment is the scored outcome of one completed assessment.
// GuidanceKeys are opaque message identifiers resolved by the presentation
// layer; the engine never localizes text.
type RiskAssessment struct {
	RiskLevel      RiskLevel          `json:"risk_level"`
	Score          int                `json:"score"`
	MaxScore       int                `json:"max_score"`
	RedFlags       []string           `json:"red_flags"`
	Recommendation RecommendationTier `json:"recommendation"`
	GuidanceKeys   []string           `json:"guidance_keys"`
}

// AssessmentKind distinguishes the two flows that produce records
type AssessmentKind string

const (
	AssessmentKindExam      AssessmentKind = "exam"
	AssessmentKindSelfCheck AssessmentKind = "self_check"
)

// AssessmentRecord is an immutable snapshot of one completed assessment.
// Records are owned by the history store and never mutated after creation.
type AssessmentRecord struct {
	ID        string         `json:"id"`
	Kind      AssessmentKind `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Answers   AnswerSet      `json:"answers"`
	Result    RiskAssessment `json:"result"`
	Completed bool           `json:"completed"`
}

// SelfCheckPhase is the interaction phase of the guided self-check flow
type SelfCheckPhase string

const (
	PhaseLanding      SelfCheckPhase = "landing"
	PhaseInstructions SelfCheckPhase = "instructions"
	PhaseChat         SelfCheckPhase = "chat"
	PhaseResults      SelfCheckPhase = "results"
)

// Progress is a position within a variable-length flow. Current is 1-based;
// Percentage is 0 when Total is 0.
type Progress struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
