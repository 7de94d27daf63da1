// Package catalog holds the read-only question and self-check step
// definitions consumed by the assessment flows. The definitions are
// hardcoded; in a more dynamic system they might come from a config file.
package catalog

import "github.com/orchid-health/breastcare-backend/pkg/model"

// Question is one entry of the risk questionnaire. Identity is the ID, which
// doubles as the answer key and the red-flag label key. VisibleWhen is an
// optional pure predicate over the live answer set; a nil predicate means
// always visible.
type Question struct {
	ID          string
	Type        model.QuestionType
	Weight      int
	RedFlag     bool
	Options     []string
	VisibleWhen func(model.AnswerSet) bool
}

// Visible evaluates the visibility predicate against the given answer set.
// Questions without a predicate are always visible.
func (q Question) Visible(answers model.AnswerSet) bool {
	if q.VisibleWhen == nil {
		return true
	}
	return q.VisibleWhen(answers)
}

// Section is an ordered group of questions
type Section struct {
	ID        string
	Questions []Question
}

// MassCharacteristicsID identifies the composite multi-select describing a
// detected mass. Its selections carry fixed scoring bonuses rather than a
// per-question weight.
const MassCharacteristicsID = "lump_characteristics"

// Quadrants are the answer options for quadrant-type questions
var Quadrants = []string{
	"upper_outer",
	"upper_inner",
	"lower_outer",
	"lower_inner",
	"central",
}

var sections = []Section{
	{
		ID: "symptoms",
		Questions: []Question{
			{ID: "lump_found", Type: model.QuestionTypeBoolean, Weight: 3, RedFlag: true},
			{
				ID:      MassCharacteristicsID,
				Type:    model.QuestionTypeMultiSelect,
				Options: []string{"hard", "fixed", "painless", "soft", "movable"},
				VisibleWhen: func(a model.AnswerSet) bool {
					return a.Bool("lump_found")
				},
			},
			{
				ID:      "lump_location",
				Type:    model.QuestionTypeQuadrant,
				Options: Quadrants,
				VisibleWhen: func(a model.AnswerSet) bool {
					return a.Bool("lump_found")
				},
			},
			{ID: "nipple_discharge", Type: model.QuestionTypeBoolean, Weight: 2, RedFlag: true},
			{ID: "nipple_retraction", Type: model.QuestionTypeBoolean, Weight: 2, RedFlag: true},
			{ID: "skin_dimpling", Type: model.QuestionTypeBoolean, Weight: 2, RedFlag: true},
			{ID: "breast_pain", Type: model.QuestionTypeBoolean, Weight: 1},
			{
				ID:      "pain_location",
				Type:    model.QuestionTypeQuadrant,
				Options: Quadrants,
				VisibleWhen: func(a model.AnswerSet) bool {
					return a.Bool("breast_pain")
				},
			},
			{ID: "size_change", Type: model.QuestionTypeBoolean, Weight: 1},
		},
	},
	{
		ID: "history",
		Questions: []Question{
			{ID: "family_history", Type: model.QuestionTypeBoolean, Weight: 2},
			{ID: "previous_biopsy", Type: model.QuestionTypeBoolean, Weight: 1},
			{ID: "hormone_therapy", Type: model.QuestionTypeBoolean, Weight: 1},
			{ID: "early_menarche", Type: model.QuestionTypeBoolean, Weight: 1},
		},
	},
	{
		ID: "screening",
		Questions: []Question{
			{ID: "overdue_clinical_exam", Type: model.QuestionTypeBoolean, Weight: 1},
			{ID: "regular_self_checks", Type: model.QuestionTypeBoolean, Weight: 0},
		},
	},
}

// Sections returns the ordered questionnaire sections. Callers must treat the
// returned slice as read-only.
func Sections() []Section {
	return sections
}

// QuestionByID looks up a question definition anywhere in the catalog.
func QuestionByID(id string) (Question, bool) {
	for _, s := range sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Questions returns all questions in catalog order, flattened across sections.
func Questions() []Question {
	var out []Question
	for _, s := range sections {
		out = append(out, s.Questions...)
	}
	return out
}
