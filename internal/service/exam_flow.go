package service

import (
	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/internal/scoring"
	"github.com/orchid-health/breastcare-backend/pkg/model"
)

// ExamFlow walks a user through the adaptive risk questionnaire. Visibility
// of each question depends on the live answer set, so the traversal re-checks
// predicates on every navigation call instead of caching them; answering a
// later question can change what "next" resolves to from the same position.
//
// All state mutation is synchronous; ExamFlow itself is not safe for
// concurrent use and is guarded by its owning session in ExamService.
type ExamFlow struct {
	sections []catalog.Section
	answers  model.AnswerSet
	section  int
	question int
	active   bool
	result   *model.RiskAssessment
}

// NewExamFlow creates a flow over the given catalog sections. Pass
// catalog.Sections() for the production questionnaire.
func NewExamFlow(sections []catalog.Section) *ExamFlow {
	return &ExamFlow{
		sections: sections,
		answers:  model.AnswerSet{},
	}
}

// Start resets the flow: position to the first visible question, answers and
// result cleared, session active. Calling Start on a running flow restarts
// it.
func (f *ExamFlow) Start() {
	f.answers = model.AnswerSet{}
	f.section = 0
	f.question = 0
	f.active = true
	f.result = nil

	// Settle on the first visible question. The scan includes (0,0) itself,
	// unlike Advance which always moves strictly forward.
	if _, ok := f.Current(); !ok {
		f.Advance()
	}
}

// Active reports whether an assessment session is running.
func (f *ExamFlow) Active() bool {
	return f.active
}

// RecordAnswer merges an answer into the answer set, overwriting any prior
// value for the question. It never advances the position.
func (f *ExamFlow) RecordAnswer(questionID string, value any) {
	f.answers[questionID] = value
}

// Answers returns a snapshot copy of the collected answers.
func (f *ExamFlow) Answers() model.AnswerSet {
	return f.answers.Clone()
}

// Current returns the question at the settled position, or false when the
// position references nothing visible (empty catalog or exhausted flow).
func (f *ExamFlow) Current() (catalog.Question, bool) {
	if f.section >= len(f.sections) {
		return catalog.Question{}, false
	}
	sec := f.sections[f.section]
	if f.question >= len(sec.Questions) {
		return catalog.Question{}, false
	}
	q := sec.Questions[f.question]
	if !q.Visible(f.answers) {
		return catalog.Question{}, false
	}
	return q, true
}

// Advance moves to the next visible question after the current position,
// scanning the rest of the current section and then subsequent sections.
// It returns false only when no visible question remains anywhere ahead;
// that false is the sole "assessment complete" signal. The position is left
// unchanged in that case.
func (f *ExamFlow) Advance() bool {
	si, qi := f.section, f.question+1
	for si < len(f.sections) {
		for qi < len(f.sections[si].Questions) {
			if f.visibleAt(si, qi) {
				f.section, f.question = si, qi
				return true
			}
			qi++
		}
		si++
		qi = 0
	}
	return false
}

// Retreat moves to the nearest visible question before the current position,
// scanning backward through the current section and then preceding sections
// from their last question. At the first visible question it is a no-op; it
// never wraps and never fails.
func (f *ExamFlow) Retreat() {
	si, qi := f.section, f.question-1
	for si >= 0 {
		for qi >= 0 {
			if f.visibleAt(si, qi) {
				f.section, f.question = si, qi
				return
			}
			qi--
		}
		si--
		if si >= 0 {
			qi = len(f.sections[si].Questions) - 1
		}
	}
}

// Complete scores the collected answers and deactivates the session. It is
// safe to call repeatedly; after the first call the stored result is
// returned unchanged.
func (f *ExamFlow) Complete() model.RiskAssessment {
	if f.result != nil && !f.active {
		return *f.result
	}
	r := scoring.AssessQuestions(f.questions(), f.answers)
	f.result = &r
	f.active = false
	return r
}

// Result returns the last computed result, if any.
func (f *ExamFlow) Result() (model.RiskAssessment, bool) {
	if f.result == nil {
		return model.RiskAssessment{}, false
	}
	return *f.result, true
}

// Progress reports the 1-based rank of the current question among the
// currently visible questions, and the visible total across the whole
// catalog. Both are recomputed from the live answer set on every call.
func (f *ExamFlow) Progress() model.Progress {
	total := 0
	current := 0
	for si, sec := range f.sections {
		for qi, q := range sec.Questions {
			if !q.Visible(f.answers) {
				continue
			}
			total++
			if si < f.section || (si == f.section && qi <= f.question) {
				current++
			}
		}
	}

	p := model.Progress{Current: current, Total: total}
	if total > 0 {
		p.Percentage = float64(current) / float64(total) * 100
	}
	return p
}

func (f *ExamFlow) visibleAt(si, qi int) bool {
	return f.sections[si].Questions[qi].Visible(f.answers)
}

func (f *ExamFlow) questions() []catalog.Question {
	var out []catalog.Question
	for _, s := range f.sections {
		out = append(out, s.Questions...)
	}
	return out
}
