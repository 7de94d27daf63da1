package service

import (
	"strings"

	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/internal/scoring"
	"github.com/orchid-health/breastcare-backend/pkg/model"
)

// SelfCheckFlow drives the guided self-check state machine:
//
//	Landing → (per step: Instructions → Chat) → Results
//
// Question-asking inside the Chat phase belongs to the conversational
// component; the flow only aggregates each step's answers and scores the
// union when the last step finishes.
type SelfCheckFlow struct {
	steps       []catalog.Step
	phase       model.SelfCheckPhase
	step        int
	instruction int
	answers     model.AnswerSet
	result      *model.RiskAssessment
}

// NewSelfCheckFlow creates a flow over the given steps, parked at Landing.
// Pass catalog.Steps() for the production self-check.
func NewSelfCheckFlow(steps []catalog.Step) *SelfCheckFlow {
	return &SelfCheckFlow{
		steps:   steps,
		phase:   model.PhaseLanding,
		answers: model.AnswerSet{},
	}
}

// Start resets step and instruction indices, clears aggregated answers and
// result, and enters the first step's Instructions phase.
func (f *SelfCheckFlow) Start() {
	f.phase = model.PhaseInstructions
	f.step = 0
	f.instruction = 0
	f.answers = model.AnswerSet{}
	f.result = nil
}

// Reset returns the flow to Landing, discarding all state.
func (f *SelfCheckFlow) Reset() {
	f.phase = model.PhaseLanding
	f.step = 0
	f.instruction = 0
	f.answers = model.AnswerSet{}
	f.result = nil
}

// Phase returns the current interaction phase.
func (f *SelfCheckFlow) Phase() model.SelfCheckPhase {
	return f.phase
}

// CurrentStep returns the active step definition, or false at Landing/Results
// or over an empty step catalog.
func (f *SelfCheckFlow) CurrentStep() (catalog.Step, bool) {
	if f.phase != model.PhaseInstructions && f.phase != model.PhaseChat {
		return catalog.Step{}, false
	}
	if f.step >= len(f.steps) {
		return catalog.Step{}, false
	}
	return f.steps[f.step], true
}

// CurrentInstruction returns the active instruction page key, valid only in
// the Instructions phase.
func (f *SelfCheckFlow) CurrentInstruction() (string, bool) {
	step, ok := f.CurrentStep()
	if !ok || f.phase != model.PhaseInstructions {
		return "", false
	}
	if f.instruction >= len(step.Instructions) {
		return "", false
	}
	return step.Instructions[f.instruction], true
}

// NextInstruction moves to the next instruction page of the current step.
// It returns false at the last page; the caller is expected to EnterChat
// instead of advancing further.
func (f *SelfCheckFlow) NextInstruction() bool {
	step, ok := f.CurrentStep()
	if !ok || f.phase != model.PhaseInstructions {
		return false
	}
	if f.instruction+1 >= len(step.Instructions) {
		return false
	}
	f.instruction++
	return true
}

// PreviousInstruction moves back one instruction page; a no-op at page 0.
func (f *SelfCheckFlow) PreviousInstruction() {
	if f.phase == model.PhaseInstructions && f.instruction > 0 {
		f.instruction--
	}
}

// EnterChat switches the current step into its conversational phase.
func (f *SelfCheckFlow) EnterChat() {
	if f.phase == model.PhaseInstructions {
		f.phase = model.PhaseChat
	}
}

// CompleteStepChat merges the step's conversational answers into the
// aggregated answer set and advances to the next step's instructions, or
// finishes the whole check when this was the last step. The catalog
// guarantees question IDs never collide across steps. Chat answers arrive as
// flat strings and are coerced to the catalog's answer types before merging.
// It returns the final result when the check completed, nil otherwise.
func (f *SelfCheckFlow) CompleteStepChat(stepAnswers map[string]string) *model.RiskAssessment {
	if f.phase != model.PhaseChat {
		return nil
	}

	for id, raw := range stepAnswers {
		f.answers[id] = coerceAnswer(id, raw)
	}

	if f.step+1 < len(f.steps) {
		f.step++
		f.instruction = 0
		f.phase = model.PhaseInstructions
		return nil
	}

	r := f.CompleteCheck()
	return &r
}

// CompleteCheck scores the aggregated answers and moves to Results. Safe to
// call repeatedly; the stored result is returned once computed.
func (f *SelfCheckFlow) CompleteCheck() model.RiskAssessment {
	if f.result != nil && f.phase == model.PhaseResults {
		return *f.result
	}
	r := scoring.Assess(f.answers)
	f.result = &r
	f.phase = model.PhaseResults
	return r
}

// Result returns the final result, if the check has reached Results.
func (f *SelfCheckFlow) Result() (model.RiskAssessment, bool) {
	if f.result == nil {
		return model.RiskAssessment{}, false
	}
	return *f.result, true
}

// Answers returns a snapshot of the aggregated answers.
func (f *SelfCheckFlow) Answers() model.AnswerSet {
	return f.answers.Clone()
}

// OverallProgress treats each step as len(Instructions)+1 virtual pages, the
// +1 being the whole chat phase. Counting chat as a single unit keeps this
// controller decoupled from however many questions the conversational
// component decides to ask.
func (f *SelfCheckFlow) OverallProgress() model.Progress {
	total := 0
	for _, s := range f.steps {
		total += len(s.Instructions) + 1
	}

	current := 0
	switch f.phase {
	case model.PhaseResults:
		current = total
	case model.PhaseInstructions, model.PhaseChat:
		for i := 0; i < f.step && i < len(f.steps); i++ {
			current += len(f.steps[i].Instructions) + 1
		}
		if f.step < len(f.steps) {
			if f.phase == model.PhaseChat {
				current += len(f.steps[f.step].Instructions) + 1
			} else {
				current += f.instruction + 1
			}
		}
	}

	p := model.Progress{Current: current, Total: total}
	if total > 0 {
		p.Percentage = float64(current) / float64(total) * 100
	}
	return p
}

// coerceAnswer converts a chat answer string into the typed value the
// scoring engine expects for that question. Unknown question IDs keep the
// raw string; scoring ignores them anyway.
func coerceAnswer(id, raw string) any {
	q, ok := catalog.QuestionByID(id)
	if !ok {
		return raw
	}
	switch q.Type {
	case model.QuestionTypeBoolean:
		return strings.EqualFold(raw, "yes") || strings.EqualFold(raw, "true")
	case model.QuestionTypeMultiSelect:
		if raw == "" {
			return []string{}
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return raw
	}
}
