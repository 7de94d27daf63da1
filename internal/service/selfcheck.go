package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"go.uber.org/zap"
)

// SelfCheckState is the flow state exposed to presentation after each
// self-check operation.
type SelfCheckState struct {
	SessionID      string                `json:"session_id"`
	Phase          model.SelfCheckPhase  `json:"phase"`
	StepID         string                `json:"step_id,omitempty"`
	Accent         string                `json:"accent,omitempty"`
	InstructionKey string                `json:"instruction_key,omitempty"`
	Prompt         *ChatPrompt           `json:"prompt,omitempty"`
	Progress       model.Progress        `json:"progress"`
	Result         *model.RiskAssessment `json:"result,omitempty"`
}

type selfCheckSession struct {
	flow *SelfCheckFlow
	conv Conversation
}

// SelfCheckService owns guided self-check sessions. The flow controller
// handles phases and progress; question-asking inside the chat phase is
// delegated to the conversational component.
type SelfCheckService struct {
	history   *HistoryStore
	audit     AuditTrail
	clarifier CompletionClient
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*selfCheckSession
}

// NewSelfCheckService creates a new SelfCheckService. audit and clarifier
// may be nil; clarifications then degrade to a fallback message.
func NewSelfCheckService(history *HistoryStore, audit AuditTrail, clarifier CompletionClient, logger *zap.Logger) *SelfCheckService {
	return &SelfCheckService{
		history:   history,
		audit:     audit,
		clarifier: clarifier,
		logger:    logger,
		sessions:  make(map[string]*selfCheckSession),
	}
}

// StartSession creates a session positioned at the first step's first
// instruction page.
func (s *SelfCheckService) StartSession() SelfCheckState {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	flow := NewSelfCheckFlow(catalog.Steps())
	flow.Start()
	s.sessions[id] = &selfCheckSession{flow: flow}

	s.logger.Info("self-check session started", zap.String("session_id", id))
	return s.state(id, s.sessions[id])
}

// NextInstruction advances within the current step's instruction pages.
// advanced is false at the last page; the caller should enter the chat phase
// instead.
func (s *SelfCheckService) NextInstruction(sessionID string) (SelfCheckState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return SelfCheckState{}, false, err
	}
	advanced := sess.flow.NextInstruction()
	return s.state(sessionID, sess), advanced, nil
}

// PreviousInstruction moves back one instruction page; a no-op at page 0.
func (s *SelfCheckService) PreviousInstruction(sessionID string) (SelfCheckState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return SelfCheckState{}, err
	}
	sess.flow.PreviousInstruction()
	return s.state(sessionID, sess), nil
}

// EnterChat switches the current step to its conversational phase and
// initializes the conversational component for it.
func (s *SelfCheckService) EnterChat(ctx context.Context, sessionID, clientIP, userAgent string) (SelfCheckState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return SelfCheckState{}, err
	}
	step, ok := sess.flow.CurrentStep()
	if !ok {
		return SelfCheckState{}, fmt.Errorf("self-check session %s has no active step", sessionID)
	}

	sess.flow.EnterChat()
	conv := NewScriptedConversation(s.clarifier, s.logger)
	if err := conv.BeginStep(step.ID); err != nil {
		return SelfCheckState{}, err
	}
	sess.conv = conv

	// A step whose questions are all invisible completes immediately.
	s.finishChatIfDone(ctx, sessionID, sess, clientIP, userAgent)
	return s.state(sessionID, sess), nil
}

// ChatReply submits a quick-reply answer for the active chat question. When
// the step's conversation finishes, the answers are folded into the flow and
// the session moves to the next step's instructions, or to Results after the
// last step.
func (s *SelfCheckService) ChatReply(ctx context.Context, sessionID, value, clientIP, userAgent string) (SelfCheckState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return SelfCheckState{}, err
	}
	if sess.conv == nil || sess.flow.Phase() != model.PhaseChat {
		return SelfCheckState{}, fmt.Errorf("self-check session %s is not in a chat phase", sessionID)
	}

	sess.conv.SubmitQuickReply(value)
	s.finishChatIfDone(ctx, sessionID, sess, clientIP, userAgent)
	return s.state(sessionID, sess), nil
}

// Clarify forwards a free-text clarification to the conversational
// component. It always returns a message; LLM failures degrade to a
// fallback key.
func (s *SelfCheckService) Clarify(ctx context.Context, sessionID, text string) (string, error) {
	s.mu.Lock()
	sess, err := s.session(sessionID)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	conv := sess.conv
	s.mu.Unlock()

	if conv == nil {
		return "", fmt.Errorf("self-check session %s is not in a chat phase", sessionID)
	}
	return conv.SubmitClarification(ctx, text), nil
}

// Progress reports the virtual-page progress across all steps.
func (s *SelfCheckService) Progress(sessionID string) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return model.Progress{}, err
	}
	return sess.flow.OverallProgress(), nil
}

// Reset returns the session to Landing, discarding collected answers.
func (s *SelfCheckService) Reset(sessionID string) (SelfCheckState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return SelfCheckState{}, err
	}
	sess.flow.Reset()
	sess.conv = nil
	return s.state(sessionID, sess), nil
}

// finishChatIfDone folds a finished conversation into the flow and, when the
// whole check completed, records and persists the result.
func (s *SelfCheckService) finishChatIfDone(ctx context.Context, sessionID string, sess *selfCheckSession, clientIP, userAgent string) {
	if sess.conv == nil || sess.conv.ActiveQuestion() != nil {
		return
	}

	result := sess.flow.CompleteStepChat(sess.conv.Answers())
	sess.conv = nil
	if result == nil {
		return
	}

	record := model.AssessmentRecord{
		ID:        uuid.New().String(),
		Kind:      model.AssessmentKindSelfCheck,
		Timestamp: time.Now(),
		Answers:   sess.flow.Answers(),
		Result:    *result,
		Completed: true,
	}
	s.history.Append(record)

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, "", "assessment", record.ID, clientIP, userAgent); err != nil {
			s.logger.Warn("failed to audit self-check completion", zap.Error(err))
		}
	}

	s.logger.Info("self-check completed",
		zap.String("session_id", sessionID),
		zap.String("record_id", record.ID),
		zap.String("risk_level", string(result.RiskLevel)),
	)
}

func (s *SelfCheckService) session(sessionID string) (*selfCheckSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("self-check session not found: %s", sessionID)
	}
	return sess, nil
}

func (s *SelfCheckService) state(sessionID string, sess *selfCheckSession) SelfCheckState {
	st := SelfCheckState{
		SessionID: sessionID,
		Phase:     sess.flow.Phase(),
		Progress:  sess.flow.OverallProgress(),
	}
	if step, ok := sess.flow.CurrentStep(); ok {
		st.StepID = step.ID
		st.Accent = step.Accent
	}
	if key, ok := sess.flow.CurrentInstruction(); ok {
		st.InstructionKey = key
	}
	if sess.conv != nil {
		st.Prompt = sess.conv.ActiveQuestion()
	}
	if result, ok := sess.flow.Result(); ok {
		st.Result = &result
	}
	return st
}
