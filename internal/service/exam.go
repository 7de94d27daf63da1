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

// AuditTrail records who touched which resource. *audit.Logger satisfies it;
// services accept nil when auditing is disabled.
type AuditTrail interface {
	LogCreate(ctx context.Context, userID, resourceType, resourceID, ipAddress, userAgent string) error
	LogDelete(ctx context.Context, userID, resourceType, resourceID, ipAddress, userAgent string) error
}

// QuestionView is the read-only question shape exposed to presentation.
type QuestionView struct {
	ID      string             `json:"id"`
	Type    model.QuestionType `json:"type"`
	Options []string           `json:"options,omitempty"`
	Section string             `json:"section"`
}

// ExamState is the navigable state returned after each exam operation.
type ExamState struct {
	SessionID string         `json:"session_id"`
	Question  *QuestionView  `json:"question,omitempty"`
	HasMore   bool           `json:"has_more"`
	Progress  model.Progress `json:"progress"`
}

// ExamService owns the questionnaire sessions. Controller state mutates
// synchronously under one lock, matching the single-threaded, event-driven
// model of the flows; only history persistence happens in the background.
type ExamService struct {
	history *HistoryStore
	audit   AuditTrail
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*ExamFlow
}

// NewExamService creates a new ExamService. audit may be nil.
func NewExamService(history *HistoryStore, audit AuditTrail, logger *zap.Logger) *ExamService {
	return &ExamService{
		history:  history,
		audit:    audit,
		logger:   logger,
		sessions: make(map[string]*ExamFlow),
	}
}

// StartSession creates a new assessment session positioned at the first
// visible question.
func (s *ExamService) StartSession() ExamState {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	flow := NewExamFlow(catalog.Sections())
	flow.Start()
	s.sessions[id] = flow

	s.logger.Info("exam session started", zap.String("session_id", id))
	return s.state(id, flow, true)
}

// RecordAnswer merges an answer into the session's answer set without moving
// the position.
func (s *ExamService) RecordAnswer(sessionID, questionID string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, err := s.flow(sessionID)
	if err != nil {
		return err
	}
	flow.RecordAnswer(questionID, value)
	return nil
}

// Advance moves to the next visible question. HasMore is false on the
// returned state only when the assessment is complete.
func (s *ExamService) Advance(sessionID string) (ExamState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, err := s.flow(sessionID)
	if err != nil {
		return ExamState{}, err
	}
	hasMore := flow.Advance()
	return s.state(sessionID, flow, hasMore), nil
}

// Retreat moves back to the previous visible question; a no-op at the first.
func (s *ExamService) Retreat(sessionID string) (ExamState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, err := s.flow(sessionID)
	if err != nil {
		return ExamState{}, err
	}
	flow.Retreat()
	return s.state(sessionID, flow, true), nil
}

// Progress reports the session's skip-aware progress.
func (s *ExamService) Progress(sessionID string) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, err := s.flow(sessionID)
	if err != nil {
		return model.Progress{}, err
	}
	return flow.Progress(), nil
}

// Complete scores the session, builds an immutable record, hands it to the
// history store (persistence is fire-and-forget) and returns the result
// synchronously. Safe to call once Advance has returned false, and safe to
// call again: the stored result is returned unchanged.
func (s *ExamService) Complete(ctx context.Context, sessionID, clientIP, userAgent string) (model.RiskAssessment, error) {
	s.mu.Lock()
	flow, err := s.flow(sessionID)
	if err != nil {
		s.mu.Unlock()
		return model.RiskAssessment{}, err
	}

	alreadyDone := !flow.Active()
	result := flow.Complete()
	answers := flow.Answers()
	s.mu.Unlock()

	if alreadyDone {
		return result, nil
	}

	record := model.AssessmentRecord{
		ID:        uuid.New().String(),
		Kind:      model.AssessmentKindExam,
		Timestamp: time.Now(),
		Answers:   answers,
		Result:    result,
		Completed: true,
	}
	s.history.Append(record)

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, "", "assessment", record.ID, clientIP, userAgent); err != nil {
			s.logger.Warn("failed to audit assessment completion", zap.Error(err))
		}
	}

	s.logger.Info("exam session completed",
		zap.String("session_id", sessionID),
		zap.String("record_id", record.ID),
		zap.Int("score", result.Score),
		zap.String("risk_level", string(result.RiskLevel)),
	)
	return result, nil
}

func (s *ExamService) flow(sessionID string) (*ExamFlow, error) {
	flow, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("exam session not found: %s", sessionID)
	}
	return flow, nil
}

func (s *ExamService) state(sessionID string, flow *ExamFlow, hasMore bool) ExamState {
	st := ExamState{
		SessionID: sessionID,
		HasMore:   hasMore,
		Progress:  flow.Progress(),
	}
	if q, ok := flow.Current(); ok {
		st.Question = &QuestionView{
			ID:      q.ID,
			Type:    q.Type,
			Options: q.Options,
			Section: sectionOf(flow, q.ID),
		}
	}
	return st
}

func sectionOf(flow *ExamFlow, questionID string) string {
	for _, sec := range flow.sections {
		for _, q := range sec.Questions {
			if q.ID == questionID {
				return sec.ID
			}
		}
	}
	return ""
}
