package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/orchid-health/breastcare-backend/pkg/model"
	"go.uber.org/zap"
)

// ChatPrompt is one question presented inside a self-check step's chat phase.
type ChatPrompt struct {
	QuestionID   string   `json:"question_id"`
	MessageKey   string   `json:"message_key"`
	QuickReplies []string `json:"quick_replies"`
}

// CompletionClient is the narrow LLM surface the conversation needs for
// free-text clarifications. *azure.OpenAIClient satisfies it.
type CompletionClient interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Conversation is the contract the self-check flow consumes: a per-step
// question-asker that reports an active question (nil when the step's chat
// is complete), accepts quick-reply answers and free-text clarification
// requests, and hands back the step's answers as a flat string mapping.
type Conversation interface {
	BeginStep(stepID string) error
	ActiveQuestion() *ChatPrompt
	SubmitQuickReply(value string)
	SubmitClarification(ctx context.Context, text string) string
	Answers() map[string]string
}

// clarificationFallback is returned when no LLM client is configured or the
// request fails; the chat degrades rather than blocking the step.
const clarificationFallback = "chat.clarification.unavailable"

// ScriptedConversation walks the step's catalog questions in order, skipping
// follow-ups whose visibility predicate is false under the answers collected
// so far in this conversation.
type ScriptedConversation struct {
	client  CompletionClient
	logger  *zap.Logger
	step    catalog.Step
	index   int
	answers map[string]string
}

// NewScriptedConversation creates a conversation. client may be nil; then
// clarifications always return the fallback key.
func NewScriptedConversation(client CompletionClient, logger *zap.Logger) *ScriptedConversation {
	return &ScriptedConversation{
		client:  client,
		logger:  logger,
		answers: map[string]string{},
	}
}

// BeginStep initializes the conversation for one self-check step.
func (c *ScriptedConversation) BeginStep(stepID string) error {
	step, ok := catalog.StepByID(stepID)
	if !ok {
		return fmt.Errorf("unknown self-check step: %s", stepID)
	}
	c.step = step
	c.index = 0
	c.answers = map[string]string{}
	c.skipHidden()
	return nil
}

// ActiveQuestion returns the question awaiting an answer, or nil when the
// step's chat is complete.
func (c *ScriptedConversation) ActiveQuestion() *ChatPrompt {
	if c.index >= len(c.step.Questions) {
		return nil
	}
	id := c.step.Questions[c.index]
	prompt := &ChatPrompt{
		QuestionID: id,
		MessageKey: fmt.Sprintf("chat.question.%s", id),
	}
	if q, ok := catalog.QuestionByID(id); ok {
		switch q.Type {
		case model.QuestionTypeBoolean:
			prompt.QuickReplies = []string{"yes", "no"}
		default:
			prompt.QuickReplies = q.Options
		}
	}
	return prompt
}

// SubmitQuickReply records the answer for the active question and moves on.
// Ignored when the step is already complete.
func (c *ScriptedConversation) SubmitQuickReply(value string) {
	if c.index >= len(c.step.Questions) {
		return
	}
	c.answers[c.step.Questions[c.index]] = value
	c.index++
	c.skipHidden()
}

// SubmitClarification answers a free-text question about the active prompt
// via the LLM. Failures degrade to a fixed fallback key and never interrupt
// the step.
func (c *ScriptedConversation) SubmitClarification(ctx context.Context, text string) string {
	if c.client == nil {
		return clarificationFallback
	}

	active := c.ActiveQuestion()
	questionID := ""
	if active != nil {
		questionID = active.QuestionID
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(
			"You are a breast-health education assistant guiding a self-examination. " +
				"Answer the user's clarification question briefly and factually. " +
				"Do not diagnose; encourage consulting a doctor for medical concerns.",
		),
		openai.UserMessage(fmt.Sprintf("Current question: %s\nClarification: %s", questionID, text)),
	}

	answer, err := c.client.Complete(ctx, messages)
	if err != nil {
		c.logger.Warn("clarification request failed",
			zap.String("step_id", c.step.ID),
			zap.String("question_id", questionID),
			zap.Error(err),
		)
		return clarificationFallback
	}
	return strings.TrimSpace(answer)
}

// Answers returns the answers collected so far for this step.
func (c *ScriptedConversation) Answers() map[string]string {
	out := make(map[string]string, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// skipHidden advances past questions whose visibility predicate is false
// under the answers collected so far, mirroring the adaptive traversal of
// the main questionnaire.
func (c *ScriptedConversation) skipHidden() {
	set := model.AnswerSet{}
	for id, raw := range c.answers {
		set[id] = coerceAnswer(id, raw)
	}
	for c.index < len(c.step.Questions) {
		q, ok := catalog.QuestionByID(c.step.Questions[c.index])
		if !ok || q.Visible(set) {
			return
		}
		c.index++
	}
}
