package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/orchid-health/breastcare-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompletionClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompletionClient) Complete(_ context.Context, _ []openai.ChatCompletionMessageParamUnion) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestScriptedConversation_BeginStepUnknown(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())

	err := conv.BeginStep("no_such_step")

	assert.Error(t, err)
}

func TestScriptedConversation_BooleanQuickReplies(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	prompt := conv.ActiveQuestion()
	require.NotNil(t, prompt)
	assert.Equal(t, "lump_found", prompt.QuestionID)
	assert.Equal(t, "chat.question.lump_found", prompt.MessageKey)
	assert.Equal(t, []string{"yes", "no"}, prompt.QuickReplies)
}

func TestScriptedConversation_NegativeAnswerSkipsFollowUps(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	conv.SubmitQuickReply("no")

	// lump_characteristics and lump_location stay hidden.
	assert.Nil(t, conv.ActiveQuestion())
	assert.Equal(t, map[string]string{"lump_found": "no"}, conv.Answers())
}

func TestScriptedConversation_AffirmativeAnswerRevealsFollowUps(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	conv.SubmitQuickReply("yes")

	prompt := conv.ActiveQuestion()
	require.NotNil(t, prompt)
	assert.Equal(t, catalog.MassCharacteristicsID, prompt.QuestionID)
	q, _ := catalog.QuestionByID(catalog.MassCharacteristicsID)
	assert.Equal(t, q.Options, prompt.QuickReplies)

	conv.SubmitQuickReply("hard, fixed")

	prompt = conv.ActiveQuestion()
	require.NotNil(t, prompt)
	assert.Equal(t, "lump_location", prompt.QuestionID)

	conv.SubmitQuickReply("upper_outer")
	assert.Nil(t, conv.ActiveQuestion())

	assert.Equal(t, map[string]string{
		"lump_found":           "yes",
		"lump_characteristics": "hard, fixed",
		"lump_location":        "upper_outer",
	}, conv.Answers())
}

func TestScriptedConversation_QuickReplyIgnoredWhenDone(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	conv.SubmitQuickReply("no")
	conv.SubmitQuickReply("yes")

	assert.Equal(t, map[string]string{"lump_found": "no"}, conv.Answers())
}

func TestScriptedConversation_BeginStepResetsState(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))
	conv.SubmitQuickReply("no")

	require.NoError(t, conv.BeginStep("visual_inspection"))

	assert.Empty(t, conv.Answers())
	prompt := conv.ActiveQuestion()
	require.NotNil(t, prompt)
	assert.Equal(t, "skin_dimpling", prompt.QuestionID)
}

func TestScriptedConversation_ClarificationWithoutClient(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	reply := conv.SubmitClarification(context.Background(), "what does a lump feel like?")

	assert.Equal(t, "chat.clarification.unavailable", reply)
}

func TestScriptedConversation_ClarificationFailureDegrades(t *testing.T) {
	client := &fakeCompletionClient{err: errors.New("service unavailable")}
	conv := NewScriptedConversation(client, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	reply := conv.SubmitClarification(context.Background(), "what does a lump feel like?")

	assert.Equal(t, "chat.clarification.unavailable", reply)
	assert.Equal(t, 1, client.calls)
	// The step is not interrupted.
	require.NotNil(t, conv.ActiveQuestion())
}

func TestScriptedConversation_ClarificationSuccess(t *testing.T) {
	client := &fakeCompletionClient{response: "  A lump can feel like a firm knot under the skin.  "}
	conv := NewScriptedConversation(client, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))

	reply := conv.SubmitClarification(context.Background(), "what does a lump feel like?")

	assert.Equal(t, "A lump can feel like a firm knot under the skin.", reply)
	// Clarifications never record an answer.
	assert.Empty(t, conv.Answers())
	prompt := conv.ActiveQuestion()
	require.NotNil(t, prompt)
	assert.Equal(t, "lump_found", prompt.QuestionID)
}

func TestScriptedConversation_AnswersReturnsCopy(t *testing.T) {
	conv := NewScriptedConversation(nil, zap.NewNop())
	require.NoError(t, conv.BeginStep("palpation_standing"))
	conv.SubmitQuickReply("no")

	snapshot := conv.Answers()
	snapshot["lump_found"] = "yes"

	assert.Equal(t, map[string]string{"lump_found": "no"}, conv.Answers())
}
