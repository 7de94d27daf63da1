package service

import (
	"context"
	"testing"

	"github.com/orchid-health/breastcare-backend/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelfCheckService_StartSession(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())

	state := svc.StartSession()

	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, model.PhaseInstructions, state.Phase)
	assert.Equal(t, "visual_inspection", state.StepID)
	assert.Equal(t, "rose", state.Accent)
	assert.Equal(t, "selfcheck.visual.intro", state.InstructionKey)
	assert.Equal(t, 1, state.Progress.Current)
	assert.Equal(t, 11, state.Progress.Total)
}

func TestSelfCheckService_UnknownSession(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())

	_, _, err := svc.NextInstruction("missing")
	assert.Error(t, err)
	_, err = svc.PreviousInstruction("missing")
	assert.Error(t, err)
	_, err = svc.EnterChat(context.Background(), "missing", "", "")
	assert.Error(t, err)
	_, err = svc.ChatReply(context.Background(), "missing", "yes", "", "")
	assert.Error(t, err)
	_, err = svc.Clarify(context.Background(), "missing", "help")
	assert.Error(t, err)
	_, err = svc.Progress("missing")
	assert.Error(t, err)
	_, err = svc.Reset("missing")
	assert.Error(t, err)
}

func TestSelfCheckService_InstructionPaging(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	state, advanced, err := svc.NextInstruction(sessionID)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, "selfcheck.visual.mirror", state.InstructionKey)

	_, advanced, err = svc.NextInstruction(sessionID)
	require.NoError(t, err)
	assert.True(t, advanced)

	// Last page: advanced is false, the caller should enter chat.
	state, advanced, err = svc.NextInstruction(sessionID)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, "selfcheck.visual.arms_raised", state.InstructionKey)

	state, err = svc.PreviousInstruction(sessionID)
	require.NoError(t, err)
	assert.Equal(t, "selfcheck.visual.mirror", state.InstructionKey)
}

func TestSelfCheckService_ChatReplyOutsideChatPhase(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.ChatReply(context.Background(), sessionID, "yes", "", "")
	assert.Error(t, err)
	_, err = svc.Clarify(context.Background(), sessionID, "help")
	assert.Error(t, err)
}

func TestSelfCheckService_EnterChatPresentsFirstPrompt(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	state, err := svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)

	assert.Equal(t, model.PhaseChat, state.Phase)
	require.NotNil(t, state.Prompt)
	assert.Equal(t, "skin_dimpling", state.Prompt.QuestionID)
	assert.Equal(t, []string{"yes", "no"}, state.Prompt.QuickReplies)
}

func TestSelfCheckService_StepChatAdvancesToNextStep(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)

	var state SelfCheckState
	for _, reply := range []string{"no", "no", "no"} {
		state, err = svc.ChatReply(context.Background(), sessionID, reply, "", "")
		require.NoError(t, err)
	}

	assert.Equal(t, model.PhaseInstructions, state.Phase)
	assert.Equal(t, "palpation_standing", state.StepID)
	assert.Equal(t, "coral", state.Accent)
	assert.Nil(t, state.Prompt)
	assert.Empty(t, history.Records(), "no record before the last step finishes")
}

func TestSelfCheckService_FullWalkRecordsResult(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	audit := &mockAuditTrail{}
	audit.On("LogCreate", mock.Anything, "", "assessment", mock.AnythingOfType("string"), "10.0.0.1", "test-agent").Return(nil)

	svc := NewSelfCheckService(history, audit, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	stepReplies := [][]string{
		{"no", "no", "no"},
		// lump_found yes reveals characteristics and location.
		{"yes", "hard, fixed", "upper_outer"},
		{"no", "no"},
	}

	var state SelfCheckState
	for _, replies := range stepReplies {
		_, err := svc.EnterChat(context.Background(), sessionID, "10.0.0.1", "test-agent")
		require.NoError(t, err)
		for _, reply := range replies {
			var err error
			state, err = svc.ChatReply(context.Background(), sessionID, reply, "10.0.0.1", "test-agent")
			require.NoError(t, err)
		}
	}

	assert.Equal(t, model.PhaseResults, state.Phase)
	require.NotNil(t, state.Result)
	// lump 3 + hard 2 + fixed 2
	assert.Equal(t, 7, state.Result.Score)
	assert.Equal(t, model.RiskLevelHigh, state.Result.RiskLevel)
	assert.Equal(t, state.Progress.Total, state.Progress.Current)

	records := history.Records()
	require.Len(t, records, 1)
	assert.Equal(t, model.AssessmentKindSelfCheck, records[0].Kind)
	assert.Equal(t, *state.Result, records[0].Result)
	assert.True(t, records[0].Answers.Bool("lump_found"))
	assert.Equal(t, []string{"hard", "fixed"}, records[0].Answers.Strings("lump_characteristics"))

	audit.AssertExpectations(t)
}

func TestSelfCheckService_NegativeLumpSkipsFollowUps(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)
	for _, reply := range []string{"no", "no", "no"} {
		_, err = svc.ChatReply(context.Background(), sessionID, reply, "", "")
		require.NoError(t, err)
	}

	_, err = svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)

	// A single "no" answers lump_found and closes the whole palpation step.
	state, err := svc.ChatReply(context.Background(), sessionID, "no", "", "")
	require.NoError(t, err)

	assert.Equal(t, model.PhaseInstructions, state.Phase)
	assert.Equal(t, "palpation_lying", state.StepID)
}

func TestSelfCheckService_ClarifyDegradesWithoutClient(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)

	reply, err := svc.Clarify(context.Background(), sessionID, "what is dimpling?")
	require.NoError(t, err)
	assert.Equal(t, "chat.clarification.unavailable", reply)
}

func TestSelfCheckService_ClarifyUsesClient(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	client := &fakeCompletionClient{response: "Dimpling is a pulled-in area of skin."}
	svc := NewSelfCheckService(history, nil, client, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)

	reply, err := svc.Clarify(context.Background(), sessionID, "what is dimpling?")
	require.NoError(t, err)
	assert.Equal(t, "Dimpling is a pulled-in area of skin.", reply)
	assert.Equal(t, 1, client.calls)
}

func TestSelfCheckService_Reset(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewSelfCheckService(history, nil, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.EnterChat(context.Background(), sessionID, "", "")
	require.NoError(t, err)
	_, err = svc.ChatReply(context.Background(), sessionID, "yes", "", "")
	require.NoError(t, err)

	state, err := svc.Reset(sessionID)
	require.NoError(t, err)

	assert.Equal(t, model.PhaseLanding, state.Phase)
	assert.Nil(t, state.Prompt)
	assert.Equal(t, 0, state.Progress.Current)

	// Chat state is gone with the reset.
	_, err = svc.ChatReply(context.Background(), sessionID, "yes", "", "")
	assert.Error(t, err)
}
