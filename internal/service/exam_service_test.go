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

type mockAuditTrail struct {
	mock.Mock
}

func (m *mockAuditTrail) LogCreate(ctx context.Context, userID, resourceType, resourceID, ipAddress, userAgent string) error {
	args := m.Called(ctx, userID, resourceType, resourceID, ipAddress, userAgent)
	return args.Error(0)
}

func (m *mockAuditTrail) LogDelete(ctx context.Context, userID, resourceType, resourceID, ipAddress, userAgent string) error {
	args := m.Called(ctx, userID, resourceType, resourceID, ipAddress, userAgent)
	return args.Error(0)
}

func newTestHistoryStore(t *testing.T) (*HistoryStore, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	store := NewHistoryStore(kv, nil, zap.NewNop())
	store.Load(context.Background())
	return store, kv
}

func TestExamService_StartSession(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewExamService(history, nil, zap.NewNop())

	state := svc.StartSession()

	assert.NotEmpty(t, state.SessionID)
	assert.True(t, state.HasMore)
	require.NotNil(t, state.Question)
	assert.Equal(t, "lump_found", state.Question.ID)
	assert.Equal(t, "symptoms", state.Question.Section)
	assert.Equal(t, 1, state.Progress.Current)
}

func TestExamService_UnknownSession(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewExamService(history, nil, zap.NewNop())

	assert.Error(t, svc.RecordAnswer("missing", "lump_found", true))
	_, err := svc.Advance("missing")
	assert.Error(t, err)
	_, err = svc.Retreat("missing")
	assert.Error(t, err)
	_, err = svc.Progress("missing")
	assert.Error(t, err)
	_, err = svc.Complete(context.Background(), "missing", "", "")
	assert.Error(t, err)
}

func TestExamService_AnswerAndNavigate(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewExamService(history, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	require.NoError(t, svc.RecordAnswer(sessionID, "lump_found", true))

	state, err := svc.Advance(sessionID)
	require.NoError(t, err)
	assert.True(t, state.HasMore)
	require.NotNil(t, state.Question)
	assert.Equal(t, "lump_characteristics", state.Question.ID)
	assert.NotEmpty(t, state.Question.Options)

	state, err = svc.Retreat(sessionID)
	require.NoError(t, err)
	require.NotNil(t, state.Question)
	assert.Equal(t, "lump_found", state.Question.ID)
}

func TestExamService_CompleteAppendsHistory(t *testing.T) {
	history, kv := newTestHistoryStore(t)
	audit := &mockAuditTrail{}
	audit.On("LogCreate", mock.Anything, "", "assessment", mock.AnythingOfType("string"), "10.0.0.1", "test-agent").Return(nil)

	svc := NewExamService(history, audit, zap.NewNop())
	sessionID := svc.StartSession().SessionID
	require.NoError(t, svc.RecordAnswer(sessionID, "lump_found", true))
	require.NoError(t, svc.RecordAnswer(sessionID, "nipple_discharge", true))

	result, err := svc.Complete(context.Background(), sessionID, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, model.RiskLevelHigh, result.RiskLevel)
	assert.Equal(t, []string{"lump_found", "nipple_discharge"}, result.RedFlags)

	records := history.Records()
	require.Len(t, records, 1)
	assert.Equal(t, model.AssessmentKindExam, records[0].Kind)
	assert.True(t, records[0].Completed)
	assert.Equal(t, result, records[0].Result)
	assert.True(t, records[0].Answers.Bool("lump_found"))

	require.NoError(t, history.Flush(context.Background()))
	_, stored := kv.stored(historyKey)
	assert.True(t, stored)

	audit.AssertExpectations(t)
}

func TestExamService_CompleteIsIdempotent(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewExamService(history, nil, zap.NewNop())
	sessionID := svc.StartSession().SessionID
	require.NoError(t, svc.RecordAnswer(sessionID, "breast_pain", true))

	first, err := svc.Complete(context.Background(), sessionID, "", "")
	require.NoError(t, err)
	second, err := svc.Complete(context.Background(), sessionID, "", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, history.Records(), 1, "repeat completion must not duplicate the record")
}

func TestExamService_AuditFailureDoesNotBlockCompletion(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	audit := &mockAuditTrail{}
	audit.On("LogCreate", mock.Anything, "", "assessment", mock.AnythingOfType("string"), "", "").
		Return(assert.AnError)

	svc := NewExamService(history, audit, zap.NewNop())
	sessionID := svc.StartSession().SessionID

	_, err := svc.Complete(context.Background(), sessionID, "", "")

	require.NoError(t, err)
	assert.Len(t, history.Records(), 1)
	audit.AssertExpectations(t)
}

func TestExamService_SessionsAreIsolated(t *testing.T) {
	history, _ := newTestHistoryStore(t)
	svc := NewExamService(history, nil, zap.NewNop())

	a := svc.StartSession().SessionID
	b := svc.StartSession().SessionID
	require.NotEqual(t, a, b)

	require.NoError(t, svc.RecordAnswer(a, "lump_found", true))

	stateA, err := svc.Advance(a)
	require.NoError(t, err)
	stateB, err := svc.Advance(b)
	require.NoError(t, err)

	assert.Equal(t, "lump_characteristics", stateA.Question.ID)
	assert.Equal(t, "nipple_discharge", stateB.Question.ID)
}
