package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend replays a fixed sequence of run statuses and records
// everything submitted to it.
type scriptedBackend struct {
	statuses  []models.RunStatus
	toolCalls map[int][]models.ToolCall // poll index -> pending calls
	messages  []models.ThreadMessage

	poll        int
	submissions [][]models.ToolOutput
	posted      []string

	createThreadErr error
	getRunErr       error
}

func (b *scriptedBackend) CreateThread(ctx context.Context) (string, error) {
	if b.createThreadErr != nil {
		return "", b.createThreadErr
	}
	return "thread_1", nil
}

func (b *scriptedBackend) PostMessage(ctx context.Context, threadID, role, text string) error {
	b.posted = append(b.posted, text)
	return nil
}

func (b *scriptedBackend) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	return "run_1", nil
}

func (b *scriptedBackend) GetRun(ctx context.Context, threadID, runID string) (models.RunStatus, []models.ToolCall, error) {
	if b.getRunErr != nil {
		return "", nil, b.getRunErr
	}
	i := b.poll
	b.poll++
	if i >= len(b.statuses) {
		i = len(b.statuses) - 1
	}
	return b.statuses[i], b.toolCalls[i], nil
}

func (b *scriptedBackend) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []models.ToolOutput) error {
	b.submissions = append(b.submissions, outputs)
	return nil
}

func (b *scriptedBackend) ListMessages(ctx context.Context, threadID string) ([]models.ThreadMessage, error) {
	return b.messages, nil
}

// staticDispatcher answers every call with a fixed payload.
type staticDispatcher struct {
	output string
	calls  []models.ToolCall
}

func (d *staticDispatcher) Dispatch(ctx context.Context, call models.ToolCall, details models.UserDetails) models.ToolOutput {
	d.calls = append(d.calls, call)
	return models.ToolOutput{ToolCallID: call.ID, Output: d.output}
}

func newService(backend AssistantBackend, dispatcher ToolDispatcher) *DefaultConversationService {
	return &DefaultConversationService{
		Backend:      backend,
		Dispatcher:   dispatcher,
		AssistantID:  "asst_1",
		PollInterval: time.Millisecond,
		MaxPolls:     10,
	}
}

func TestConverseReturnsAssistantMessageForRun(t *testing.T) {
	backend := &scriptedBackend{
		statuses: []models.RunStatus{
			models.RunQueued,
			models.RunInProgress,
			models.RunRequiresAction,
			models.RunCompleted,
		},
		toolCalls: map[int][]models.ToolCall{
			2: {{ID: "call_1", FunctionName: "createAppointment"}},
		},
		messages: []models.ThreadMessage{
			{ID: "msg_3", RunID: "run_1", Role: "assistant", Text: "Your appointment is booked."},
			{ID: "msg_2", RunID: "run_0", Role: "assistant", Text: "older run"},
			{ID: "msg_1", RunID: "run_1", Role: "user", Text: "book me in"},
		},
	}
	dispatcher := &staticDispatcher{output: `{"link":"https://calendar.google.com/event"}`}
	svc := newService(backend, dispatcher)

	answer, err := svc.Converse(context.Background(), "book me in", models.UserDetails{})
	require.NoError(t, err)
	assert.Equal(t, "Your appointment is booked.", answer)
	require.Len(t, backend.submissions, 1)
	assert.Equal(t, "call_1", backend.submissions[0][0].ToolCallID)
	assert.Equal(t, []string{"book me in"}, backend.posted)
}

func TestRequiresActionSubmitsCompleteBatch(t *testing.T) {
	backend := &scriptedBackend{
		statuses: []models.RunStatus{
			models.RunRequiresAction,
			models.RunCompleted,
		},
		toolCalls: map[int][]models.ToolCall{
			0: {
				{ID: "call_1", FunctionName: "checkDateTimeAvailability"},
				{ID: "call_2", FunctionName: "createAppointment"},
			},
		},
		messages: []models.ThreadMessage{
			{ID: "msg_1", RunID: "run_1", Role: "assistant", Text: "done"},
		},
	}
	dispatcher := &staticDispatcher{output: `{}`}
	svc := newService(backend, dispatcher)

	_, err := svc.Converse(context.Background(), "hi", models.UserDetails{})
	require.NoError(t, err)

	require.Len(t, backend.submissions, 1, "outputs must go up as one atomic batch")
	batch := backend.submissions[0]
	require.Len(t, batch, 2, "every pending call must be answered")
	ids := []string{batch[0].ToolCallID, batch[1].ToolCallID}
	assert.ElementsMatch(t, []string{"call_1", "call_2"}, ids)
}

func TestRepeatedActionEpisodesAreHandledIndependently(t *testing.T) {
	backend := &scriptedBackend{
		statuses: []models.RunStatus{
			models.RunRequiresAction,
			models.RunRequiresAction,
			models.RunCompleted,
		},
		toolCalls: map[int][]models.ToolCall{
			0: {{ID: "call_1", FunctionName: "checkDateTimeAvailability"}},
			1: {{ID: "call_2", FunctionName: "createAppointment"}},
		},
		messages: []models.ThreadMessage{
			{ID: "msg_1", RunID: "run_1", Role: "assistant", Text: "done"},
		},
	}
	dispatcher := &staticDispatcher{output: `{}`}
	svc := newService(backend, dispatcher)

	_, err := svc.Converse(context.Background(), "hi", models.UserDetails{})
	require.NoError(t, err)

	require.Len(t, backend.submissions, 2)
	assert.Equal(t, "call_1", backend.submissions[0][0].ToolCallID)
	assert.Equal(t, "call_2", backend.submissions[1][0].ToolCallID)
}

func TestFailedRunReturnsFallback(t *testing.T) {
	for _, status := range []models.RunStatus{models.RunFailed, models.RunExpired, models.RunCancelled} {
		backend := &scriptedBackend{statuses: []models.RunStatus{status}}
		svc := newService(backend, &staticDispatcher{output: `{}`})

		answer, err := svc.Converse(context.Background(), "hi", models.UserDetails{})
		require.NoError(t, err)
		assert.Equal(t, FallbackMessage, answer, "status %s", status)
	}
}

func TestExhaustedPollBudgetTimesOut(t *testing.T) {
	backend := &scriptedBackend{statuses: []models.RunStatus{models.RunInProgress}}
	svc := newService(backend, &staticDispatcher{output: `{}`})
	svc.MaxPolls = 3

	logger := testLogger()
	_, err := svc.superviseRun(context.Background(), logger, "thread_1", "run_1", models.UserDetails{})
	require.ErrorIs(t, err, ErrRunTimedOut)
	assert.Equal(t, 3, backend.poll)

	answer, err := svc.Converse(context.Background(), "hi", models.UserDetails{})
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, answer)
}

func TestBackendFailureReturnsFallback(t *testing.T) {
	backend := &scriptedBackend{createThreadErr: errors.New("assistant down")}
	svc := newService(backend, &staticDispatcher{output: `{}`})

	answer, err := svc.Converse(context.Background(), "hi", models.UserDetails{})
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, answer)
}

func TestRequiresActionWithoutCallsFails(t *testing.T) {
	backend := &scriptedBackend{statuses: []models.RunStatus{models.RunRequiresAction}}
	svc := newService(backend, &staticDispatcher{output: `{}`})

	logger := testLogger()
	_, err := svc.superviseRun(context.Background(), logger, "thread_1", "run_1", models.UserDetails{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunTimedOut)
}

func TestDispatcherOutputsRoundTripAsJSON(t *testing.T) {
	backend := &scriptedBackend{
		statuses: []models.RunStatus{models.RunRequiresAction, models.RunCompleted},
		toolCalls: map[int][]models.ToolCall{
			0: {{ID: "call_1", FunctionName: "somethingNew"}},
		},
		messages: []models.ThreadMessage{{ID: "m", RunID: "run_1", Role: "assistant", Text: "ok"}},
	}
	svc := newService(backend, &DefaultToolDispatcher{Scheduler: &fakeScheduler{}})

	answer, err := svc.Converse(context.Background(), "hi", models.UserDetails{})
	require.NoError(t, err)
	assert.Equal(t, "ok", answer, "an unknown tool must not kill the run")

	var payload map[string]string
	require.Len(t, backend.submissions, 1)
	require.NoError(t, json.Unmarshal([]byte(backend.submissions[0][0].Output), &payload))
	assert.Equal(t, "Unhandled function call", payload["error"])
}
