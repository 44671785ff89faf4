package conversation

import (
	"context"
	"encoding/json"
	"iter"
	"testing"
	"time"

	"concierge/models"
	"concierge/services/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// fakeScheduler scripts the scheduling engine for dispatcher tests.
type fakeScheduler struct {
	free     bool
	checkErr error
	booked   *models.ConfirmedBooking
	bookErr  error

	bookRequests []models.BookingRequest
}

func (f *fakeScheduler) CheckSlot(ctx context.Context, slot models.TimeSlot) (bool, error) {
	return f.free, f.checkErr
}

func (f *fakeScheduler) FreeSlots(ctx context.Context, from time.Time, days int) iter.Seq2[models.TimeSlot, error] {
	return func(yield func(models.TimeSlot, error) bool) {}
}

func (f *fakeScheduler) Book(ctx context.Context, req models.BookingRequest) (*models.ConfirmedBooking, error) {
	f.bookRequests = append(f.bookRequests, req)
	return f.booked, f.bookErr
}

func (f *fakeScheduler) SlotAt(t time.Time) models.TimeSlot {
	return models.NewTimeSlot(t, time.UTC)
}

func requested(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &ts
}

func decodeOutput(t *testing.T, out models.ToolOutput) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.Output), &payload))
	return payload
}

func TestDispatchAvailabilityFree(t *testing.T) {
	d := &DefaultToolDispatcher{Scheduler: &fakeScheduler{free: true}}
	details := models.UserDetails{Requested: requested(t, "2024-05-24T22:00:00Z")}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_1", FunctionName: "checkDateTimeAvailability"}, details)

	assert.Equal(t, "call_1", out.ToolCallID)
	assert.JSONEq(t, `{"available": true}`, out.Output)
}

func TestDispatchAvailabilityBusy(t *testing.T) {
	d := &DefaultToolDispatcher{Scheduler: &fakeScheduler{free: false}}
	details := models.UserDetails{Requested: requested(t, "2024-05-24T22:00:00Z")}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_1", FunctionName: "checkDateTimeAvailability"}, details)
	assert.JSONEq(t, `{"available": false}`, out.Output)
}

func TestDispatchAvailabilityWithoutSchedule(t *testing.T) {
	d := &DefaultToolDispatcher{Scheduler: &fakeScheduler{free: true}}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_1", FunctionName: "checkDateTimeAvailability"}, models.UserDetails{})
	assert.JSONEq(t, `{"available": false}`, out.Output)
}

func TestDispatchCreateAppointment(t *testing.T) {
	scheduler := &fakeScheduler{
		free: true,
		booked: &models.ConfirmedBooking{
			ExternalLink: "https://calendar.google.com/event?eid=abc",
		},
	}
	d := &DefaultToolDispatcher{Scheduler: scheduler}
	details := models.UserDetails{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Requested: requested(t, "2024-05-24T22:00:00Z"),
	}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_2", FunctionName: "createAppointment"}, details)

	payload := decodeOutput(t, out)
	assert.Equal(t, "https://calendar.google.com/event?eid=abc", payload["link"])
	require.Len(t, scheduler.bookRequests, 1)
	req := scheduler.bookRequests[0]
	assert.Equal(t, "jane@example.com", req.AttendeeEmail)
	assert.Equal(t, "Appointment", req.Summary)
	assert.Contains(t, req.Description, "Jane Doe")
}

func TestDispatchCreateAppointmentFailure(t *testing.T) {
	scheduler := &fakeScheduler{bookErr: scheduling.NewNoSlotAvailableError("full")}
	d := &DefaultToolDispatcher{Scheduler: scheduler}
	details := models.UserDetails{
		Email:     "jane@example.com",
		Requested: requested(t, "2024-05-24T22:00:00Z"),
	}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_2", FunctionName: "createAppointment"}, details)
	assert.JSONEq(t, `{"error": "Failed to create appointment"}`, out.Output)
}

func TestDispatchCreateAppointmentMissingDetails(t *testing.T) {
	scheduler := &fakeScheduler{}
	d := &DefaultToolDispatcher{Scheduler: scheduler}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_2", FunctionName: "createAppointment"}, models.UserDetails{})
	assert.JSONEq(t, `{"error": "Failed to create appointment"}`, out.Output)
	assert.Empty(t, scheduler.bookRequests)
}

func TestDispatchUnknownFunction(t *testing.T) {
	d := &DefaultToolDispatcher{Scheduler: &fakeScheduler{}}

	out := d.Dispatch(context.Background(), models.ToolCall{ID: "call_3", FunctionName: "renameCalendar"}, models.UserDetails{})
	assert.JSONEq(t, `{"error": "Unhandled function call"}`, out.Output)
}
