package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"concierge/models"
	"concierge/services/scheduling"
	"concierge/utils"

	"go.uber.org/zap"
)

const (
	toolCheckAvailability = "checkDateTimeAvailability"
	toolCreateAppointment = "createAppointment"
)

// ToolDispatcher maps one assistant tool call to a concrete scheduling
// operation and serializes its result. It holds no state across calls.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call models.ToolCall, details models.UserDetails) models.ToolOutput
}

// DefaultToolDispatcher implements ToolDispatcher on the scheduling engine.
type DefaultToolDispatcher struct {
	Scheduler scheduling.SchedulingEngine
}

// Dispatch always produces an output, even for unknown function names:
// an unhandled call is a recoverable condition reported back to the
// assistant, not a failure of the run.
func (d *DefaultToolDispatcher) Dispatch(ctx context.Context, call models.ToolCall, details models.UserDetails) models.ToolOutput {
	logger := utils.GetLogger()

	var payload any
	switch call.FunctionName {
	case toolCheckAvailability:
		payload = d.checkAvailability(ctx, details)
	case toolCreateAppointment:
		payload = d.createAppointment(ctx, details)
	default:
		logger.Warn("unhandled function call",
			zap.String("function", call.FunctionName), zap.String("toolCallID", call.ID))
		payload = map[string]string{"error": "Unhandled function call"}
	}

	out, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to serialize tool output", zap.Error(err))
		out = []byte(`{"error":"Unhandled function call"}`)
	}
	return models.ToolOutput{ToolCallID: call.ID, Output: string(out)}
}

func (d *DefaultToolDispatcher) checkAvailability(ctx context.Context, details models.UserDetails) any {
	logger := utils.GetLogger()

	if details.Requested == nil {
		logger.Warn("availability check without a requested date/time")
		return map[string]bool{"available": false}
	}

	slot := d.Scheduler.SlotAt(*details.Requested)
	free, err := d.Scheduler.CheckSlot(ctx, slot)
	if err != nil {
		logger.Error("availability check failed", zap.Time("start", slot.Start), zap.Error(err))
		return map[string]bool{"available": false}
	}
	return map[string]bool{"available": free}
}

func (d *DefaultToolDispatcher) createAppointment(ctx context.Context, details models.UserDetails) any {
	logger := utils.GetLogger()

	if details.Requested == nil || details.Email == "" {
		logger.Warn("appointment request missing date/time or email")
		return map[string]string{"error": "Failed to create appointment"}
	}

	description := "Appointment"
	if details.Name != "" {
		description = fmt.Sprintf("Appointment with %s", details.Name)
	}
	req := models.BookingRequest{
		Slot:          d.Scheduler.SlotAt(*details.Requested),
		Summary:       "Appointment",
		Description:   description,
		AttendeeEmail: details.Email,
	}

	booked, err := d.Scheduler.Book(ctx, req)
	if err != nil {
		logger.Error("appointment booking failed",
			zap.Time("start", req.Slot.Start), zap.Error(err))
		return map[string]string{"error": "Failed to create appointment"}
	}
	return map[string]string{"link": booked.ExternalLink}
}
