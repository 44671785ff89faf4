package scheduling

import (
	"context"
	"iter"
	"time"

	"concierge/models"
)

// CalendarBackend is the capability the engine consumes from the calendar
// resource. The production implementation lives in the calendar package.
type CalendarBackend interface {
	QueryBusy(ctx context.Context, window models.AvailabilityWindow) ([]models.BusyInterval, error)
	InsertEvent(ctx context.Context, resourceID string, req models.BookingRequest) (string, error)
}

// SchedulingEngine defines the interface for slot search and booking.
type SchedulingEngine interface {
	// CheckSlot reports whether the candidate slot is free of busy intervals.
	CheckSlot(ctx context.Context, slot models.TimeSlot) (bool, error)
	// FreeSlots lazily enumerates the free hour-aligned business-hours
	// slots of the look-ahead window, in chronological order.
	FreeSlots(ctx context.Context, from time.Time, days int) iter.Seq2[models.TimeSlot, error]
	// Book commits an appointment for the requested slot, advancing past
	// conflicts up to the configured attempt bound.
	Book(ctx context.Context, req models.BookingRequest) (*models.ConfirmedBooking, error)
	// SlotAt builds the fixed-duration slot beginning at t in the engine's zone.
	SlotAt(t time.Time) models.TimeSlot
}

// DefaultSchedulingEngine is the production scheduling engine.
type DefaultSchedulingEngine struct {
	Backend    CalendarBackend
	Guard      BookingGuard // nil disables the idempotency guard
	ResourceID string
	Zone       *time.Location
	OpenHour   int // first bookable hour, inclusive
	CloseHour  int // last bookable hour, exclusive
	WindowDays int // default look-ahead for FreeSlots
	MaxRetries int // conflict advances allowed per Book call
}

const (
	defaultOpenHour   = 9
	defaultCloseHour  = 17
	defaultWindowDays = 7
	defaultMaxRetries = 24
)

func (se *DefaultSchedulingEngine) zone() *time.Location {
	if se.Zone != nil {
		return se.Zone
	}
	return time.UTC
}

func (se *DefaultSchedulingEngine) businessHours() (open, close int) {
	open, close = se.OpenHour, se.CloseHour
	if open == 0 && close == 0 {
		open, close = defaultOpenHour, defaultCloseHour
	}
	return open, close
}

// SlotAt builds the slot beginning at t in the engine's zone.
func (se *DefaultSchedulingEngine) SlotAt(t time.Time) models.TimeSlot {
	return models.NewTimeSlot(t, se.zone())
}
