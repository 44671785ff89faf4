package scheduling

import (
	"context"
	"iter"
	"time"

	"concierge/models"
)

// FreeSlots lazily enumerates the free slots of the look-ahead window.
// Candidates start on exact hour boundaries between the open hour
// (inclusive) and the close hour (exclusive); a slot whose end crosses the
// close is still offered when its start is within hours. days <= 0 falls
// back to the configured window. The sequence is finite and restartable;
// stopping after the first result costs no further backend queries. A
// backend failure mid-scan ends the sequence with that error instead of
// silently skipping the day.
func (se *DefaultSchedulingEngine) FreeSlots(ctx context.Context, from time.Time, days int) iter.Seq2[models.TimeSlot, error] {
	if days <= 0 {
		days = se.WindowDays
	}
	if days <= 0 {
		days = defaultWindowDays
	}
	open, close := se.businessHours()
	zone := se.zone()
	from = from.In(zone)

	return func(yield func(models.TimeSlot, error) bool) {
		for day := 0; day < days; day++ {
			date := from.AddDate(0, 0, day)
			for hour := open; hour < close; hour++ {
				start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, zone)
				if start.Before(from) {
					continue
				}
				slot := models.NewTimeSlot(start, zone)
				free, err := se.CheckSlot(ctx, slot)
				if err != nil {
					yield(models.TimeSlot{}, err)
					return
				}
				if !free {
					continue
				}
				if !yield(slot, nil) {
					return
				}
			}
		}
	}
}

// FirstFreeSlot returns the earliest free slot of the window, or a
// NoSlotAvailable error when the whole window is booked.
func (se *DefaultSchedulingEngine) FirstFreeSlot(ctx context.Context, from time.Time, days int) (models.TimeSlot, error) {
	for slot, err := range se.FreeSlots(ctx, from, days) {
		if err != nil {
			return models.TimeSlot{}, err
		}
		return slot, nil
	}
	return models.TimeSlot{}, NewNoSlotAvailableError("no free slot in the search window")
}
