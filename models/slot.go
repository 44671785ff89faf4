package models

import "time"

// SlotDuration is the fixed length of every appointment slot.
const SlotDuration = time.Hour

// TimeSlot is a fixed-duration calendar interval under consideration for
// booking. End is always Start plus SlotDuration.
type TimeSlot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	TimeZone string    `json:"timeZone"`
}

// NewTimeSlot builds the slot beginning at start in the given zone.
func NewTimeSlot(start time.Time, zone *time.Location) TimeSlot {
	start = start.In(zone)
	return TimeSlot{
		Start:    start,
		End:      start.Add(SlotDuration),
		TimeZone: zone.String(),
	}
}

// Next returns the slot one duration later, the candidate tried when this
// one turns out to be taken.
func (s TimeSlot) Next() TimeSlot {
	return TimeSlot{
		Start:    s.Start.Add(SlotDuration),
		End:      s.End.Add(SlotDuration),
		TimeZone: s.TimeZone,
	}
}

// Overlaps reports whether the slot intersects the busy interval.
func (s TimeSlot) Overlaps(b BusyInterval) bool {
	return s.Start.Before(b.End) && b.Start.Before(s.End)
}

// BusyInterval is one occupied range reported by the calendar backend.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityWindow is the query range handed to the calendar backend.
// It is never persisted.
type AvailabilityWindow struct {
	RangeStart time.Time
	RangeEnd   time.Time
	ResourceID string
}

// WindowFor returns the window tightly covering a single candidate slot.
func WindowFor(slot TimeSlot, resourceID string) AvailabilityWindow {
	return AvailabilityWindow{
		RangeStart: slot.Start,
		RangeEnd:   slot.End,
		ResourceID: resourceID,
	}
}
