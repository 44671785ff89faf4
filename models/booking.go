package models

// BookingRequest carries everything needed to commit one appointment.
// It is created per booking attempt and consumed once.
type BookingRequest struct {
	Slot          TimeSlot `json:"slot"`
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	AttendeeEmail string   `json:"attendeeEmail"`
}

// ConfirmedBooking is the result of a successful commit. Ownership passes
// to the caller, which surfaces the link to the user.
type ConfirmedBooking struct {
	Slot         TimeSlot `json:"slot"`
	ExternalLink string   `json:"externalLink"`
}
