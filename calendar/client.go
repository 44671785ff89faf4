// Package calendar wraps the Google Calendar API as the booking backend.
package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"concierge/models"

	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
}

// NewClient builds a calendar client authenticated with a service-account
// key file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar credentials %s: %w", credentialsFile, err)
	}

	conf, err := google.JWTConfigFromJSON(data,
		calendar.CalendarScope,
		calendar.CalendarEventsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar credentials: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// NewClientWithService wires an already-constructed service, used by tests
// to point the client at a local server.
func NewClientWithService(svc *calendar.Service) *Client {
	return &Client{svc: svc}
}

// QueryBusy returns the busy intervals of the window's calendar resource.
// It is a read-only freebusy query and is never retried here.
func (c *Client) QueryBusy(ctx context.Context, window models.AvailabilityWindow) ([]models.BusyInterval, error) {
	query := &calendar.FreeBusyRequest{
		TimeMin: window.RangeStart.Format(time.RFC3339),
		TimeMax: window.RangeEnd.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: window.ResourceID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[window.ResourceID]
	if !ok {
		return nil, fmt.Errorf("freebusy response missing calendar %q", window.ResourceID)
	}
	for _, calErr := range cal.Errors {
		return nil, fmt.Errorf("freebusy query failed for %q: %s", window.ResourceID, calErr.Reason)
	}

	var busy []models.BusyInterval
	for _, interval := range cal.Busy {
		start, err := time.Parse(time.RFC3339, interval.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", interval.Start, err)
		}
		end, err := time.Parse(time.RFC3339, interval.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", interval.End, err)
		}
		busy = append(busy, models.BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

// InsertEvent commits one appointment event and returns the externally
// visible link to it.
func (c *Client) InsertEvent(ctx context.Context, resourceID string, req models.BookingRequest) (string, error) {
	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Slot.Start.Format(time.RFC3339),
			TimeZone: req.Slot.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.Slot.End.Format(time.RFC3339),
			TimeZone: req.Slot.TimeZone,
		},
	}
	if req.AttendeeEmail != "" {
		event.Attendees = []*calendar.EventAttendee{{Email: req.AttendeeEmail}}
	}

	created, err := c.svc.Events.Insert(resourceID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.HtmlLink, nil
}
