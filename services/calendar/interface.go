package calendar

import (
	"context"
	"time"

	"leadline/models"
)

// Gateway answers availability questions against the backing calendar and
// books meetings on it. Availability methods never fail: backend errors are
// reported as "not free".
type Gateway interface {
	IsFree(ctx context.Context, slot models.TimeSlot) bool
	FindNextFree(ctx context.Context, from time.Time, d time.Duration) time.Time
	Book(ctx context.Context, slot models.TimeSlot, attendee, summary string) (*BookingReceipt, error)
}

// Backend is the raw calendar API used by DefaultGateway.
type Backend interface {
	ListEvents(ctx context.Context, window models.TimeSlot) ([]Event, error)
	InsertEvent(ctx context.Context, req EventRequest) (*BookingReceipt, error)
}

// Event is the subset of a calendar entry the gateway needs.
type Event struct {
	ID         string
	Summary    string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Attendees  []string
	MeetingURI string
	HTMLLink   string
}

// Blocks reports whether the event occupies any part of slot.
func (e Event) Blocks(slot models.TimeSlot) bool {
	if e.Start.IsZero() || e.End.IsZero() {
		return true
	}
	return models.TimeSlot{Start: e.Start, End: e.End}.Overlaps(slot)
}

func (e Event) hasAttendee(email string) bool {
	for _, a := range e.Attendees {
		if a == email {
			return true
		}
	}
	return false
}

// EventRequest describes a meeting to create.
type EventRequest struct {
	Slot        models.TimeSlot
	Summary     string
	Description string
	Location    string
	Attendee    string
	RequestID   string
}

// BookingReceipt is returned once a meeting exists on the calendar.
type BookingReceipt struct {
	EventID    string          `json:"event_id"`
	HTMLLink   string          `json:"html_link,omitempty"`
	MeetingURI string          `json:"meeting_uri,omitempty"`
	Slot       models.TimeSlot `json:"slot"`
	Attendee   string          `json:"attendee"`
	Existing   bool            `json:"existing,omitempty"` // an identical booking was already present
}
