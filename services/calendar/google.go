package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"leadline/models"
)

// Scope requested when authorizing calendar access.
const Scope = gcal.CalendarScope

// GoogleBackend talks to the Google Calendar v3 API. The API client is
// created on first use; the token source is consulted before every request
// so an unrecoverable credential surfaces as ErrAuthRequired.
type GoogleBackend struct {
	calendarID string
	tokens     oauth2.TokenSource
	opts       []option.ClientOption

	mu  sync.Mutex
	svc *gcal.Service
}

func NewGoogleBackend(calendarID string, tokens oauth2.TokenSource, opts ...option.ClientOption) *GoogleBackend {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleBackend{calendarID: calendarID, tokens: tokens, opts: opts}
}

func (b *GoogleBackend) service(ctx context.Context) (*gcal.Service, error) {
	if _, err := b.tokens.Token(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.svc != nil {
		return b.svc, nil
	}
	opts := append([]option.ClientOption{option.WithTokenSource(b.tokens)}, b.opts...)
	// The client outlives the first request, so it must not inherit its deadline.
	svc, err := gcal.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}
	b.svc = svc
	return svc, nil
}

func (b *GoogleBackend) ListEvents(ctx context.Context, window models.TimeSlot) ([]Event, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Events.List(b.calendarID).
		TimeMin(window.Start.UTC().Format(time.RFC3339)).
		TimeMax(window.End.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Status == "cancelled" || item.Transparency == "transparent" {
			continue
		}
		events = append(events, fromGoogleEvent(item))
	}
	return events, nil
}

func (b *GoogleBackend) InsertEvent(ctx context.Context, req EventRequest) (*BookingReceipt, error) {
	svc, err := b.service(ctx)
	if err != nil {
		return nil, err
	}
	ev := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start: &gcal.EventDateTime{
			DateTime: req.Slot.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: req.Slot.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Attendees: []*gcal.EventAttendee{{Email: req.Attendee}},
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             req.RequestID,
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := svc.Events.Insert(b.calendarID, ev).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	out := fromGoogleEvent(created)
	return &BookingReceipt{
		EventID:    out.ID,
		HTMLLink:   out.HTMLLink,
		MeetingURI: out.MeetingURI,
	}, nil
}

func fromGoogleEvent(item *gcal.Event) Event {
	ev := Event{
		ID:         item.Id,
		Summary:    item.Summary,
		HTMLLink:   item.HtmlLink,
		MeetingURI: item.HangoutLink,
	}
	ev.Start, ev.AllDay = parseEventTime(item.Start)
	ev.End, _ = parseEventTime(item.End)
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	if ev.MeetingURI == "" && item.ConferenceData != nil {
		for _, ep := range item.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				ev.MeetingURI = ep.Uri
				break
			}
		}
	}
	return ev
}

// parseEventTime handles both timed and all-day entries. An unparseable
// value yields the zero time, which Event.Blocks treats as blocking.
func parseEventTime(dt *gcal.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), false
	}
	if dt.Date != "" {
		loc := time.UTC
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation("2006-01-02", dt.Date, loc)
		if err != nil {
			return time.Time{}, true
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}
