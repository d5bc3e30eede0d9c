package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"leadline/models"
)

type fakeBackend struct {
	mu        sync.Mutex
	events    []Event
	listErr   error
	insertErr error
	lists     []models.TimeSlot
	inserts   []EventRequest
}

func (b *fakeBackend) ListEvents(_ context.Context, window models.TimeSlot) ([]Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists = append(b.lists, window)
	if b.listErr != nil {
		return nil, b.listErr
	}
	var out []Event
	for _, ev := range b.events {
		if ev.Blocks(window) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (b *fakeBackend) InsertEvent(_ context.Context, req EventRequest) (*BookingReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inserts = append(b.inserts, req)
	if b.insertErr != nil {
		return nil, b.insertErr
	}
	return &BookingReceipt{EventID: fmt.Sprintf("evt-%d", len(b.inserts)), MeetingURI: "https://meet.google.com/x"}, nil
}

var base = time.Date(2025, time.March, 4, 18, 0, 0, 0, time.UTC)

func event(start time.Time, d time.Duration, attendees ...string) Event {
	return Event{ID: start.Format(time.RFC3339), Start: start, End: start.Add(d), Attendees: attendees}
}

func TestIsFree(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{events: []Event{event(base, time.Hour)}}
	g := NewGateway(b, time.Second, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		slot models.TimeSlot
		want bool
	}{
		{"overlapping", models.NewTimeSlot(base.Add(30*time.Minute), 30*time.Minute), false},
		{"ends at event start", models.NewTimeSlot(base.Add(-30*time.Minute), 30*time.Minute), true},
		{"starts at event end", models.NewTimeSlot(base.Add(time.Hour), 30*time.Minute), true},
		{"zero length", models.TimeSlot{Start: base.Add(2 * time.Hour), End: base.Add(2 * time.Hour)}, false},
	}
	for _, tt := range tests {
		if got := g.IsFree(ctx, tt.slot); got != tt.want {
			t.Errorf("%s: IsFree = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsFreeBackendErrorMeansBusy(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeBackend{listErr: errors.New("503")}, time.Second, nil)
	if g.IsFree(context.Background(), models.NewTimeSlot(base, 30*time.Minute)) {
		t.Error("IsFree = true on backend error")
	}
	if _, err := g.check(context.Background(), models.NewTimeSlot(base, 30*time.Minute)); !errors.Is(err, ErrCalendarUnavailable) {
		t.Errorf("check error = %v, want ErrCalendarUnavailable", err)
	}
}

func TestFindNextFree(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{events: []Event{event(base, 90*time.Minute)}}
	g := NewGateway(b, time.Second, nil)

	got := g.FindNextFree(context.Background(), base, 30*time.Minute)
	if want := base.Add(90 * time.Minute); !got.Equal(want) {
		t.Errorf("FindNextFree = %v, want %v", got, want)
	}
	if len(b.lists) != 4 {
		t.Errorf("probes = %d, want 4", len(b.lists))
	}
}

func TestFindNextFreeExhausted(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{events: []Event{event(base.Add(-time.Hour), 72*time.Hour)}}
	g := NewGateway(b, time.Second, nil)

	got := g.FindNextFree(context.Background(), base, 30*time.Minute)
	if want := base.Add(24 * time.Hour); !got.Equal(want) {
		t.Errorf("FindNextFree = %v, want %v", got, want)
	}
	if len(b.lists) != DefaultProbes {
		t.Errorf("probes = %d, want %d", len(b.lists), DefaultProbes)
	}
	last := b.lists[len(b.lists)-1]
	if want := base.Add(47 * 30 * time.Minute); !last.Start.Equal(want) {
		t.Errorf("last probe at %v, want %v", last.Start, want)
	}
}

func TestFindNextFreeStopsOnAuthError(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{listErr: ErrAuthRequired}
	g := NewGateway(b, time.Second, nil)

	got := g.FindNextFree(context.Background(), base, 30*time.Minute)
	if !got.Equal(base.Add(SearchHorizon)) {
		t.Errorf("FindNextFree = %v, want horizon", got)
	}
	if len(b.lists) != 1 {
		t.Errorf("probes = %d, want 1", len(b.lists))
	}
}

func TestFindNextFreeCancelled(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{}
	g := NewGateway(b, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g.FindNextFree(ctx, base, 30*time.Minute)
	if len(b.lists) != 0 {
		t.Errorf("probes after cancel = %d, want 0", len(b.lists))
	}
}

func TestBook(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{}
	g := NewGateway(b, time.Second, nil)
	slot := models.NewTimeSlot(base, 30*time.Minute)

	receipt, err := g.Book(context.Background(), slot, " ann@example.com ", "Consultation")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if receipt.EventID != "evt-1" || receipt.Attendee != "ann@example.com" || receipt.Existing {
		t.Errorf("receipt = %+v", receipt)
	}
	if len(b.inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(b.inserts))
	}
	req := b.inserts[0]
	if req.Location != "Google Meet" || req.Description != "Conversation with your AI assistant." {
		t.Errorf("request = %+v", req)
	}
	if req.RequestID == "" {
		t.Error("request has no conference request id")
	}
}

func TestBookReusesExistingMeeting(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{events: []Event{event(base, 30*time.Minute, "ann@example.com")}}
	g := NewGateway(b, time.Second, nil)

	receipt, err := g.Book(context.Background(), models.NewTimeSlot(base, 30*time.Minute), "ann@example.com", "Consultation")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if !receipt.Existing {
		t.Error("receipt not marked existing")
	}
	if len(b.inserts) != 0 {
		t.Errorf("inserts = %d, want 0", len(b.inserts))
	}
}

func TestBookErrors(t *testing.T) {
	t.Parallel()

	slot := models.NewTimeSlot(base, 30*time.Minute)
	tests := []struct {
		name     string
		backend  *fakeBackend
		slot     models.TimeSlot
		attendee string
		code     string
	}{
		{"missing attendee", &fakeBackend{}, slot, " ", CodeInvalidRequest},
		{"empty slot", &fakeBackend{}, models.TimeSlot{Start: base, End: base}, "a@b.c", CodeInvalidRequest},
		{"auth on lookup", &fakeBackend{listErr: ErrAuthRequired}, slot, "a@b.c", CodeAuthRequired},
		{"auth on insert", &fakeBackend{insertErr: fmt.Errorf("token: %w", ErrAuthRequired)}, slot, "a@b.c", CodeAuthRequired},
		{"timeout", &fakeBackend{insertErr: context.DeadlineExceeded}, slot, "a@b.c", CodeTimeout},
		{"rejected", &fakeBackend{insertErr: errors.New("400 bad request")}, slot, "a@b.c", CodeBackend},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewGateway(tt.backend, time.Second, nil)
			_, err := g.Book(context.Background(), tt.slot, tt.attendee, "Consultation")
			if !errors.Is(err, ErrBookingFailed) {
				t.Fatalf("Book error = %v, want ErrBookingFailed", err)
			}
			var be *BookingError
			if !errors.As(err, &be) || be.Code != tt.code {
				t.Errorf("Book error = %v, want code %s", err, tt.code)
			}
		})
	}
}
