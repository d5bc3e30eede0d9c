package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadline/models"
)

const (
	DefaultProbes  = 48
	DefaultStride  = 30 * time.Minute
	DefaultTimeout = 5 * time.Second

	// SearchHorizon is what FindNextFree adds to its start when nothing is free.
	SearchHorizon = 24 * time.Hour

	meetingLocation    = "Google Meet"
	meetingDescription = "Conversation with your AI assistant."
)

// DefaultGateway implements Gateway over a Backend.
type DefaultGateway struct {
	Backend Backend
	Logger  *zap.Logger

	// Timeout bounds each individual backend request.
	Timeout time.Duration
	Probes  int
	Stride  time.Duration
}

func NewGateway(backend Backend, timeout time.Duration, logger *zap.Logger) *DefaultGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DefaultGateway{
		Backend: backend,
		Logger:  logger,
		Timeout: timeout,
		Probes:  DefaultProbes,
		Stride:  DefaultStride,
	}
}

// IsFree reports whether no event overlaps slot. Any failure counts as busy.
func (g *DefaultGateway) IsFree(ctx context.Context, slot models.TimeSlot) bool {
	free, err := g.check(ctx, slot)
	if err != nil {
		g.Logger.Warn("Availability check failed, treating slot as busy",
			zap.Time("slot_start", slot.Start), zap.Error(err))
		return false
	}
	return free
}

func (g *DefaultGateway) check(ctx context.Context, slot models.TimeSlot) (bool, error) {
	if !slot.Valid() {
		return false, fmt.Errorf("invalid slot %s..%s", slot.Start, slot.End)
	}
	events, err := g.list(ctx, slot)
	if err != nil {
		return false, err
	}
	for _, ev := range events {
		if ev.Blocks(slot) {
			return false, nil
		}
	}
	return true, nil
}

func (g *DefaultGateway) list(ctx context.Context, slot models.TimeSlot) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	events, err := g.Backend.ListEvents(ctx, slot)
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}
	return events, nil
}

// FindNextFree probes consecutive slots of length d starting at from, one
// stride apart, and returns the first free start. When the horizon is
// exhausted it returns from+24h, which is not guaranteed to be free.
func (g *DefaultGateway) FindNextFree(ctx context.Context, from time.Time, d time.Duration) time.Time {
	from = from.UTC()
	for i := 0; i < g.Probes; i++ {
		if ctx.Err() != nil {
			break
		}
		slot := models.NewTimeSlot(from.Add(time.Duration(i)*g.Stride), d)
		free, err := g.check(ctx, slot)
		if err != nil {
			g.Logger.Warn("Probe failed", zap.Int("probe", i), zap.Time("slot_start", slot.Start), zap.Error(err))
			if errors.Is(err, ErrAuthRequired) {
				break
			}
			continue
		}
		if free {
			return slot.Start
		}
	}
	return from.Add(SearchHorizon)
}

// Book creates the meeting with a conference link and emails the invite.
// A meeting already booked for the same attendee at the same slot is
// returned instead of creating a second one.
func (g *DefaultGateway) Book(ctx context.Context, slot models.TimeSlot, attendee, summary string) (*BookingReceipt, error) {
	attendee = strings.TrimSpace(attendee)
	if !slot.Valid() {
		return nil, NewBookingError(CodeInvalidRequest, "slot end must be after start", nil)
	}
	if attendee == "" {
		return nil, NewBookingError(CodeInvalidRequest, "attendee email is required", nil)
	}

	if existing, err := g.list(ctx, slot); err == nil {
		for _, ev := range existing {
			if ev.hasAttendee(attendee) && ev.Start.Equal(slot.Start) {
				g.Logger.Info("Meeting already booked, reusing it",
					zap.String("event_id", ev.ID), zap.String("email", attendee))
				return &BookingReceipt{
					EventID:    ev.ID,
					HTMLLink:   ev.HTMLLink,
					MeetingURI: ev.MeetingURI,
					Slot:       slot,
					Attendee:   attendee,
					Existing:   true,
				}, nil
			}
		}
	} else if errors.Is(err, ErrAuthRequired) {
		return nil, NewBookingError(CodeAuthRequired, "calendar credential unavailable", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	receipt, err := g.Backend.InsertEvent(ctx, EventRequest{
		Slot:        slot,
		Summary:     summary,
		Description: meetingDescription,
		Location:    meetingLocation,
		Attendee:    attendee,
		RequestID:   uuid.New().String(),
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrAuthRequired):
		return nil, NewBookingError(CodeAuthRequired, "calendar credential unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, NewBookingError(CodeTimeout, "calendar did not answer in time", err)
	default:
		return nil, NewBookingError(CodeBackend, "calendar rejected the event", err)
	}

	receipt.Slot = slot
	receipt.Attendee = attendee
	g.Logger.Info("Meeting booked",
		zap.String("event_id", receipt.EventID),
		zap.String("email", attendee),
		zap.Time("slot_start", slot.Start))
	return receipt, nil
}
