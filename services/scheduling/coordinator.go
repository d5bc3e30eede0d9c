package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"leadline/models"
	"leadline/services/calendar"
)

// State of the negotiation for one call.
type State string

const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateNegotiating State = "negotiating"
	StateBooked      State = "booked"
	StateAbandoned   State = "abandoned"
)

const (
	msgSlotFree     = "That time works perfectly."
	msgSlotBusy     = "Ah okay, sorry about that. Looks like the closest open time is %s. Would that work?"
	msgPickPeriod   = "Sure, the %s works. Would %s be best for you?"
	msgNeedEmail    = "I need your email address to send the calendar invite. Could you provide it?"
	msgNeedExact    = "Happy to set that up. Which exact time works best: %s?"
	msgBooked       = "Perfect! I've scheduled your meeting for %s and sent a calendar invite to %s. You'll receive the confirmation email shortly. See you then!"
	msgBookingNoted = "I've noted your meeting request for %s with %s. Our system is processing it, and you'll receive a confirmation email shortly."
	msgCallClosed   = "I've noted that you'd like to meet. Someone from our team will follow up by email to confirm a time."
)

// CoordinatorConfig holds the per-call booking rules.
type CoordinatorConfig struct {
	Duration time.Duration
	Summary  string
	Now      func() time.Time
}

// Coordinator negotiates a meeting time for a single call and owns its
// AppointmentOutcome. Calendar calls are made without holding the lock.
type Coordinator struct {
	resolver *Resolver
	gateway  calendar.Gateway
	logger   *zap.Logger
	duration time.Duration
	summary  string
	now      func() time.Time

	mu      sync.Mutex
	state   State
	closed  bool
	outcome models.AppointmentOutcome
}

func NewCoordinator(resolver *Resolver, gateway calendar.Gateway, cfg CoordinatorConfig, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{
		resolver: resolver,
		gateway:  gateway,
		logger:   logger,
		duration: cfg.Duration,
		summary:  cfg.Summary,
		now:      cfg.Now,
		state:    StateIdle,
	}
}

// CheckTime answers whether the time named in utterance is open.
func (c *Coordinator) CheckTime(ctx context.Context, utterance string) models.AvailabilityAnswer {
	res := c.resolve(utterance)
	if res.IsVague() {
		c.transition(StateNegotiating)
		opts := suggestions(res.Period)
		return models.AvailabilityAnswer{
			Available:      true,
			Message:        fmt.Sprintf(msgPickPeriod, res.Period, joinChoices(opts)),
			SuggestedTimes: opts,
		}
	}

	c.transition(StateChecking)
	slot := models.NewTimeSlot(res.Moment.At, c.duration)
	if c.gateway.IsFree(ctx, slot) {
		return models.AvailabilityAnswer{Available: true, Message: msgSlotFree}
	}

	next := c.gateway.FindNextFree(ctx, slot.Start, c.duration)
	c.transition(StateNegotiating)
	spoken := SpokenTime(next, c.resolver.Zone())
	return models.AvailabilityAnswer{
		Available:         false,
		Message:           fmt.Sprintf(msgSlotBusy, spoken),
		NextAvailableTime: spoken,
	}
}

// Book books the meeting named by timeUtterance and invites the normalized
// email. A failed booking never ends the call; it yields a "noted" message.
// Booking again overwrites the outcome, since the human may reschedule.
func (c *Coordinator) Book(ctx context.Context, emailUtterance, timeUtterance string) models.BookingAnswer {
	if strings.TrimSpace(emailUtterance) == "" {
		return models.BookingAnswer{Message: msgNeedEmail}
	}
	email := NormalizeEmail(emailUtterance)

	if c.isClosed() {
		c.logger.Warn("Booking refused, negotiation closed", zap.String("email", email), zap.String("time", timeUtterance))
		return models.BookingAnswer{Message: msgCallClosed, Email: email}
	}

	res := c.resolve(timeUtterance)
	if res.IsVague() {
		c.transition(StateNegotiating)
		return models.BookingAnswer{
			Message: fmt.Sprintf(msgNeedExact, joinChoices(suggestions(res.Period))),
			Email:   email,
		}
	}

	slot := models.NewTimeSlot(res.Moment.At, c.duration)
	when := ConfirmationTime(slot.Start, c.resolver.Zone())

	// The invite email cannot be recalled, so the booking runs to completion
	// even if the call is torn down meanwhile.
	receipt, err := c.gateway.Book(context.WithoutCancel(ctx), slot, email, c.summary)
	if err != nil {
		c.logger.Error("Booking failed", zap.String("email", email), zap.Time("slot_start", slot.Start), zap.Error(err))
		c.mu.Lock()
		if c.state != StateBooked && c.state != StateAbandoned {
			c.state = StateNegotiating
		}
		c.mu.Unlock()
		return models.BookingAnswer{
			Message:         fmt.Sprintf(msgBookingNoted, when, email),
			AppointmentTime: when,
			Email:           email,
		}
	}

	c.mu.Lock()
	if c.closed {
		// Closed while the request was in flight; the reported outcome is final.
		c.mu.Unlock()
		c.logger.Error("Appointment booked after negotiation closed",
			zap.String("email", email), zap.String("event_id", receipt.EventID), zap.Time("slot_start", slot.Start))
		return models.BookingAnswer{Message: msgCallClosed, Email: email}
	}
	if c.outcome.Scheduled {
		c.logger.Warn("Appointment rescheduled within call",
			zap.Time("previous_start", c.outcome.Slot.Start),
			zap.Time("slot_start", slot.Start),
			zap.String("email", email))
	}
	booked := slot
	c.outcome = models.AppointmentOutcome{
		Scheduled:     true,
		Slot:          &booked,
		AttendeeEmail: email,
		MeetingURI:    receipt.MeetingURI,
	}
	c.state = StateBooked
	c.mu.Unlock()

	c.logger.Info("Appointment scheduled", zap.String("email", email), zap.String("time", when))
	return models.BookingAnswer{
		Message:         fmt.Sprintf(msgBooked, when, email),
		Scheduled:       true,
		AppointmentTime: when,
		Email:           email,
		MeetingURI:      receipt.MeetingURI,
	}
}

// resolve runs the resolver and logs anything short of a clean match.
func (c *Coordinator) resolve(utterance string) Resolution {
	res := c.resolver.Resolve(utterance, c.now())
	switch err := res.Err(); {
	case errors.Is(err, ErrResolverPanic):
		c.logger.Warn("Time resolver failed, using default", zap.String("utterance", utterance), zap.Error(err))
	case errors.Is(err, ErrParseAmbiguous):
		c.logger.Debug("Time not recognized, using default", zap.String("utterance", utterance))
	}
	return res
}

// Abandon closes the negotiation. Later bookings are refused, and the state
// becomes abandoned unless a meeting is already booked.
func (c *Coordinator) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.state != StateBooked {
		c.state = StateAbandoned
	}
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Outcome returns a copy of the appointment outcome.
func (c *Coordinator) Outcome() models.AppointmentOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.outcome
	if out.Slot != nil {
		slot := *out.Slot
		out.Slot = &slot
	}
	return out
}

// Zone is the civil zone used for spoken times.
func (c *Coordinator) Zone() *time.Location {
	return c.resolver.Zone()
}

// transition moves between negotiation states; booked and abandoned stick.
func (c *Coordinator) transition(to State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateBooked || c.state == StateAbandoned {
		return
	}
	c.state = to
}

func suggestions(p VaguePeriod) []string {
	cands := p.Candidates()
	out := make([]string, len(cands))
	for i, ct := range cands {
		out[i] = ct.String()
	}
	return out
}
