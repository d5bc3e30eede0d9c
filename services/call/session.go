package call

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"leadline/models"
	"leadline/services/results"
	"leadline/services/scheduling"
)

// RoomCloser ends the live voice session of a call.
type RoomCloser interface {
	DeleteRoom(ctx context.Context, room string) error
}

// Transferrer hands a connected caller over to another number.
type Transferrer interface {
	TransferParticipant(ctx context.Context, room, identity, to string) error
}

const (
	hangupTimeout   = 10 * time.Second
	transferTimeout = 15 * time.Second
)

const (
	msgNoTransfer     = "cannot transfer call"
	msgTransferred    = "I'm transferring you now. Please hold."
	msgTransferFailed = "There was an error transferring the call."
	msgCallEnded      = "This call has already ended."
)

// Session ties together the negotiation, transcript and outcome of one
// connected call.
type Session struct {
	ID   string
	Room string
	Job  models.Job

	coordinator *scheduling.Coordinator
	tracker     *Tracker
	transcript  Transcript
	closer      RoomCloser
	transferrer Transferrer
	transferTo  string
	sink        results.Sink
	logger      *zap.Logger
	hangupDelay time.Duration

	// Bookings hold the read side; finalize takes the write side so an
	// in-flight booking lands in the reported outcome.
	booking sync.RWMutex

	armed    atomic.Bool
	timerMu  sync.Mutex
	timer    *time.Timer
	onFinish func(*Session)
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	Closer      RoomCloser
	Transferrer Transferrer
	// TransferTo is used when the job carries no transfer number.
	TransferTo  string
	Sink        results.Sink
	Logger      *zap.Logger
	HangupDelay time.Duration
	StartedAt   time.Time
	// OnFinish runs after the outcome has been reported.
	OnFinish func(*Session)
}

func NewSession(id, room string, job models.Job, coord *scheduling.Coordinator, opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}
	s := &Session{
		ID:          id,
		Room:        room,
		Job:         job,
		coordinator: coord,
		closer:      opts.Closer,
		transferrer: opts.Transferrer,
		transferTo:  opts.TransferTo,
		sink:        opts.Sink,
		logger:      opts.Logger.With(zap.String("call_id", id), zap.String("room", room)),
		hangupDelay: opts.HangupDelay,
		onFinish:    opts.OnFinish,
	}
	s.tracker = NewTracker(id, opts.StartedAt, coord, s.report)
	return s
}

// CheckAvailability answers a time check from the conversational channel.
func (s *Session) CheckAvailability(ctx context.Context, dateTime string) models.AvailabilityAnswer {
	s.logger.Info("Checking availability", zap.String("date_time", dateTime))
	return s.coordinator.CheckTime(ctx, dateTime)
}

// Schedule books a meeting. After the first successful booking the call is
// hung up automatically once the confirmation has been spoken.
func (s *Session) Schedule(ctx context.Context, email, dateTime string) models.BookingAnswer {
	s.booking.RLock()
	defer s.booking.RUnlock()

	if s.tracker.Finalized() {
		s.logger.Warn("Booking requested after call ended", zap.String("date_time", dateTime))
		return s.coordinator.Book(ctx, email, dateTime)
	}
	s.logger.Info("Scheduling meeting", zap.String("date_time", dateTime))
	answer := s.coordinator.Book(ctx, email, dateTime)
	if answer.Scheduled {
		s.armHangup()
	}
	return answer
}

// Transfer hands the caller to a human at the job's transfer number and
// finalizes the call as transferred. If the transfer fails the call is hung
// up instead. Without a transfer number the call simply continues.
func (s *Session) Transfer(ctx context.Context) models.TransferAnswer {
	if s.tracker.Finalized() {
		out := s.Outcome()
		return models.TransferAnswer{Message: msgCallEnded, Outcome: &out}
	}
	to := s.Job.TransferTo
	if to == "" {
		to = s.transferTo
	}
	if to == "" || s.transferrer == nil {
		s.logger.Info("Transfer requested without a transfer number")
		return models.TransferAnswer{Message: msgNoTransfer}
	}

	s.stopTimer()
	s.logger.Info("Transferring call", zap.String("transfer_to", to))
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), transferTimeout)
	defer cancel()
	if err := s.transferrer.TransferParticipant(tctx, s.Room, s.Job.PhoneNumber, to); err != nil {
		s.logger.Error("Transfer failed, hanging up", zap.String("transfer_to", to), zap.Error(err))
		out := s.End(ctx, models.CallCompleted, true)
		return models.TransferAnswer{Message: msgTransferFailed, TransferTo: to, Outcome: &out}
	}

	out := s.Finalize(models.CallTransferred)
	return models.TransferAnswer{Message: msgTransferred, Transferred: true, TransferTo: to, Outcome: &out}
}

// AddTranscript appends one utterance.
func (s *Session) AddTranscript(e models.TranscriptEntry) {
	s.transcript.Add(e)
}

// Transcript renders the final utterances so far.
func (s *Session) Transcript() string {
	return s.transcript.Render()
}

// Finalize ends the call with status; see Tracker.Finalize.
func (s *Session) Finalize(status models.CallStatus) models.CallOutcome {
	s.booking.Lock()
	defer s.booking.Unlock()

	s.stopTimer()
	s.coordinator.Abandon()
	return s.tracker.Finalize(status)
}

// End finalizes the call and, when hangup is set, closes the voice room.
func (s *Session) End(ctx context.Context, status models.CallStatus, hangup bool) models.CallOutcome {
	out := s.Finalize(status)
	if hangup {
		s.closeRoom(ctx)
	}
	return out
}

// Outcome returns the current view of the call.
func (s *Session) Outcome() models.CallOutcome {
	return s.tracker.Snapshot()
}

func (s *Session) Finalized() bool {
	return s.tracker.Finalized()
}

func (s *Session) armHangup() {
	if s.hangupDelay <= 0 || !s.armed.CompareAndSwap(false, true) {
		return
	}
	s.logger.Info("Auto hangup armed", zap.Duration("delay", s.hangupDelay))
	s.timerMu.Lock()
	s.timer = time.AfterFunc(s.hangupDelay, func() {
		s.End(context.Background(), models.CallCompleted, true)
	})
	s.timerMu.Unlock()
}

func (s *Session) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Session) closeRoom(ctx context.Context) {
	if s.closer == nil || s.Room == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hangupTimeout)
	defer cancel()
	if err := s.closer.DeleteRoom(ctx, s.Room); err != nil {
		s.logger.Warn("Failed to close room", zap.Error(err))
	}
}

// report runs once, from the winning Finalize.
func (s *Session) report(out models.CallOutcome) {
	s.logger.Info("Call finalized",
		zap.String("status", string(out.Status)),
		zap.Duration("duration", out.Duration()),
		zap.Bool("appointment_scheduled", out.Appointment.Scheduled))

	rec := results.NewCallResult(s.Job, out, s.transcript.Render(), s.coordinator.Zone())
	results.Report(s.sink, rec, s.logger)

	if s.onFinish != nil {
		s.onFinish(s)
	}
}
