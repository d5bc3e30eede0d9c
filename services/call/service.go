package call

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadline/models"
	"leadline/services/calendar"
	"leadline/services/results"
	"leadline/services/scheduling"
)

// DefaultRetention is how long a finished call stays queryable.
const DefaultRetention = 15 * time.Minute

// DefaultCallService keeps live sessions in memory. Calls share nothing but
// the calendar gateway, result sink and voice gateway clients.
type DefaultCallService struct {
	Resolver    *scheduling.Resolver
	Gateway     calendar.Gateway
	Sink        results.Sink
	Closer      RoomCloser
	Transferrer Transferrer
	TransferTo  string
	Logger      *zap.Logger
	Duration    time.Duration
	Summary     string
	HangupDelay time.Duration
	Retention   time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Open starts tracking a call whose remote party has just connected.
func (s *DefaultCallService) Open(_ context.Context, room string, job models.Job) (*Session, error) {
	id := uuid.New().String()
	coord := scheduling.NewCoordinator(s.Resolver, s.Gateway, scheduling.CoordinatorConfig{
		Duration: s.Duration,
		Summary:  meetingSummary(s.Summary, job.Name),
	}, s.logger())

	sess := NewSession(id, room, job, coord, SessionOptions{
		Closer:      s.Closer,
		Transferrer: s.Transferrer,
		TransferTo:  s.TransferTo,
		Sink:        s.Sink,
		Logger:      s.logger(),
		HangupDelay: s.HangupDelay,
		OnFinish:    s.scheduleRemoval,
	})

	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger().Info("Call connected",
		zap.String("call_id", id),
		zap.String("room", room),
		zap.String("phone_number", job.PhoneNumber),
		zap.String("row_id", job.RowID))
	return sess, nil
}

func (s *DefaultCallService) Get(callID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[callID]
	if !ok {
		return nil, ErrCallNotFound
	}
	return sess, nil
}

func (s *DefaultCallService) CheckAvailability(ctx context.Context, callID, dateTime string) (models.AvailabilityAnswer, error) {
	sess, err := s.Get(callID)
	if err != nil {
		return models.AvailabilityAnswer{}, err
	}
	return sess.CheckAvailability(ctx, dateTime), nil
}

func (s *DefaultCallService) Schedule(ctx context.Context, callID, email, dateTime string) (models.BookingAnswer, error) {
	sess, err := s.Get(callID)
	if err != nil {
		return models.BookingAnswer{}, err
	}
	return sess.Schedule(ctx, email, dateTime), nil
}

func (s *DefaultCallService) AddTranscript(callID string, entry models.TranscriptEntry) error {
	sess, err := s.Get(callID)
	if err != nil {
		return err
	}
	sess.AddTranscript(entry)
	return nil
}

func (s *DefaultCallService) Transfer(ctx context.Context, callID string) (models.TransferAnswer, error) {
	sess, err := s.Get(callID)
	if err != nil {
		return models.TransferAnswer{}, err
	}
	return sess.Transfer(ctx), nil
}

func (s *DefaultCallService) End(ctx context.Context, callID string, status models.CallStatus, hangup bool) (models.CallOutcome, error) {
	sess, err := s.Get(callID)
	if err != nil {
		return models.CallOutcome{}, err
	}
	return sess.End(ctx, status, hangup), nil
}

func (s *DefaultCallService) Outcome(callID string) (models.CallOutcome, error) {
	sess, err := s.Get(callID)
	if err != nil {
		return models.CallOutcome{}, err
	}
	return sess.Outcome(), nil
}

// Active returns the number of sessions not yet finalized.
func (s *DefaultCallService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sess := range s.sessions {
		if !sess.Finalized() {
			n++
		}
	}
	return n
}

func (s *DefaultCallService) scheduleRemoval(sess *Session) {
	retain := s.Retention
	if retain <= 0 {
		retain = DefaultRetention
	}
	time.AfterFunc(retain, func() {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		s.mu.Unlock()
	})
}

func (s *DefaultCallService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func meetingSummary(base, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return base
	}
	return base + " with " + name
}
