package call

import (
	"sync/atomic"
	"time"

	"leadline/models"
)

// AppointmentSource exposes the appointment state to be reported.
type AppointmentSource interface {
	Outcome() models.AppointmentOutcome
}

// Tracker finalizes exactly one CallOutcome per call. The first Finalize
// wins; later or concurrent callers get the winner's outcome and trigger no
// side effects.
type Tracker struct {
	callID    string
	startedAt time.Time
	source    AppointmentSource
	onFinal   func(models.CallOutcome)
	now       func() time.Time

	done    atomic.Bool
	ready   chan struct{}
	outcome models.CallOutcome
}

// NewTracker starts tracking a call whose remote party connected at startedAt.
// onFinal runs once, on the winning Finalize.
func NewTracker(callID string, startedAt time.Time, source AppointmentSource, onFinal func(models.CallOutcome)) *Tracker {
	return &Tracker{
		callID:    callID,
		startedAt: startedAt.UTC(),
		source:    source,
		onFinal:   onFinal,
		now:       time.Now,
		ready:     make(chan struct{}),
	}
}

// Finalize records how the call ended. Non-terminal statuses are recorded
// as failed.
func (t *Tracker) Finalize(status models.CallStatus) models.CallOutcome {
	if !t.done.CompareAndSwap(false, true) {
		<-t.ready
		return t.outcome
	}

	if !status.Terminal() {
		status = models.CallFailed
	}
	ended := t.now().UTC()
	if ended.Before(t.startedAt) {
		ended = t.startedAt
	}
	var appt models.AppointmentOutcome
	if t.source != nil {
		appt = t.source.Outcome()
	}
	t.outcome = models.CallOutcome{
		CallID:      t.callID,
		Status:      status,
		StartedAt:   t.startedAt,
		EndedAt:     &ended,
		Appointment: appt,
	}
	close(t.ready)

	if t.onFinal != nil {
		t.onFinal(t.outcome)
	}
	return t.outcome
}

// Finalized reports whether Finalize has been called.
func (t *Tracker) Finalized() bool {
	return t.done.Load()
}

// Snapshot returns the final outcome once available, otherwise the current
// in-progress view.
func (t *Tracker) Snapshot() models.CallOutcome {
	select {
	case <-t.ready:
		return t.outcome
	default:
	}
	var appt models.AppointmentOutcome
	if t.source != nil {
		appt = t.source.Outcome()
	}
	return models.CallOutcome{
		CallID:      t.callID,
		Status:      models.CallInProgress,
		StartedAt:   t.startedAt,
		Appointment: appt,
	}
}
