package results

import (
	"time"

	"leadline/models"
	"leadline/services/scheduling"
)

// NewCallResult flattens a finalized outcome into the record sinks receive.
// The job's row id is carried through untouched.
func NewCallResult(job models.Job, outcome models.CallOutcome, transcript string, zone *time.Location) models.CallResult {
	ts := time.Now().UTC()
	if outcome.EndedAt != nil {
		ts = outcome.EndedAt.UTC()
	}
	rec := models.CallResult{
		CallID:              outcome.CallID,
		PhoneNumber:         job.PhoneNumber,
		CustomerName:        job.Name,
		CallStatus:          string(outcome.Status),
		CallDurationSeconds: int(outcome.Duration() / time.Second),
		Transcript:          transcript,
		Timestamp:           ts,
		RowID:               job.RowID,
	}

	appt := outcome.Appointment
	if appt.Scheduled && appt.Slot != nil {
		rec.AppointmentScheduled = true
		when := scheduling.RecordTime(appt.Slot.Start, zone)
		rec.AppointmentTime = &when
		if appt.AttendeeEmail != "" {
			email := appt.AttendeeEmail
			rec.AppointmentEmail = &email
		}
	}
	return rec
}
