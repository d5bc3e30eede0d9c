package results

import (
	"testing"
	"time"

	"leadline/models"
)

func TestNewCallResult(t *testing.T) {
	t.Parallel()

	pst := time.FixedZone("PST", -8*3600)
	started := time.Date(2025, time.March, 3, 17, 0, 0, 0, time.UTC)
	ended := started.Add(2*time.Minute + 500*time.Millisecond)
	slot := models.NewTimeSlot(time.Date(2025, time.March, 4, 18, 0, 0, 0, time.UTC), 30*time.Minute)

	job := models.Job{PhoneNumber: "+15551234567", Name: "Ann", RowID: "12"}
	outcome := models.CallOutcome{
		CallID:    "call-1",
		Status:    models.CallCompleted,
		StartedAt: started,
		EndedAt:   &ended,
		Appointment: models.AppointmentOutcome{
			Scheduled:     true,
			Slot:          &slot,
			AttendeeEmail: "ann@example.com",
		},
	}

	rec := NewCallResult(job, outcome, "Agent: hi", pst)
	if rec.CallDurationSeconds != 120 {
		t.Errorf("CallDurationSeconds = %d, want 120", rec.CallDurationSeconds)
	}
	if !rec.Timestamp.Equal(ended) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, ended)
	}
	if rec.RowID != "12" || rec.CustomerName != "Ann" || rec.CallStatus != "completed" {
		t.Errorf("record = %+v", rec)
	}
	if rec.AppointmentTime == nil || *rec.AppointmentTime != "Tuesday, March 04, 2025 at 10:00 AM" {
		t.Errorf("AppointmentTime = %v", rec.AppointmentTime)
	}
	if rec.AppointmentEmail == nil || *rec.AppointmentEmail != "ann@example.com" {
		t.Errorf("AppointmentEmail = %v", rec.AppointmentEmail)
	}
}

func TestNewCallResultWithoutAppointment(t *testing.T) {
	t.Parallel()

	ended := time.Now()
	rec := NewCallResult(models.Job{PhoneNumber: "+15551234567"}, models.CallOutcome{
		CallID:    "call-2",
		Status:    models.CallVoicemail,
		StartedAt: ended.Add(-10 * time.Second),
		EndedAt:   &ended,
	}, "", time.UTC)

	if rec.AppointmentScheduled || rec.AppointmentTime != nil || rec.AppointmentEmail != nil {
		t.Errorf("record = %+v, want no appointment", rec)
	}
}
