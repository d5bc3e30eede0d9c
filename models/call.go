package models

import "time"

// CallStatus is the terminal (or in-progress) state of one outbound call.
type CallStatus string

const (
	CallInProgress  CallStatus = "in_progress"
	CallCompleted   CallStatus = "completed"
	CallVoicemail   CallStatus = "voicemail"
	CallFailed      CallStatus = "failed"
	CallNoAnswer    CallStatus = "no_answer"
	CallTransferred CallStatus = "transferred"
)

// Terminal reports whether s may be used to finalize a call.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallCompleted, CallVoicemail, CallFailed, CallNoAnswer, CallTransferred:
		return true
	}
	return false
}

// AppointmentOutcome records whether a meeting was booked during the call.
type AppointmentOutcome struct {
	Scheduled     bool      `bson:"scheduled" json:"scheduled"`
	Slot          *TimeSlot `bson:"slot,omitempty" json:"slot"`
	AttendeeEmail string    `bson:"attendeeEmail,omitempty" json:"attendee_email,omitempty"`
	MeetingURI    string    `bson:"meetingUri,omitempty" json:"meeting_uri,omitempty"`
}

// CallOutcome is the finalized (or still running) view of one call.
type CallOutcome struct {
	CallID      string             `bson:"callId" json:"call_id"`
	Status      CallStatus         `bson:"status" json:"status"`
	StartedAt   time.Time          `bson:"startedAt" json:"started_at"`
	EndedAt     *time.Time         `bson:"endedAt,omitempty" json:"ended_at,omitempty"`
	Appointment AppointmentOutcome `bson:"appointment" json:"appointment"`
}

// Duration is the wall time between connect and hangup, zero while running.
func (o CallOutcome) Duration() time.Duration {
	if o.EndedAt == nil {
		return 0
	}
	return o.EndedAt.Sub(o.StartedAt)
}

// Speaker tags a transcript line.
type Speaker string

const (
	SpeakerCustomer Speaker = "Customer"
	SpeakerAgent    Speaker = "Agent"
)

// TranscriptEntry is one utterance produced by the conversational channel.
type TranscriptEntry struct {
	Speaker Speaker   `json:"speaker" binding:"required,oneof=Customer Agent"`
	Text    string    `json:"text"`
	IsFinal bool      `json:"is_final"`
	At      time.Time `json:"at,omitempty"`
}
