package models

// AvailabilityAnswer is returned to the conversational channel for a time check.
// Message is meant to be spoken verbatim.
type AvailabilityAnswer struct {
	Available         bool     `json:"available"`
	Message           string   `json:"message"`
	NextAvailableTime string   `json:"next_available_time,omitempty"`
	SuggestedTimes    []string `json:"suggested_times,omitempty"`
}

// BookingAnswer is returned to the conversational channel for a booking request.
type BookingAnswer struct {
	Message         string `json:"message"`
	Scheduled       bool   `json:"scheduled"`
	AppointmentTime string `json:"appointment_time,omitempty"`
	Email           string `json:"email,omitempty"`
	MeetingURI      string `json:"meeting_uri,omitempty"`
}

// TransferAnswer is returned when the caller asks for a human. Outcome is set
// once the call has been finalized by the transfer or its hangup fallback.
type TransferAnswer struct {
	Message     string       `json:"message"`
	Transferred bool         `json:"transferred"`
	TransferTo  string       `json:"transfer_to,omitempty"`
	Outcome     *CallOutcome `json:"outcome,omitempty"`
}
