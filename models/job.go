package models

// Job is one outbound call request produced by the job source.
type Job struct {
	PhoneNumber     string `json:"phone_number" validate:"required,e164"`
	Name            string `json:"name"`
	AppointmentTime string `json:"appointment_time"`
	RowID           string `json:"row_id"`
	// TransferTo is the number a caller asking for a human is handed to.
	TransferTo      string `json:"transfer_to,omitempty" validate:"omitempty,e164"`
}
