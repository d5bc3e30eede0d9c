// File: models/records.go
package models

import "time"

// CallResult is the flat record handed to result sinks once per call.
type CallResult struct {
	ID                   string    `bson:"id" json:"id"`
	CallID               string    `bson:"callId" json:"call_id"`
	PhoneNumber          string    `bson:"phoneNumber" json:"phone_number"`
	CustomerName         string    `bson:"customerName" json:"customer_name"`
	CallStatus           string    `bson:"callStatus" json:"call_status"`
	CallDurationSeconds  int       `bson:"callDurationSeconds" json:"call_duration_seconds"`
	Transcript           string    `bson:"transcript" json:"transcript"`
	AppointmentScheduled bool      `bson:"appointmentScheduled" json:"appointment_scheduled"`
	AppointmentTime      *string   `bson:"appointmentTime,omitempty" json:"appointment_time"` // civil-time rendering
	AppointmentEmail     *string   `bson:"appointmentEmail,omitempty" json:"appointment_email"`
	Timestamp            time.Time `bson:"timestamp" json:"timestamp"`
	RowID                string    `bson:"rowId" json:"row_id"` // passed through from the job source unchanged
	CreatedAt            time.Time `bson:"createdAt" json:"-"`
}
