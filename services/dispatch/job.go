package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"leadline/models"
	"leadline/utils"
)

var validate = validator.New()

// NewJob builds a validated job from raw lead fields.
func NewJob(phone, name, appointmentTime, rowID string) (models.Job, error) {
	job := models.Job{
		PhoneNumber:     utils.NormalizePhone(phone),
		Name:            strings.TrimSpace(name),
		AppointmentTime: strings.TrimSpace(appointmentTime),
		RowID:           strings.TrimSpace(rowID),
	}
	return job, ValidateJob(job)
}

// ValidateJob checks the job's required fields.
func ValidateJob(job models.Job) error {
	if err := validate.Struct(job); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	return nil
}

// ParseJob decodes the metadata blob handed to a call at start. The row id
// may arrive as a JSON string or number and is kept as text.
func ParseJob(raw []byte) (models.Job, error) {
	var wire struct {
		PhoneNumber     string          `json:"phone_number"`
		Name            string          `json:"name"`
		AppointmentTime string          `json:"appointment_time"`
		RowID           json.RawMessage `json:"row_id"`
		TransferTo      string          `json:"transfer_to"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&wire); err != nil {
		return models.Job{}, fmt.Errorf("decode job metadata: %w", err)
	}

	rowID, err := rawText(wire.RowID)
	if err != nil {
		return models.Job{}, fmt.Errorf("decode row_id: %w", err)
	}
	job, err := NewJob(wire.PhoneNumber, wire.Name, wire.AppointmentTime, rowID)
	if err != nil {
		return job, err
	}
	return WithTransfer(job, wire.TransferTo)
}

// WithTransfer sets the optional transfer number and revalidates the job.
func WithTransfer(job models.Job, transferTo string) (models.Job, error) {
	job.TransferTo = utils.NormalizePhone(transferTo)
	return job, ValidateJob(job)
}

func rawText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Metadata encodes the job as the blob passed to the voice agent.
func Metadata(job models.Job) (string, error) {
	b, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
