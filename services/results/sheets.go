package results

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"leadline/models"
	"leadline/services/leadsheet"
)

// ErrRowNotFound means the record could not be matched to a sheet row.
var ErrRowNotFound = errors.New("results: no sheet row for call")

var sheetStatus = map[string]string{
	string(models.CallCompleted):   "Completed",
	string(models.CallVoicemail):   "Voicemail",
	string(models.CallFailed):      "Failed",
	string(models.CallNoAnswer):    "No Answer",
	string(models.CallTransferred): "Transferred",
}

// SheetStatus maps a call status to the label written in the lead sheet.
func SheetStatus(status string) string {
	if label, ok := sheetStatus[strings.ToLower(status)]; ok {
		return label
	}
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + strings.ToLower(status[1:])
}

// SheetsSink writes the outcome back onto the lead's row.
type SheetsSink struct {
	Client *leadsheet.Client
	Logger *zap.Logger
}

func NewSheetsSink(client *leadsheet.Client, logger *zap.Logger) *SheetsSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetsSink{Client: client, Logger: logger}
}

func (s *SheetsSink) Deliver(ctx context.Context, rec models.CallResult) error {
	table, err := s.Client.Read(ctx)
	if err != nil {
		return err
	}
	row, ok := LocateRow(table, rec)
	if !ok {
		return fmt.Errorf("%w: row_id=%q phone=%q", ErrRowNotFound, rec.RowID, rec.PhoneNumber)
	}
	written, err := s.Client.UpdateRow(ctx, table, row, RowValues(rec))
	if err != nil {
		return err
	}
	s.Logger.Info("Updated lead sheet row", zap.Int("row", row), zap.Strings("columns", written))
	return nil
}

// LocateRow finds the sheet row for rec: by row id when it names an existing
// row, otherwise by the first row with the same phone number.
func LocateRow(t *leadsheet.Table, rec models.CallResult) (int, bool) {
	if n, err := strconv.Atoi(strings.TrimSpace(rec.RowID)); err == nil {
		if _, ok := t.Row(n); ok {
			return n, true
		}
	}
	if rec.PhoneNumber == "" || t.Column(leadsheet.ColPhoneNumber) < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if t.Cell(r, leadsheet.ColPhoneNumber) == rec.PhoneNumber {
			return r.Number, true
		}
	}
	return 0, false
}

// RowValues lists the column values to write for rec.
func RowValues(rec models.CallResult) map[string]string {
	values := map[string]string{
		leadsheet.ColStatus:     SheetStatus(rec.CallStatus),
		leadsheet.ColLastCalled: rec.Timestamp.Format(time.RFC3339),
	}
	if rec.Transcript != "" {
		values[leadsheet.ColTranscript] = rec.Transcript
	}
	if rec.AppointmentScheduled {
		values[leadsheet.ColAppointmentScheduled] = "Yes"
		if rec.AppointmentTime != nil {
			values[leadsheet.ColAppointmentSlot] = *rec.AppointmentTime
		}
		if rec.AppointmentEmail != nil {
			values[leadsheet.ColAppointmentEmail] = *rec.AppointmentEmail
		}
	}
	if rec.CallDurationSeconds > 0 {
		values[leadsheet.ColCallDuration] = fmt.Sprintf("%d seconds", rec.CallDurationSeconds)
	}
	return values
}
