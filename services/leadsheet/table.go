package leadsheet

import (
	"fmt"
	"strings"
)

// Column headers used by the lead sheet.
const (
	ColStatus               = "Status"
	ColPhoneNumber          = "Phone Number"
	ColName                 = "Name"
	ColAppointmentTime      = "Appointment Time"
	ColTranscript           = "Transcript"
	ColAppointmentScheduled = "Appointment Scheduled"
	ColAppointmentSlot      = "Appointment Time Scheduled"
	ColAppointmentEmail     = "Appointment Email"
	ColCallDuration         = "Call Duration"
	ColLastCalled           = "Last Called"
	ColTransferTo           = "Transfer To"
)

// Header spellings seen in the wild for the same column.
var aliases = map[string][]string{
	ColPhoneNumber:     {"Phone_number", "PhoneNumber"},
	ColAppointmentTime: {"Appointment_time", "AppointmentTime"},
	ColTransferTo:      {"Transfer_to", "TransferTo"},
}

// Row is one data row with its 1-based sheet row number.
type Row struct {
	Number int
	Cells  []string
}

// Table is the header plus data rows of a sheet.
type Table struct {
	Header []string
	Rows   []Row
}

// NewTable builds a table from raw sheet values; the first row is the header.
// Short rows are padded to the header width.
func NewTable(values [][]interface{}) *Table {
	t := &Table{}
	if len(values) == 0 {
		return t
	}
	for _, v := range values[0] {
		t.Header = append(t.Header, strings.TrimSpace(fmt.Sprint(v)))
	}
	for i, raw := range values[1:] {
		cells := make([]string, len(t.Header))
		for j, v := range raw {
			if j < len(cells) {
				cells[j] = fmt.Sprint(v)
			}
		}
		t.Rows = append(t.Rows, Row{Number: i + 2, Cells: cells})
	}
	return t
}

// Column returns the index of name (exact, then case-insensitive, then known
// aliases), or -1.
func (t *Table) Column(name string) int {
	for _, candidate := range append([]string{name}, aliases[name]...) {
		for i, h := range t.Header {
			if h == candidate {
				return i
			}
		}
		for i, h := range t.Header {
			if strings.EqualFold(h, candidate) {
				return i
			}
		}
	}
	return -1
}

// Cell returns the trimmed value of column name in row, or "".
func (t *Table) Cell(row Row, name string) string {
	idx := t.Column(name)
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[idx])
}

// Row returns the data row with the given sheet row number.
func (t *Table) Row(number int) (Row, bool) {
	for _, r := range t.Rows {
		if r.Number == number {
			return r, true
		}
	}
	return Row{}, false
}

// ColumnLetter converts a 0-based column index to A1 notation (0 -> A, 26 -> AA).
func ColumnLetter(idx int) string {
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
