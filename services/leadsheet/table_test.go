package leadsheet

import (
	"reflect"
	"testing"
)

func TestColumnLetter(t *testing.T) {
	t.Parallel()

	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for idx, want := range tests {
		if got := ColumnLetter(idx); got != want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	table := NewTable([][]interface{}{
		{" Phone_number ", "name", "Status"},
		{"+15551234567", "Ann"},
		{"+15557654321", "Bob", "Completed", "extra"},
	})

	if want := []string{"Phone_number", "name", "Status"}; !reflect.DeepEqual(table.Header, want) {
		t.Errorf("Header = %v, want %v", table.Header, want)
	}
	if len(table.Rows) != 2 || table.Rows[0].Number != 2 || table.Rows[1].Number != 3 {
		t.Fatalf("Rows = %+v", table.Rows)
	}
	if got := len(table.Rows[0].Cells); got != 3 {
		t.Errorf("short row padded to %d cells, want 3", got)
	}
	if got := len(table.Rows[1].Cells); got != 3 {
		t.Errorf("long row kept %d cells, want 3", got)
	}

	if got := table.Cell(table.Rows[0], ColPhoneNumber); got != "+15551234567" {
		t.Errorf("Cell(phone) via alias = %q", got)
	}
	if got := table.Cell(table.Rows[1], ColName); got != "Bob" {
		t.Errorf("Cell(name) case-insensitive = %q", got)
	}
	if got := table.Column(ColTranscript); got != -1 {
		t.Errorf("Column(missing) = %d, want -1", got)
	}
	if _, ok := table.Row(4); ok {
		t.Error("Row(4) found a row that does not exist")
	}
	if r, ok := table.Row(3); !ok || r.Cells[1] != "Bob" {
		t.Errorf("Row(3) = %+v, %v", r, ok)
	}
}

func TestNewTableEmpty(t *testing.T) {
	t.Parallel()

	table := NewTable(nil)
	if len(table.Header) != 0 || len(table.Rows) != 0 {
		t.Errorf("NewTable(nil) = %+v", table)
	}
}
