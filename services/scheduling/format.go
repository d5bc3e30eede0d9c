package scheduling

import (
	"strings"
	"time"
)

// Layouts for human-facing times. All of them are rendered in the fixed
// civil zone, never the host zone.
const (
	spokenLayout       = "Monday at 03:04 PM"
	confirmationLayout = "03:04 PM on Monday, January 02, 2006"
	recordLayout       = "Monday, January 02, 2006 at 03:04 PM"
)

// SpokenTime renders t as "Tuesday at 02:30 PM".
func SpokenTime(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(spokenLayout)
}

// ConfirmationTime renders t as "02:30 PM on Tuesday, March 04, 2025".
func ConfirmationTime(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(confirmationLayout)
}

// RecordTime renders t as "Tuesday, March 04, 2025 at 02:30 PM". Used for
// the result record.
func RecordTime(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(recordLayout)
}

// joinChoices joins options as "a, b or c".
func joinChoices(opts []string) string {
	switch len(opts) {
	case 0:
		return ""
	case 1:
		return opts[0]
	}
	return strings.Join(opts[:len(opts)-1], ", ") + " or " + opts[len(opts)-1]
}
