package models

import "time"

// TimeSlot is a half-open interval [Start, End) held in UTC.
type TimeSlot struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// NewTimeSlot builds a slot of the given length starting at start.
func NewTimeSlot(start time.Time, d time.Duration) TimeSlot {
	start = start.UTC()
	return TimeSlot{Start: start, End: start.Add(d)}
}

// Valid reports whether the slot has a positive length.
func (s TimeSlot) Valid() bool {
	return s.End.After(s.Start)
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether two half-open slots share any instant.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}
