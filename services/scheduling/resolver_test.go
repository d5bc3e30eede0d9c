package scheduling

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var pst = time.FixedZone("PST", -8*3600)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, pst)
}

func TestResolveClockTimes(t *testing.T) {
	t.Parallel()

	r := NewResolver(pst, 14)
	monday9 := at(2025, time.March, 3, 9, 0)
	tuesday15 := at(2025, time.March, 4, 15, 0)

	tests := []struct {
		name  string
		input string
		ref   time.Time
		want  time.Time
		prov  Provenance
	}{
		{"passed today rolls to tomorrow", "2pm", tuesday15, at(2025, time.March, 5, 14, 0), ProvenanceExplicitClockTime},
		{"later today", "4:30 pm", tuesday15, at(2025, time.March, 4, 16, 30), ProvenanceExplicitClockTime},
		{"compact minutes", "230pm", monday9, at(2025, time.March, 3, 14, 30), ProvenanceExplicitClockTime},
		{"noon", "12pm", monday9, at(2025, time.March, 3, 12, 0), ProvenanceExplicitClockTime},
		{"midnight", "12am", monday9, at(2025, time.March, 4, 0, 0), ProvenanceExplicitClockTime},
		{"dotted suffix", "let's say 3 p.m.", monday9, at(2025, time.March, 3, 15, 0), ProvenanceExplicitClockTime},
		{"tomorrow", "tomorrow at 3pm", monday9, at(2025, time.March, 4, 15, 0), ProvenanceRelativeDayOffset},
		{"weekday ahead", "Tuesday at 10am", monday9, at(2025, time.March, 4, 10, 0), ProvenanceNamedWeekday},
		{"same weekday later today", "Monday at 10am", monday9, at(2025, time.March, 3, 10, 0), ProvenanceNamedWeekday},
		{"same weekday already passed", "Monday at 8am", monday9, at(2025, time.March, 10, 8, 0), ProvenanceNamedWeekday},
		{"same weekday at reference", "monday at 9am", monday9, at(2025, time.March, 10, 9, 0), ProvenanceNamedWeekday},
		{"weekday beats tomorrow", "tomorrow or friday at 3pm", monday9, at(2025, time.March, 7, 15, 0), ProvenanceNamedWeekday},
		{"first weekday in week order", "friday or tuesday at 10am", monday9, at(2025, time.March, 4, 10, 0), ProvenanceNamedWeekday},
		{"case insensitive", "TUESDAY AT 10AM", monday9, at(2025, time.March, 4, 10, 0), ProvenanceNamedWeekday},
		{"clock beats period", "afternoon at 3pm", monday9, at(2025, time.March, 3, 15, 0), ProvenanceExplicitClockTime},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := r.Resolve(tt.input, tt.ref)
			if res.Moment == nil {
				t.Fatalf("Resolve(%q) returned no moment: %+v", tt.input, res)
			}
			if !res.Moment.At.Equal(tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.input, res.Moment.At.In(pst), tt.want)
			}
			if res.Moment.Provenance != tt.prov {
				t.Errorf("Resolve(%q) provenance = %s, want %s", tt.input, res.Moment.Provenance, tt.prov)
			}
			if res.Moment.At.Location() != time.UTC {
				t.Errorf("Resolve(%q) location = %v, want UTC", tt.input, res.Moment.At.Location())
			}
			if err := res.Err(); err != nil {
				t.Errorf("Resolve(%q).Err() = %v, want nil", tt.input, err)
			}
		})
	}
}

func TestResolveISOLiteral(t *testing.T) {
	t.Parallel()

	r := NewResolver(pst, 14)
	ref := at(2025, time.March, 3, 9, 0)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-03-10T15:00:00Z", time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)},
		{"how about 2025-03-10T15:00:00+02:00", time.Date(2025, time.March, 10, 13, 0, 0, 0, time.UTC)},
		{"2025-03-10 15:00", at(2025, time.March, 10, 15, 0)},
		{"2025-03-10t09:30", at(2025, time.March, 10, 9, 30)},
		{"2025-03-10", at(2025, time.March, 10, 14, 0)},
		{"  2025-03-10 at 3pm", at(2025, time.March, 10, 15, 0)},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.input, ref)
		if res.Moment == nil || res.Moment.Provenance != ProvenanceISOLiteral {
			t.Errorf("Resolve(%q) = %+v, want iso literal", tt.input, res)
			continue
		}
		if !res.Moment.At.Equal(tt.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tt.input, res.Moment.At, tt.want.UTC())
		}
	}
}

func TestResolveVaguePeriod(t *testing.T) {
	t.Parallel()

	r := NewResolver(pst, 14)
	ref := at(2025, time.March, 3, 9, 0)

	tests := []struct {
		input string
		want  VaguePeriod
		cands []string
	}{
		{"mornings are good", PeriodMorning, []string{"9am", "10am", "11am"}},
		{"sometime in the Afternoon", PeriodAfternoon, []string{"1pm", "2pm", "3pm"}},
		{"evening", PeriodEvening, []string{"5pm", "6pm"}},
		{"morning or afternoon", PeriodMorning, []string{"9am", "10am", "11am"}},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.input, ref)
		if !res.IsVague() || res.Period != tt.want {
			t.Errorf("Resolve(%q) = %+v, want vague %s", tt.input, res, tt.want)
			continue
		}
		if !errors.Is(res.Err(), ErrVagueInput) {
			t.Errorf("Resolve(%q).Err() = %v, want ErrVagueInput", tt.input, res.Err())
		}
		if got := suggestions(res.Period); !reflect.DeepEqual(got, tt.cands) {
			t.Errorf("suggestions(%s) = %v, want %v", res.Period, got, tt.cands)
		}
	}
}

func TestResolveFallback(t *testing.T) {
	t.Parallel()

	r := NewResolver(pst, 14)
	ref := at(2025, time.March, 3, 9, 0)
	want := at(2025, time.March, 4, 14, 0)

	for _, input := range []string{"", "Tuesday", "whenever works", "13pm", "9:75am", "2025-13-45", "\x00\xff"} {
		res := r.Resolve(input, ref)
		if res.Moment == nil || res.Moment.Provenance != ProvenanceFallbackDefault {
			t.Errorf("Resolve(%q) = %+v, want fallback", input, res)
			continue
		}
		if !res.Moment.At.Equal(want) {
			t.Errorf("Resolve(%q) = %v, want %v", input, res.Moment.At.In(pst), want)
		}
		if !errors.Is(res.Err(), ErrParseAmbiguous) {
			t.Errorf("Resolve(%q).Err() = %v, want ErrParseAmbiguous", input, res.Err())
		}
	}
}

func TestResolveRecoversFromPanic(t *testing.T) {
	t.Parallel()

	r := NewResolver(pst, 14)
	ref := at(2025, time.March, 3, 9, 0)
	res := r.guard(ref, func() Resolution {
		var m map[string]int
		m["boom"]++
		return Resolution{}
	})

	if res.Moment == nil || res.Moment.Provenance != ProvenanceFallbackDefault {
		t.Fatalf("guard = %+v, want fallback", res)
	}
	if !res.Moment.At.Equal(at(2025, time.March, 4, 14, 0)) {
		t.Errorf("fallback at %v", res.Moment.At.In(pst))
	}
	if !errors.Is(res.Err(), ErrResolverPanic) {
		t.Errorf("Err() = %v, want ErrResolverPanic", res.Err())
	}

	if clean := r.Resolve("2pm", ref); clean.Recovered != nil || clean.Err() != nil {
		t.Errorf("Resolve(2pm) = %+v, err %v", clean, clean.Err())
	}
}

func TestResolveUsesReferenceInZone(t *testing.T) {
	t.Parallel()

	r := NewResolver(pst, 14)
	// 2025-03-04 02:00 UTC is still Monday evening in PST.
	ref := time.Date(2025, time.March, 4, 2, 0, 0, 0, time.UTC)
	res := r.Resolve("tomorrow at 10am", ref)
	want := at(2025, time.March, 4, 10, 0)
	if res.Moment == nil || !res.Moment.At.Equal(want) {
		t.Fatalf("Resolve = %+v, want %v", res.Moment, want)
	}
}

func TestClockTimeString(t *testing.T) {
	t.Parallel()

	tests := map[ClockTime]string{
		{9, 0}:   "9am",
		{0, 0}:   "12am",
		{12, 0}:  "12pm",
		{15, 30}: "3:30pm",
		{18, 5}:  "6:05pm",
	}
	for in, want := range tests {
		if got := in.String(); got != want {
			t.Errorf("%+v.String() = %q, want %q", in, got, want)
		}
	}
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.March, 4, 22, 30, 0, 0, time.UTC)
	if got, want := SpokenTime(ts, pst), "Tuesday at 02:30 PM"; got != want {
		t.Errorf("SpokenTime = %q, want %q", got, want)
	}
	if got, want := ConfirmationTime(ts, pst), "02:30 PM on Tuesday, March 04, 2025"; got != want {
		t.Errorf("ConfirmationTime = %q, want %q", got, want)
	}
	if got, want := RecordTime(ts, pst), "Tuesday, March 04, 2025 at 02:30 PM"; got != want {
		t.Errorf("RecordTime = %q, want %q", got, want)
	}
	if got, want := joinChoices([]string{"9am", "10am", "11am"}), "9am, 10am or 11am"; got != want {
		t.Errorf("joinChoices = %q, want %q", got, want)
	}
}
