package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Provenance tells how a ResolvedMoment was derived from the utterance.
type Provenance string

const (
	ProvenanceExplicitClockTime Provenance = "explicit_clock_time"
	ProvenanceRelativeDayOffset Provenance = "relative_day_offset"
	ProvenanceNamedWeekday      Provenance = "named_weekday"
	ProvenanceISOLiteral        Provenance = "iso_literal"
	ProvenanceVaguePeriod       Provenance = "vague_period"
	ProvenanceFallbackDefault   Provenance = "fallback_default"
)

// ResolvedMoment is a concrete instant plus how it was obtained.
type ResolvedMoment struct {
	At         time.Time
	Provenance Provenance
}

// VaguePeriod is a coarse daypart that needs a follow-up question.
type VaguePeriod string

const (
	PeriodMorning   VaguePeriod = "morning"
	PeriodAfternoon VaguePeriod = "afternoon"
	PeriodEvening   VaguePeriod = "evening"
)

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// String renders the clock time the way it is spoken: "9am", "3:30pm".
func (c ClockTime) String() string {
	suffix := "am"
	h := c.Hour
	if h >= 12 {
		suffix = "pm"
	}
	if h%12 == 0 {
		h = 12
	} else {
		h %= 12
	}
	if c.Minute == 0 {
		return fmt.Sprintf("%d%s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", h, c.Minute, suffix)
}

// periodOrder fixes the lookup order when an utterance names several periods.
var periodOrder = []VaguePeriod{PeriodMorning, PeriodAfternoon, PeriodEvening}

var periodCandidates = map[VaguePeriod][]ClockTime{
	PeriodMorning:   {{9, 0}, {10, 0}, {11, 0}},
	PeriodAfternoon: {{13, 0}, {14, 0}, {15, 0}},
	PeriodEvening:   {{17, 0}, {18, 0}},
}

// Candidates returns the canonical clock times offered for the period.
func (p VaguePeriod) Candidates() []ClockTime {
	out := make([]ClockTime, len(periodCandidates[p]))
	copy(out, periodCandidates[p])
	return out
}

// Resolution is the result of resolving one utterance. Exactly one of
// Moment or Period is set.
type Resolution struct {
	Moment *ResolvedMoment
	Period VaguePeriod
	// Recovered is set when a parsing rule panicked and the fallback was
	// used instead. It wraps ErrResolverPanic.
	Recovered error
}

// IsVague reports whether the utterance only named a daypart.
func (r Resolution) IsVague() bool {
	return r.Moment == nil && r.Period != ""
}

// Err maps the resolution onto the resolver's error taxonomy. Neither error
// is fatal: a vague result asks for a follow-up and a fallback is still usable.
func (r Resolution) Err() error {
	switch {
	case r.Recovered != nil:
		return r.Recovered
	case r.IsVague():
		return ErrVagueInput
	case r.Moment != nil && r.Moment.Provenance == ProvenanceFallbackDefault:
		return ErrParseAmbiguous
	}
	return nil
}

var (
	isoPattern   = regexp.MustCompile(`(?i)\b\d{4}-\d{2}-\d{2}(?:[t ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:z|[+-]\d{2}:?\d{2})?)?`)
	clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2}):?(\d{2})?\s*([ap])\.?m\b`)
)

// weekdays in the fixed order used when several names appear.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// offsetLayouts carry their own zone; localLayouts are read in the resolver's zone.
var (
	offsetLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04-0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
)

// Resolver turns loose human time expressions into instants. It is total:
// every input yields either a moment or a vague period.
type Resolver struct {
	zone        *time.Location
	defaultHour int
}

// NewResolver returns a resolver anchored in zone. defaultHour is the clock
// hour used by the fallback and by date-only literals.
func NewResolver(zone *time.Location, defaultHour int) *Resolver {
	if zone == nil {
		zone = time.FixedZone("PST", -8*3600)
	}
	if defaultHour < 0 || defaultHour > 23 {
		defaultHour = 14
	}
	return &Resolver{zone: zone, defaultHour: defaultHour}
}

// Zone is the canonical civil zone of the resolver.
func (r *Resolver) Zone() *time.Location {
	return r.zone
}

// Resolve interprets utterance relative to ref. Rules are tried in order:
// ISO literal, clock time (weekday, then "tomorrow", then today-or-tomorrow),
// vague period, fallback of tomorrow at the default hour.
func (r *Resolver) Resolve(utterance string, ref time.Time) Resolution {
	return r.guard(ref, func() Resolution { return r.resolve(utterance, ref) })
}

// guard runs fn and turns a panic into the fallback, tagged so callers can
// report it.
func (r *Resolver) guard(ref time.Time, fn func() Resolution) (res Resolution) {
	defer func() {
		if p := recover(); p != nil {
			res = r.fallback(ref)
			res.Recovered = fmt.Errorf("%w: %v", ErrResolverPanic, p)
		}
	}()
	return fn()
}

func (r *Resolver) resolve(utterance string, ref time.Time) Resolution {
	utterance = strings.TrimSpace(utterance)
	lower := strings.ToLower(utterance)

	if m, ok := r.isoLiteral(utterance); ok {
		return Resolution{Moment: m}
	}
	if clock, ok := findClock(lower); ok {
		return Resolution{Moment: r.anchorClock(lower, clock, ref)}
	}
	for _, p := range periodOrder {
		if strings.Contains(lower, string(p)) {
			return Resolution{Period: p}
		}
	}
	return r.fallback(ref)
}

func (r *Resolver) fallback(ref time.Time) Resolution {
	local := ref.In(r.zone)
	at := time.Date(local.Year(), local.Month(), local.Day()+1, r.defaultHour, 0, 0, 0, r.zone)
	return Resolution{Moment: &ResolvedMoment{At: at.UTC(), Provenance: ProvenanceFallbackDefault}}
}

func (r *Resolver) isoLiteral(utterance string) (*ResolvedMoment, bool) {
	loc := isoPattern.FindStringIndex(utterance)
	if loc == nil {
		return nil, false
	}
	lit := strings.ToUpper(utterance[loc[0]:loc[1]])
	lit = strings.Replace(lit, " ", "T", 1)

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, lit); err == nil {
			return &ResolvedMoment{At: t.UTC(), Provenance: ProvenanceISOLiteral}, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, lit, r.zone); err == nil {
			return &ResolvedMoment{At: t.UTC(), Provenance: ProvenanceISOLiteral}, true
		}
	}

	day, err := time.ParseInLocation("2006-01-02", lit, r.zone)
	if err != nil {
		return nil, false
	}
	// A bare date takes a spoken clock time from the rest of the utterance.
	clock := ClockTime{Hour: r.defaultHour}
	rest := strings.ToLower(utterance[:loc[0]] + " " + utterance[loc[1]:])
	if c, ok := findClock(rest); ok {
		clock = c
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour, clock.Minute, 0, 0, r.zone)
	return &ResolvedMoment{At: at.UTC(), Provenance: ProvenanceISOLiteral}, true
}

// findClock returns the first well-formed "H[:MM] am|pm" in s as a 24h time.
func findClock(s string) (ClockTime, bool) {
	for _, m := range clockPattern.FindAllStringSubmatch(s, -1) {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour < 1 || hour > 12 {
			continue
		}
		minute := 0
		if m[2] != "" {
			minute, err = strconv.Atoi(m[2])
			if err != nil || minute > 59 {
				continue
			}
		}
		pm := strings.EqualFold(m[3], "p")
		switch {
		case pm && hour != 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		return ClockTime{Hour: hour, Minute: minute}, true
	}
	return ClockTime{}, false
}

func (r *Resolver) anchorClock(lower string, clock ClockTime, ref time.Time) *ResolvedMoment {
	local := ref.In(r.zone)
	on := func(days int) time.Time {
		return time.Date(local.Year(), local.Month(), local.Day()+days, clock.Hour, clock.Minute, 0, 0, r.zone)
	}

	if wd, ok := findWeekday(lower); ok {
		days := (int(wd) - int(local.Weekday()) + 7) % 7
		if days == 0 && !on(0).After(ref) {
			days = 7
		}
		return &ResolvedMoment{At: on(days).UTC(), Provenance: ProvenanceNamedWeekday}
	}
	if strings.Contains(lower, "tomorrow") {
		return &ResolvedMoment{At: on(1).UTC(), Provenance: ProvenanceRelativeDayOffset}
	}
	at := on(0)
	if !at.After(ref) {
		at = on(1)
	}
	return &ResolvedMoment{At: at.UTC(), Provenance: ProvenanceExplicitClockTime}
}

func findWeekday(lower string) (time.Weekday, bool) {
	for _, wd := range weekdays {
		if strings.Contains(lower, strings.ToLower(wd.String())) {
			return wd, true
		}
	}
	return 0, false
}
