package format

import (
	"fmt"
	"strings"
	"time"
)

// Precision records how much of a date was written.
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
)

// LongDateLayout is the display layout for full dates.
const LongDateLayout = "January 2, 2006"

// Date is a parsed FHIR date or dateTime.
type Date struct {
	Time      time.Time
	Precision Precision
}

// String formats the date at its own precision.
func (d Date) String() string {
	switch d.Precision {
	case PrecisionYear:
		return d.Time.Format("2006")
	case PrecisionMonth:
		return d.Time.Format("January 2006")
	default:
		return d.Time.Format(LongDateLayout)
	}
}

var dateLayouts = []struct {
	layout    string
	precision Precision
}{
	{"2006-01-02", PrecisionDay},
	{time.RFC3339Nano, PrecisionDay},
	{"2006-01-02T15:04:05", PrecisionDay},
	{"2006-01-02T15:04", PrecisionDay},
	{"2006-01", PrecisionMonth},
	{"2006", PrecisionYear},
}

// ParseDate parses FHIR date, partial date, and dateTime spellings.
// Date-only values are calendar dates in loc; timestamps carrying an offset
// are converted into loc.
func ParseDate(value string, loc *time.Location) (Date, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Date{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, candidate := range dateLayouts {
		parsed, err := time.ParseInLocation(candidate.layout, trimmed, loc)
		if err != nil {
			continue
		}
		return Date{Time: parsed.In(loc), Precision: candidate.precision}, true
	}
	return Date{}, false
}

// Age returns whole years between birth and today, counting a year only once
// today's month and day reach the birth month and day.
func Age(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}

// IsBirthLabel reports whether a date field's label asks for an age suffix.
func IsBirthLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "birth")
}

// Date formats raw as a long-form date. Labels mentioning "birth" get an age
// suffix. Values that do not parse are shown as written.
func (f *Formatter) Date(label string, raw any) Display {
	if isFalsy(raw) {
		return f.Value(raw)
	}
	text, ok := raw.(string)
	if !ok {
		return f.Value(raw)
	}
	date, ok := ParseDate(text, f.location)
	if !ok {
		return Display{Text: text}
	}

	out := date.String()
	if IsBirthLabel(label) {
		out += fmt.Sprintf(" (%d years)", Age(date.Time, f.now().In(f.location)))
	}
	return Display{Text: out}
}
