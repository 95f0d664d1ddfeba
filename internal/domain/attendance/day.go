package attendance

import (
	"fmt"
	"time"
)

const dayFormat = "2006-01-02"

// Day is a calendar date in the site's time zone. It is the second half of
// the (employee, day) attendance key.
type Day struct {
	year  int
	month time.Month
	day   int
}

// DayOf extracts the calendar date from a timestamp, in the timestamp's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// ParseDay parses a date in 2006-01-02 form.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// String formats the day as 2006-01-02.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool { return d.year == 0 }

// Time returns midnight of the day in the given location.
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// Before reports whether d is an earlier calendar date than other.
func (d Day) Before(other Day) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

// TimeOfDay is a wall-clock cutoff such as the late-arrival threshold.
type TimeOfDay struct {
	hour   int
	minute int
	second int
}

// NewTimeOfDay validates clock components.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d:%02d", hour, minute, second)
	}
	return TimeOfDay{hour: hour, minute: minute, second: second}, nil
}

// ParseTimeOfDay parses HH:MM:SS or HH:MM.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return TimeOfDay{}, fmt.Errorf("parse time of day %q: expected HH:MM[:SS]", s)
		}
	}
	return NewTimeOfDay(h, m, sec)
}

// String formats the cutoff as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
}

// SecondOfDay returns seconds elapsed since midnight.
func (t TimeOfDay) SecondOfDay() int {
	return t.hour*3600 + t.minute*60 + t.second
}

// On anchors the cutoff to a concrete date in the timestamp's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, t.hour, t.minute, t.second, 0, ref.Location())
}
