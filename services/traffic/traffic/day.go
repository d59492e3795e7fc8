package traffic

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire representation of a calendar day
const DayLayout = "2006-01-02"

const secondsPerDay = 86400

// Day is a UTC calendar day, counted as the number of days elapsed since 1970-01-01.
// Stepping is integer arithmetic so it never sees daylight saving or local time.
type Day int64

// DayOf returns the UTC calendar day containing the provided instant
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return Day(midnight.Unix() / secondsPerDay)
}

// ParseDay parses a YYYY-MM-DD string. Malformed input yields an error wrapping ErrInvalidRange.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidRange, s)
	}

	return DayOf(t), nil
}

// Next returns the following calendar day
func (d Day) Next() Day {
	return d + 1
}

// Time returns midnight UTC of the day
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// String returns the YYYY-MM-DD form
func (d Day) String() string {
	return d.Time().Format(DayLayout)
}

// DaysInclusive returns how many calendar days the [start, end] range holds, or 0 for a reversed range
func DaysInclusive(start Day, end Day) int {
	if end < start {
		return 0
	}

	return int(end-start) + 1
}

// DayKeyFromTimestamp reduces an upstream ISO-8601 timestamp (2024-01-05T00:00:00Z) to its calendar day key.
// Unparseable timestamps keep whatever precedes the 'T' separator.
func DayKeyFromTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err == nil {
		return DayOf(t).String()
	}

	day, _, _ := strings.Cut(ts, "T")
	return day
}
