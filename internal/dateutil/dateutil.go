package dateutil

import (
	"fmt"
	"time"
)

// ISOFormat is the canonical day-key layout used for storage keys and
// remote document ids. It must stay locale-independent so keys match
// across devices.
const ISOFormat = "2006-01-02"

// Normalize strips the time-of-day from a timestamp, returning midnight
// of the same calendar day in UTC. The result is usable as an equality
// and ordering key for day entries.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISO renders a day as its yyyy-MM-dd key.
func ISO(t time.Time) string {
	return Normalize(t).Format(ISOFormat)
}

// ParseISO parses a yyyy-MM-dd day key back into a normalized day.
func ParseISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISOFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// AddDays returns the normalized day n days after (or before, for
// negative n) the given day.
func AddDays(day time.Time, n int) time.Time {
	return Normalize(day).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}
