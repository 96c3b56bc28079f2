// Package clock holds the wall-clock arithmetic the attendance core runs on.
// Shift boundaries are configured as "HH:MM" strings; all math on them is done
// in whole minutes with overnight wraparound.
package clock

import (
	"fmt"
	"time"
)

// MinutesPerDay is the wraparound modulus for overnight spans.
const MinutesPerDay = 24 * 60

// ToMinutes parses a 24-hour "HH:MM" string into minutes since midnight.
// The format is strict: exactly two digits, a colon, two digits.
func ToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", hhmm)
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if hhmm[i] < '0' || hhmm[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: want HH:MM", hhmm)
		}
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", hhmm)
	}
	return h*60 + m, nil
}

// MinutesBetween returns the minute delta from a to b. A negative raw delta
// means b falls on the next calendar day (overnight shift) and is wrapped
// forward by a full day.
func MinutesBetween(a, b string) (int, error) {
	am, err := ToMinutes(a)
	if err != nil {
		return 0, err
	}
	bm, err := ToMinutes(b)
	if err != nil {
		return 0, err
	}
	d := bm - am
	if d < 0 {
		d += MinutesPerDay
	}
	return d, nil
}

// CombineDateAndTime places the "HH:MM" wall-clock time on ref's calendar
// date, zeroing seconds and nanoseconds, in ref's location.
func CombineDateAndTime(ref time.Time, hhmm string) (time.Time, error) {
	mins, err := ToMinutes(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), mins/60, mins%60, 0, 0, ref.Location()), nil
}

// NextOccurrence returns the next instant at which the wall clock reads hhmm,
// strictly after now. If today's occurrence has already passed (or is exactly
// now), the result is the same clock time tomorrow.
func NextOccurrence(now time.Time, hhmm string) (time.Time, error) {
	t, err := CombineDateAndTime(now, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// DayKey formats t as the YYYY-MM-DD key used for per-day storage buckets.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDayKey parses a YYYY-MM-DD key in the given location.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}

// FormatClock renders an instant as "HH:MM" for display.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
