package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// SecondsPerDay bounds a ClockTime
const SecondsPerDay = 24 * 60 * 60

// MinutesPerDay is the longest shift AddMinutes accepts
const MinutesPerDay = SecondsPerDay / 60

// ClockTime is a wall-clock time of day with second precision, stored as
// seconds since midnight. It maps to a Postgres TIME column.
type ClockTime int

// NewClockTime builds a ClockTime from hour, minute and second parts
func NewClockTime(hour, minute, second int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("invalid clock time %02d:%02d:%02d", hour, minute, second)
	}
	return ClockTime(hour*3600 + minute*60 + second), nil
}

// ParseClockTime parses "HH:MM" or "HH:MM:SS"
func ParseClockTime(s string) (ClockTime, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute(), t.Second())
		}
	}
	return 0, fmt.Errorf("invalid clock time: %q", s)
}

// MustParseClockTime is ParseClockTime for literals; it panics on bad input
func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// AddMinutes returns c shifted by the given minutes. ok is false when the result
// leaves the day.
func (c ClockTime) AddMinutes(minutes int) (next ClockTime, ok bool) {
	if minutes > MinutesPerDay || minutes < -MinutesPerDay {
		return c, false
	}
	next = c + ClockTime(minutes*60)
	return next, next >= 0 && next < SecondsPerDay
}

// IsValid reports whether c lies within a single day
func (c ClockTime) IsValid() bool {
	return c >= 0 && c < SecondsPerDay
}

// String formats c as HH:MM:SS
func (c ClockTime) String() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// On returns the instant c falls on for the given date
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(c) * time.Second)
}

// Value implements driver.Valuer
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner. lib/pq hands TIME columns over as time.Time,
// other drivers as text.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = ClockTime(v.Hour()*3600 + v.Minute()*60 + v.Second())
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	case int64:
		*c = ClockTime(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into ClockTime", src)
}

func (c *ClockTime) scanString(s string) error {
	// Postgres may append fractional seconds
	if len(s) > 8 {
		s = s[:8]
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DateOnly strips the time of day from t, keeping its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats t as YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
