package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"deskhub/shared/failure"
)

const (
	// SlotMinutes is the booking granularity.
	SlotMinutes = 30

	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// Clock is a time of day counted in minutes since midnight.
type Clock int

// NewClock builds a Clock from hour and minute values.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, failure.Validation(fmt.Sprintf("invalid time of day %02d:%02d", hour, minute)) // nolint:wrapcheck
	}

	return Clock(hour*minutesPerHour + minute), nil
}

// MustClock is NewClock for constants and tests.
func MustClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}

	return c
}

// ParseClock accepts HH:MM, and HH:MM:SS with zero seconds as returned by Postgres TIME columns.
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)

	parsed, err := time.Parse("15:04", value)
	if err != nil {
		parsed, err = time.Parse(time.TimeOnly, value)
		if err != nil || parsed.Second() != 0 {
			return 0, failure.Validation(fmt.Sprintf("invalid time of day %q, expected HH:MM", value)) // nolint:wrapcheck
		}
	}

	return NewClock(parsed.Hour(), parsed.Minute())
}

func (c Clock) Hour() int {
	return int(c) / minutesPerHour
}

func (c Clock) Minute() int {
	return int(c) % minutesPerHour
}

// OnGrid reports whether c sits on a slot boundary.
func (c Clock) OnGrid() bool {
	return int(c)%SlotMinutes == 0
}

// Valid reports whether c is inside a single day.
func (c Clock) Valid() bool {
	return c >= 0 && int(c) < minutesPerDay
}

func (c Clock) Before(other Clock) bool {
	return c < other
}

// Add shifts c by a number of minutes without wrapping past midnight.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On places the time of day on the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()

	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, date.Location())
}

// Hours returns the length of the span between c and end in hours.
func (c Clock) Hours(end Clock) float64 {
	return float64(end-c) / minutesPerHour
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String()) //nolint:wrapcheck
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode time of day: %w", err)
	}

	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// Value stores the clock in a TIME column.
func (c Clock) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// Scan reads TIME columns, which lib/pq returns either as text or as a time.Time on 0000-01-01.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = Clock(v.Hour()*minutesPerHour + v.Minute())

		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into schedule.Clock", src)
	}
}

func (c *Clock) scanString(value string) error {
	parsed, err := ParseClock(value)
	if err != nil {
		return fmt.Errorf("failed to scan time of day: %w", err)
	}

	*c = parsed

	return nil
}
