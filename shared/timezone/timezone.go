package timezone

import (
	"sync/atomic"
	"time"

	"deskhub/config"

	"github.com/rs/zerolog/log"
)

// DateLayout is the wire format of a booking date.
const DateLayout = time.DateOnly

var location atomic.Pointer[time.Location]

func init() {
	name := config.Get().App.Timezone
	if err := SetLocation(name); err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("unknown timezone, booking days fall back to UTC")
		location.Store(time.UTC)

		return
	}

	log.Debug().Str("timezone", Location().String()).Msg("booking day boundaries resolved")
}

// SetLocation switches the zone booking days are counted in. An empty name means UTC.
func SetLocation(name string) error {
	if name == "" {
		location.Store(time.UTC)

		return nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}

	location.Store(loc)

	return nil
}

// Location returns the zone booking days are counted in.
func Location() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

func Now() time.Time {
	return time.Now().In(Location())
}

// Today is midnight of the current booking day.
func Today() time.Time {
	return StartOfDay(Now())
}

// StartOfDay truncates t to midnight of its booking day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(Location()).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, Location())
}

func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// ParseDate reads a YYYY-MM-DD booking date as midnight of that day.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location())
}

// BeforeDay reports whether a's calendar day is strictly before b's, each read on its own wall clock.
func BeforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	if ay != by {
		return ay < by
	}

	if am != bm {
		return am < bm
	}

	return ad < bd
}
