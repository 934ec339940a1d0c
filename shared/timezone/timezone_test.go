package timezone_test

import (
	"testing"
	"time"

	"deskhub/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useLocation(t *testing.T, name string) {
	t.Helper()

	previous := timezone.Location().String()
	require.NoError(t, timezone.SetLocation(name))
	t.Cleanup(func() { _ = timezone.SetLocation(previous) })
}

func TestSetLocation(t *testing.T) {
	useLocation(t, "Asia/Jakarta")
	assert.Equal(t, "Asia/Jakarta", timezone.Location().String())
	assert.Equal(t, "Asia/Jakarta", timezone.Now().Location().String())

	require.NoError(t, timezone.SetLocation(""))
	assert.Equal(t, time.UTC, timezone.Location())

	assert.Error(t, timezone.SetLocation("Mars/Olympus_Mons"))
	assert.Equal(t, time.UTC, timezone.Location())
}

func TestStartOfDay_CrossesUTCMidnight(t *testing.T) {
	useLocation(t, "Asia/Jakarta")

	// 20:30 UTC is already the next morning in Jakarta.
	late := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	day := timezone.StartOfDay(late)

	assert.Equal(t, "2026-10-20", day.Format(timezone.DateLayout))
	assert.Zero(t, day.Hour())
	assert.Equal(t, "2026-10-20 03:30", timezone.Format(late, "2006-01-02 15:04"))
}

func TestToday(t *testing.T) {
	useLocation(t, "America/New_York")

	today := timezone.Today()

	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Minute())
	assert.Equal(t, timezone.Now().Format(timezone.DateLayout), today.Format(timezone.DateLayout))
}

func TestParseDate(t *testing.T) {
	useLocation(t, "Asia/Jakarta")

	day, err := timezone.ParseDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, timezone.Location()), day)

	for _, value := range []string{"20-10-2026", "2026-02-30", ""} {
		_, err := timezone.ParseDate(value)
		assert.Error(t, err, value)
	}
}

func TestBeforeDay(t *testing.T) {
	morning := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 20, 21, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{name: "same day", a: morning, b: evening, want: false},
		{name: "next day", a: evening, b: morning.AddDate(0, 0, 1), want: true},
		{name: "previous month", a: morning.AddDate(0, -1, 5), b: morning, want: true},
		{name: "previous year", a: morning.AddDate(-1, 0, 0), b: morning, want: true},
		{name: "later", a: morning.AddDate(0, 0, 1), b: evening, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timezone.BeforeDay(tt.a, tt.b))
		})
	}
}
