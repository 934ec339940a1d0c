package model_test

import (
	"testing"
	"time"

	"deskhub/internal/domains/booking/model"
	"deskhub/internal/domains/booking/schedule"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsActive(t *testing.T) {
	tests := []struct {
		status model.Status
		want   bool
	}{
		{status: model.StatusPending, want: true},
		{status: model.StatusConfirmed, want: true},
		{status: model.StatusCompleted, want: true},
		{status: model.StatusCancelled, want: false},
		{status: model.StatusNoShow, want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsActive())
			assert.True(t, tt.status.Valid())
		})
	}

	assert.False(t, model.Status("pending").Valid())
}

func TestActiveIntervals(t *testing.T) {
	bookings := []model.Booking{
		{ID: "guest", BookerVariant: model.BookerGuest, Status: model.StatusPending, StartTime: schedule.MustClock("09:00"), EndTime: schedule.MustClock("10:00")},
		{ID: "member", BookerVariant: model.BookerMember, Status: model.StatusConfirmed, StartTime: schedule.MustClock("10:00"), EndTime: schedule.MustClock("11:00")},
		{ID: "cancelled", BookerVariant: model.BookerMember, Status: model.StatusCancelled, StartTime: schedule.MustClock("11:00"), EndTime: schedule.MustClock("12:00")},
		{ID: "no-show", BookerVariant: model.BookerGuest, Status: model.StatusNoShow, StartTime: schedule.MustClock("12:00"), EndTime: schedule.MustClock("13:00")},
		{ID: "done", BookerVariant: model.BookerGuest, Status: model.StatusCompleted, StartTime: schedule.MustClock("13:00"), EndTime: schedule.MustClock("14:00")},
	}

	got := model.ActiveIntervals(bookings, "")
	assert.Equal(t, []schedule.Interval{bookings[0].Interval(), bookings[1].Interval(), bookings[4].Interval()}, got)

	got = model.ActiveIntervals(bookings, "member")
	assert.Equal(t, []schedule.Interval{bookings[0].Interval(), bookings[4].Interval()}, got)
}

func TestLockKey(t *testing.T) {
	date := time.Date(2026, 10, 20, 15, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	assert.Equal(t, "room:r1:2026-10-20", model.LockKey("r1", date))
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), model.DateOf(date))
}
