package dto_test

import (
	"testing"
	"time"

	"deskhub/internal/domains/booking/model"
	"deskhub/internal/domains/booking/model/dto"
	"deskhub/internal/domains/booking/schedule"
	paymentModel "deskhub/internal/domains/payment/model"
	"deskhub/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingRequest_Slot(t *testing.T) {
	req := dto.CreateBookingRequest{BookingDate: "2030-03-04", StartTime: "09:30", EndTime: "11:00"}

	date, interval, err := req.Slot()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "09:30-11:00", interval.String())
	assert.InDelta(t, 1.5, interval.Hours(), 0.0001)
}

func TestRescheduleBookingRequest_Slot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  dto.RescheduleBookingRequest
	}{
		{name: "bad date", req: dto.RescheduleBookingRequest{BookingDate: "04/03/2030", StartTime: "09:00", EndTime: "10:00"}},
		{name: "off grid", req: dto.RescheduleBookingRequest{BookingDate: "2030-03-04", StartTime: "09:10", EndTime: "10:00"}},
		{name: "reversed", req: dto.RescheduleBookingRequest{BookingDate: "2030-03-04", StartTime: "10:00", EndTime: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.req.Slot()
			assert.True(t, failure.IsKind(err, failure.KindValidation), "got %v", err)
		})
	}
}

func TestAvailabilityResponse_FromSlots(t *testing.T) {
	hours := schedule.Interval{Start: schedule.MustClock("09:00"), End: schedule.MustClock("10:30")}
	busy := []schedule.Interval{{Start: schedule.MustClock("09:30"), End: schedule.MustClock("10:00")}}

	slots, err := schedule.GenerateSlots(hours.Start, hours.End, busy)
	require.NoError(t, err)

	res := dto.AvailabilityResponse{}
	res.FromSlots("falcon", time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), hours, slots, busy)

	assert.Equal(t, "2030-03-04", res.Date)
	assert.Equal(t, []dto.SlotResponse{
		{Time: "09:00", Available: true},
		{Time: "09:30", Available: false},
		{Time: "10:00", Available: true},
	}, res.Slots)
	assert.Equal(t, []dto.IntervalResponse{{Start: "09:30", End: "10:00"}}, res.Busy)
}

func TestBookingResponse_FromModel(t *testing.T) {
	paidAt := time.Date(2030, 3, 4, 8, 0, 0, 0, time.UTC)
	booking := model.Booking{
		ID:            "b-1",
		RoomID:        "falcon",
		BookerVariant: model.BookerGuest,
		BookingDate:   time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime:     schedule.MustClock("09:00"),
		EndTime:       schedule.MustClock("10:00"),
		Duration:      1,
		Status:        model.StatusConfirmed,
		TotalAmount:   100000,
	}

	res := dto.BookingResponse{}
	res.FromModel(booking, &paymentModel.Payment{ID: "p-1", Amount: 100000, Status: paymentModel.StatusCompleted, PaidAt: &paidAt})

	assert.Equal(t, "GUEST", res.BookerVariant)
	assert.Equal(t, "09:00", res.StartTime)
	assert.Equal(t, "CONFIRMED", res.Status)
	require.NotNil(t, res.Payment)
	assert.Equal(t, "COMPLETED", res.Payment.Status)
	assert.NotNil(t, res.Payment.PaidAt)

	res.FromModel(booking, nil)
	assert.Nil(t, res.Payment)
}
