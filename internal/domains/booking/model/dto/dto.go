package dto

import (
	"fmt"
	"time"

	"deskhub/internal/domains/booking/model"
	"deskhub/internal/domains/booking/schedule"
	paymentModel "deskhub/internal/domains/payment/model"
	"deskhub/shared"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"
	"deskhub/shared/timezone"
)

type AvailabilityRequest struct {
	RoomID string `json:"room_id" validate:"required"`
	Date   string `json:"date"    validate:"required,date"`
}

type SlotResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type IntervalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type AvailabilityResponse struct {
	RoomID         string             `json:"room_id"`
	Date           string             `json:"date"`
	OperatingStart string             `json:"operating_start"`
	OperatingEnd   string             `json:"operating_end"`
	Slots          []SlotResponse     `json:"slots"`
	Busy           []IntervalResponse `json:"busy"`
}

func (r *AvailabilityResponse) FromSlots(roomID string, date time.Time, hours schedule.Interval, slots []schedule.Slot, busy []schedule.Interval) {
	r.RoomID = roomID
	r.Date = date.Format(time.DateOnly)
	r.OperatingStart = hours.Start.String()
	r.OperatingEnd = hours.End.String()

	r.Slots = make([]SlotResponse, len(slots))
	for i, slot := range slots {
		r.Slots[i] = SlotResponse{Time: slot.Time.String(), Available: slot.Available}
	}

	r.Busy = make([]IntervalResponse, len(busy))
	for i, interval := range busy {
		r.Busy[i] = IntervalResponse{Start: interval.Start.String(), End: interval.End.String()}
	}
}

type CreateBookingRequest struct {
	RoomID        string `json:"-"              validate:"required"`
	BookingDate   string `json:"booking_date"   validate:"required,date"`
	StartTime     string `json:"start_time"     validate:"required,clock=grid"`
	EndTime       string `json:"end_time"       validate:"required,clock=grid"`
	Attendees     int    `json:"attendees"      validate:"required,gt=0"`
	Purpose       string `json:"purpose"        validate:"omitempty,max=255"`
	ContactName   string `json:"contact_name"   validate:"required,max=100"`
	ContactEmail  string `json:"contact_email"  validate:"required,email,max=100"`
	ContactPhone  string `json:"contact_phone"  validate:"omitempty,max=20"`
	Company       string `json:"company"        validate:"omitempty,max=100"`
	Designation   string `json:"designation"    validate:"omitempty,max=100"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=CASH TRANSFER CARD"`
}

// Slot parses the date and interval of the request.
func (c *CreateBookingRequest) Slot() (time.Time, schedule.Interval, error) {
	return parseSlot(c.BookingDate, c.StartTime, c.EndTime)
}

type RescheduleBookingRequest struct {
	BookingDate string `json:"booking_date" validate:"required,date"`
	StartTime   string `json:"start_time"   validate:"required,clock=grid"`
	EndTime     string `json:"end_time"     validate:"required,clock=grid"`
}

func (r *RescheduleBookingRequest) Slot() (time.Time, schedule.Interval, error) {
	return parseSlot(r.BookingDate, r.StartTime, r.EndTime)
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED CANCELLED COMPLETED NO_SHOW"`
}

type UpdatePaymentRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	ReferenceCode string  `json:"reference_code"`
	PaidAt        *string `json:"paid_at"`
}

func (r *PaymentResponse) FromModel(payment paymentModel.Payment) {
	r.ID = payment.ID
	r.Amount = payment.Amount
	r.Method = payment.Method
	r.Status = string(payment.Status)
	r.ReferenceCode = payment.ReferenceCode

	if payment.PaidAt != nil {
		paidAt := timezone.Format(*payment.PaidAt, time.RFC3339)
		r.PaidAt = &paidAt
	}
}

type BookingResponse struct {
	ID            string           `json:"id"`
	RoomID        string           `json:"room_id"`
	BookerVariant string           `json:"booker_variant"`
	BookerRef     string           `json:"booker_ref"`
	ContactName   string           `json:"contact_name"`
	ContactEmail  string           `json:"contact_email"`
	ContactPhone  string           `json:"contact_phone"`
	Company       string           `json:"company"`
	Designation   string           `json:"designation"`
	BookingDate   string           `json:"booking_date"`
	StartTime     string           `json:"start_time"`
	EndTime       string           `json:"end_time"`
	Duration      float64          `json:"duration"`
	Attendees     int              `json:"attendees"`
	Purpose       string           `json:"purpose"`
	Status        string           `json:"status"`
	TotalAmount   float64          `json:"total_amount"`
	CancelReason  *string          `json:"cancel_reason,omitempty"`
	Payment       *PaymentResponse `json:"payment"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking, payment *paymentModel.Payment) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.BookerVariant = string(model.BookerVariant)
	r.BookerRef = model.BookerRef
	r.ContactName = model.ContactName
	r.ContactEmail = model.ContactEmail
	r.ContactPhone = model.ContactPhone
	r.Company = model.Company
	r.Designation = model.Designation
	r.BookingDate = model.BookingDate.Format(time.DateOnly)
	r.StartTime = model.StartTime.String()
	r.EndTime = model.EndTime.String()
	r.Duration = model.Duration
	r.Attendees = model.Attendees
	r.Purpose = model.Purpose
	r.Status = string(model.Status)
	r.TotalAmount = model.TotalAmount
	r.CancelReason = model.CancelReason
	r.Metadata.FromModel(model.Metadata)

	r.Payment = nil
	if payment != nil {
		r.Payment = &PaymentResponse{}
		r.Payment.FromModel(*payment)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.TotalPages(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod, nil)
	}
}

func parseSlot(date, start, end string) (time.Time, schedule.Interval, error) {
	day, err := timezone.ParseDate(date)
	if err != nil {
		return time.Time{}, schedule.Interval{}, failure.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date)) // nolint:wrapcheck
	}

	interval, err := schedule.ParseInterval(start, end)
	if err != nil {
		return time.Time{}, schedule.Interval{}, err
	}

	return model.DateOf(day), interval, nil
}
