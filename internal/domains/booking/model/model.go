package model

import (
	"time"

	"deskhub/internal/domains/booking/schedule"
	"deskhub/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldRoomID        = "room_id"
	FieldBookerVariant = "booker_variant"
	FieldBookerRef     = "booker_ref"
	FieldContactName   = "contact_name"
	FieldContactEmail  = "contact_email"
	FieldContactPhone  = "contact_phone"
	FieldBookingDate   = "booking_date"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldDuration      = "duration"
	FieldAttendees     = "attendees"
	FieldPurpose       = "purpose"
	FieldStatus        = "status"
	FieldTotalAmount   = "total_amount"
	FieldPaymentID     = "payment_id"
	FieldCancelReason  = "cancel_reason"
	FieldCreatedBy     = "created_by"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

// ActiveStatuses hold a slot and take part in conflict checks.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted}

// IsActive reports whether a booking in this status occupies its slot.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	default:
		return false
	}
}

type BookerVariant string

const (
	BookerMember BookerVariant = "MEMBER"
	BookerGuest  BookerVariant = "GUEST"
)

type Booking struct {
	ID            string         `db:"id"`
	RoomID        string         `db:"room_id"`
	BookerVariant BookerVariant  `db:"booker_variant"`
	BookerRef     string         `db:"booker_ref"`
	ContactName   string         `db:"contact_name"`
	ContactEmail  string         `db:"contact_email"`
	ContactPhone  string         `db:"contact_phone"`
	Company       string         `db:"company"`
	Designation   string         `db:"designation"`
	BookingDate   time.Time      `db:"booking_date"`
	StartTime     schedule.Clock `db:"start_time"`
	EndTime       schedule.Clock `db:"end_time"`
	Duration      float64        `db:"duration"`
	Attendees     int            `db:"attendees"`
	Purpose       string         `db:"purpose"`
	Status        Status         `db:"status"`
	TotalAmount   float64        `db:"total_amount"`
	PaymentID     *string        `db:"payment_id"`
	CancelReason  *string        `db:"cancel_reason"`
	model.Metadata
}

func (b Booking) Interval() schedule.Interval {
	return schedule.Interval{Start: b.StartTime, End: b.EndTime}
}

func (b Booking) IsActive() bool {
	return b.Status.IsActive()
}

// LockKey names the room/day critical section the booking belongs to.
func (b Booking) LockKey() string {
	return LockKey(b.RoomID, b.BookingDate)
}

// LockKey names the critical section for one room on one calendar day.
func LockKey(roomID string, date time.Time) string {
	return "room:" + roomID + ":" + date.Format(time.DateOnly)
}

// DateOf keeps only the calendar day of t, pinned to UTC midnight so DATE columns store it verbatim.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ActiveIntervals returns the occupied intervals of every active booking except excludeID,
// regardless of booker variant.
func ActiveIntervals(bookings []Booking, excludeID string) []schedule.Interval {
	intervals := make([]schedule.Interval, 0, len(bookings))

	for _, booking := range bookings {
		if booking.ID == excludeID || !booking.IsActive() {
			continue
		}

		intervals = append(intervals, booking.Interval())
	}

	return intervals
}
