// Package store owns every booking write. Each write runs the read, overlap check and mutation of one
// room and day inside a single transaction holding that room/day lock.
package store

//go:generate go run go.uber.org/mock/mockgen -source=./store.go -destination=../mocks/store_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/internal/domains/booking/lifecycle"
	"deskhub/internal/domains/booking/model"
	"deskhub/internal/domains/booking/repository"
	"deskhub/internal/domains/booking/schedule"
	paymentModel "deskhub/internal/domains/payment/model"
	paymentRepo "deskhub/internal/domains/payment/repository"
	roomModel "deskhub/internal/domains/room/model"
	roomRepo "deskhub/internal/domains/room/repository"
	"deskhub/shared"
	"deskhub/shared/constant"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"
	gModel "deskhub/shared/model"
	"deskhub/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	msgBookingNotFound = "booking not found"
	msgRoomNotFound    = "room not found"
	msgPaymentNotFound = "booking has no payment"
)

// Draft carries the caller supplied part of a new booking. Identity, duration, amount
// and status are filled in by the store.
type Draft struct {
	RoomID        string
	BookerVariant model.BookerVariant
	BookerRef     string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	Company       string
	Designation   string
	Date          time.Time
	Interval      schedule.Interval
	Attendees     int
	Purpose       string
	PaymentMethod string
}

// Change describes one committed write. Before is nil on creation, Payment is nil when
// the booking has no payment after the write.
type Change struct {
	Before  *model.Booking
	After   model.Booking
	Payment *paymentModel.Payment
}

type Store interface {
	CreateBooking(ctx context.Context, draft Draft, actor string) (Change, error)
	RescheduleBooking(ctx context.Context, id string, date time.Time, interval schedule.Interval, actor string) (Change, error)
	CancelBooking(ctx context.Context, id, reason, actor string) (Change, error)
	TransitionBooking(ctx context.Context, id string, to model.Status, actor string) (Change, error)
	UpdatePaymentStatus(ctx context.Context, bookingID string, status paymentModel.Status, actor string) (Change, error)
	ListActiveBookings(ctx context.Context, roomID string, date time.Time) ([]model.Booking, error)
}

type store struct {
	transactor  postgres.Transactor
	bookingRepo repository.Booking
	paymentRepo paymentRepo.Payment
	roomRepo    roomRepo.Room
	otel        otel.Otel
}

func New(
	transactor postgres.Transactor,
	bookingRepo repository.Booking,
	paymentRepo paymentRepo.Payment,
	roomRepo roomRepo.Room,
	otel otel.Otel,
) Store {
	return &store{
		transactor:  transactor,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		roomRepo:    roomRepo,
		otel:        otel,
	}
}

// ValidateRequest checks a requested slot against the room: grid alignment, operating hours,
// capacity and the no backdating rule relative to today.
func ValidateRequest(room roomModel.Room, date time.Time, interval schedule.Interval, attendees int, today time.Time) error {
	if _, err := schedule.NewInterval(interval.Start, interval.End); err != nil {
		return err
	}

	if timezone.BeforeDay(date, today) {
		return failure.Validation(fmt.Sprintf("booking date %s is in the past", date.Format(time.DateOnly))) // nolint:wrapcheck
	}

	if attendees <= 0 {
		return failure.Validation("number of attendees must be at least 1") // nolint:wrapcheck
	}

	if attendees > room.Capacity {
		return failure.Validation(fmt.Sprintf( // nolint:wrapcheck
			"%d attendees exceed the capacity of %s (%d)", attendees, room.Name, room.Capacity))
	}

	if !room.OperatingHours().Contains(interval) {
		return failure.Validation(fmt.Sprintf( // nolint:wrapcheck
			"requested time %s is outside operating hours %s", interval, room.OperatingHours()))
	}

	return nil
}

func (s *store) CreateBooking(ctx context.Context, draft Draft, actor string) (change Change, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".CreateBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	date := model.DateOf(draft.Date)

	scope.SetAttributes(map[string]any{"room_id": draft.RoomID, "date": date.Format(time.DateOnly), "interval": draft.Interval.String()})

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.transactor.LockKeys(ctx, tx, model.LockKey(draft.RoomID, date)); err != nil {
			return err
		}

		room, err := s.getRoom(ctx, tx, draft.RoomID)
		if err != nil {
			return err
		}

		if !room.Bookable() {
			return failure.Validation(fmt.Sprintf("room %s is not available for booking", room.Name)) // nolint:wrapcheck
		}

		if err := ValidateRequest(room, date, draft.Interval, draft.Attendees, timezone.Today()); err != nil {
			return err
		}

		if err := s.ensureFree(ctx, tx, draft.RoomID, date, draft.Interval, ""); err != nil {
			return err
		}

		status, effect := lifecycle.Initial()
		now := timezone.Now()
		hours := draft.Interval.Hours()

		booking := model.Booking{
			ID:            uuid.NewString(),
			RoomID:        draft.RoomID,
			BookerVariant: draft.BookerVariant,
			BookerRef:     draft.BookerRef,
			ContactName:   draft.ContactName,
			ContactEmail:  draft.ContactEmail,
			ContactPhone:  draft.ContactPhone,
			Company:       draft.Company,
			Designation:   draft.Designation,
			BookingDate:   date,
			StartTime:     draft.Interval.Start,
			EndTime:       draft.Interval.End,
			Duration:      hours,
			Attendees:     draft.Attendees,
			Purpose:       draft.Purpose,
			Status:        status,
			TotalAmount:   room.Price(hours),
			Metadata:      gModel.NewMetadata(actor, now),
		}

		var payment *paymentModel.Payment
		if effect == lifecycle.EffectCreatePayment {
			payment = newPayment(booking, draft.PaymentMethod, actor, now)
			booking.PaymentID = &payment.ID
		}

		if err := s.bookingRepo.InsertTx(ctx, tx, booking); err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if payment != nil {
			if err := s.paymentRepo.InsertTx(ctx, tx, *payment); err != nil {
				return fmt.Errorf("failed to insert payment: %w", err)
			}
		}

		change = Change{After: booking, Payment: payment}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", draft.RoomID).Msg("failed to create booking")

		return Change{}, err
	}

	return change, nil
}

func (s *store) RescheduleBooking(ctx context.Context, id string, date time.Time, interval schedule.Interval, actor string) (change Change, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".RescheduleBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	date = model.DateOf(date)

	scope.SetAttributes(map[string]any{"booking_id": id, "date": date.Format(time.DateOnly), "interval": interval.String()})

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		before, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := s.transactor.LockKeys(ctx, tx, before.LockKey(), model.LockKey(before.RoomID, date)); err != nil {
			return err
		}

		if before.Status != model.StatusPending && before.Status != model.StatusConfirmed {
			return failure.Conflict(fmt.Sprintf("a %s booking cannot be rescheduled", before.Status)) // nolint:wrapcheck
		}

		room, err := s.getRoom(ctx, tx, before.RoomID)
		if err != nil {
			return err
		}

		if err := ValidateRequest(room, date, interval, before.Attendees, timezone.Today()); err != nil {
			return err
		}

		if err := s.ensureFree(ctx, tx, before.RoomID, date, interval, before.ID); err != nil {
			return err
		}

		after := before
		after.BookingDate = date
		after.StartTime = interval.Start
		after.EndTime = interval.End
		after.Duration = interval.Hours()
		after.TotalAmount = room.Price(after.Duration)
		after.ModifiedAt = timezone.Now()
		after.ModifiedBy = actor

		update := map[string]any{
			model.FieldBookingDate:   after.BookingDate,
			model.FieldStartTime:     after.StartTime,
			model.FieldEndTime:       after.EndTime,
			model.FieldDuration:      after.Duration,
			model.FieldTotalAmount:   after.TotalAmount,
			constant.FieldModifiedAt: after.ModifiedAt,
			constant.FieldModifiedBy: actor,
		}

		if err := s.bookingRepo.UpdateTx(ctx, tx, update, byID(id)); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		payment, err := s.syncPaymentAmount(ctx, tx, after, actor)
		if err != nil {
			return err
		}

		change = Change{Before: &before, After: after, Payment: payment}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to reschedule booking")

		return Change{}, err
	}

	return change, nil
}

func (s *store) CancelBooking(ctx context.Context, id, reason, actor string) (Change, error) {
	return s.transition(ctx, id, model.StatusCancelled, reason, actor)
}

func (s *store) TransitionBooking(ctx context.Context, id string, to model.Status, actor string) (Change, error) {
	return s.transition(ctx, id, to, "", actor)
}

func (s *store) transition(ctx context.Context, id string, to model.Status, reason, actor string) (change Change, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".TransitionBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{"booking_id": id, "status": string(to)})

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		before, err := s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := s.transactor.LockKeys(ctx, tx, before.LockKey()); err != nil {
			return err
		}

		effect, err := lifecycle.Transition(before.Status, to)
		if err != nil {
			return err
		}

		after := before
		after.Status = to
		after.ModifiedAt = timezone.Now()
		after.ModifiedBy = actor

		update := map[string]any{
			model.FieldStatus:        string(to),
			constant.FieldModifiedAt: after.ModifiedAt,
			constant.FieldModifiedBy: actor,
		}

		if reason = strings.TrimSpace(reason); reason != "" {
			after.CancelReason = &reason
			update[model.FieldCancelReason] = reason
		}

		var payment *paymentModel.Payment

		switch effect {
		case lifecycle.EffectVoidPayment:
			if before.PaymentID != nil {
				if err := s.paymentRepo.DeleteTx(ctx, tx, shared.FilterByID(*before.PaymentID, paymentModel.FieldID, paymentModel.TableName)); err != nil {
					return fmt.Errorf("failed to void payment: %w", err)
				}
			}

			after.PaymentID = nil
			update[model.FieldPaymentID] = nil
		default:
			payment, err = s.currentPayment(ctx, tx, before)
			if err != nil {
				return err
			}
		}

		if err := s.bookingRepo.UpdateTx(ctx, tx, update, byID(id)); err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}

		change = Change{Before: &before, After: after, Payment: payment}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Str("status", string(to)).Msg("failed to transition booking")

		return Change{}, err
	}

	return change, nil
}

func (s *store) UpdatePaymentStatus(ctx context.Context, bookingID string, status paymentModel.Status, actor string) (change Change, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".UpdatePaymentStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !status.Valid() {
		return Change{}, failure.Validation(fmt.Sprintf("unknown payment status %q", status)) // nolint:wrapcheck
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		booking, err := s.getForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		payment, err := s.currentPayment(ctx, tx, booking)
		if err != nil {
			return err
		}

		if payment == nil {
			return failure.NotFound(msgPaymentNotFound) // nolint:wrapcheck
		}

		now := timezone.Now()
		payment.Status = status
		payment.ModifiedAt = now
		payment.ModifiedBy = actor

		update := map[string]any{
			paymentModel.FieldStatus: string(status),
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: actor,
		}

		if status == paymentModel.StatusCompleted {
			payment.PaidAt = &now
			update[paymentModel.FieldPaidAt] = now
		}

		if err := s.paymentRepo.UpdateTx(ctx, tx, update, shared.FilterByID(payment.ID, paymentModel.FieldID, paymentModel.TableName)); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		change = Change{Before: &booking, After: booking, Payment: payment}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to update payment status")

		return Change{}, err
	}

	return change, nil
}

func (s *store) ListActiveBookings(ctx context.Context, roomID string, date time.Time) (bookings []model.Booking, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".ListActiveBookings")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bookings, err = s.bookingRepo.ListActive(ctx, roomID, model.DateOf(date))
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to list active bookings")

		return nil, postgres.TranslateError(fmt.Errorf("failed to list active bookings: %w", err))
	}

	return bookings, nil
}

// ensureFree runs the overlap check against every active booking of the room on date,
// ignoring excludeID. Callers must hold the room/day lock.
func (s *store) ensureFree(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time, requested schedule.Interval, excludeID string) error {
	active, err := s.bookingRepo.ListActiveTx(ctx, tx, roomID, date)
	if err != nil {
		return fmt.Errorf("failed to list active bookings: %w", err)
	}

	conflicts := schedule.FindConflicts(requested, model.ActiveIntervals(active, excludeID))
	if len(conflicts) > 0 {
		return schedule.ConflictError(requested, conflicts)
	}

	return nil
}

func (s *store) getForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error) {
	booking, err := s.bookingRepo.GetForUpdateTx(ctx, tx, byID(id))
	if err != nil {
		return model.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == "" {
		return model.Booking{}, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	return booking, nil
}

func (s *store) getRoom(ctx context.Context, tx *sqlx.Tx, id string) (roomModel.Room, error) {
	room, err := s.roomRepo.GetForShareTx(ctx, tx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		return roomModel.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == "" {
		return roomModel.Room{}, failure.NotFound(msgRoomNotFound) // nolint:wrapcheck
	}

	return room, nil
}

func (s *store) currentPayment(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (*paymentModel.Payment, error) {
	if booking.PaymentID == nil {
		return nil, nil //nolint:nilnil
	}

	payment, err := s.paymentRepo.GetTx(ctx, tx, shared.FilterByID(*booking.PaymentID, paymentModel.FieldID, paymentModel.TableName))
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == "" {
		return nil, nil //nolint:nilnil
	}

	return &payment, nil
}

// syncPaymentAmount keeps the payment amount equal to the booking total.
func (s *store) syncPaymentAmount(ctx context.Context, tx *sqlx.Tx, booking model.Booking, actor string) (*paymentModel.Payment, error) {
	payment, err := s.currentPayment(ctx, tx, booking)
	if err != nil || payment == nil {
		return payment, err
	}

	if payment.Amount == booking.TotalAmount {
		return payment, nil
	}

	payment.Amount = booking.TotalAmount
	payment.ModifiedAt = booking.ModifiedAt
	payment.ModifiedBy = actor

	update := map[string]any{
		paymentModel.FieldAmount: payment.Amount,
		constant.FieldModifiedAt: payment.ModifiedAt,
		constant.FieldModifiedBy: actor,
	}

	if err := s.paymentRepo.UpdateTx(ctx, tx, update, shared.FilterByID(payment.ID, paymentModel.FieldID, paymentModel.TableName)); err != nil {
		return nil, fmt.Errorf("failed to update payment amount: %w", err)
	}

	return payment, nil
}

func newPayment(booking model.Booking, method, actor string, now time.Time) *paymentModel.Payment {
	if method == "" {
		method = paymentModel.MethodCash
	}

	id := uuid.NewString()

	return &paymentModel.Payment{
		ID:            id,
		BookingID:     booking.ID,
		Amount:        booking.TotalAmount,
		Method:        method,
		Status:        paymentModel.StatusPending,
		ReferenceCode: fmt.Sprintf("DH-%s-%s", booking.BookingDate.Format("20060102"), strings.ToUpper(id[:8])),
		Metadata:      gModel.NewMetadata(actor, now),
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}
