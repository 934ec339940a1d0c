package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"deskhub/config"
	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/internal/domains/booking/event"
	"deskhub/internal/domains/booking/model"
	"deskhub/internal/domains/booking/model/dto"
	"deskhub/internal/domains/booking/repository"
	"deskhub/internal/domains/booking/schedule"
	"deskhub/internal/domains/booking/store"
	paymentModel "deskhub/internal/domains/payment/model"
	paymentRepo "deskhub/internal/domains/payment/repository"
	roomModel "deskhub/internal/domains/room/model"
	roomRepo "deskhub/internal/domains/room/repository"
	"deskhub/shared"
	"deskhub/shared/cache"
	"deskhub/shared/constant"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"
	"deskhub/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking     = "booking:get"
	cacheGetAllBooking  = "booking:gets"
	cacheCountBooking   = "booking:count"
	msgBookingNotFound  = "booking not found"
	msgRoomNotFound     = "room not found"
	msgDeleteNotAllowed = "only cancelled bookings can be deleted"

	// availabilityVersionWindow outlives any availability entry by far.
	availabilityVersionWindow = 7 * 24 * 60 * 60
)

type Booking interface {
	GetAvailability(ctx context.Context, roomID string, date time.Time) (dto.AvailabilityResponse, error)
	Book(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Reschedule(ctx context.Context, id string, req dto.RescheduleBookingRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (dto.BookingResponse, error)
	UpdatePayment(ctx context.Context, id string, req dto.UpdatePaymentRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	store       store.Store
	repo        repository.Booking
	roomRepo    roomRepo.Room
	paymentRepo paymentRepo.Payment
	publisher   event.Publisher
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	store store.Store,
	repo repository.Booking,
	roomRepo roomRepo.Room,
	paymentRepo paymentRepo.Payment,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		store:       store,
		repo:        repo,
		roomRepo:    roomRepo,
		paymentRepo: paymentRepo,
		publisher:   publisher,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// GetAvailability lists the 30-minute slots of a room on date. It takes no lock, so the answer may be
// stale by the time a booking is attempted.
func (s *serviceImpl) GetAvailability(ctx context.Context, roomID string, date time.Time) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	date = model.DateOf(date)
	cacheKey := availabilityKey(roomID, date, s.availabilityVersion(ctx, roomID, date))

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for availability")

		return res, nil
	}

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return res, err
	}

	bookings, err := s.store.ListActiveBookings(ctx, roomID, date)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to list active bookings")

		return res, fmt.Errorf("failed to list active bookings: %w", err)
	}

	busy := model.ActiveIntervals(bookings, "")

	slots, err := schedule.GenerateSlots(room.OperatingStart, room.OperatingEnd, busy)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to generate slots")

		return res, err
	}

	if !room.Bookable() {
		for i := range slots {
			slots[i].Available = false
		}
	}

	res.FromSlots(room.ID, date, room.OperatingHours(), slots, busy)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.AvailabilityTTL); err != nil {
		log.Error().Err(err).Msg("failed to save availability to cache")
	}

	return res, nil
}

func (s *serviceImpl) Book(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Book")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)

	date, interval, err := req.Slot()
	if err != nil {
		return res, err
	}

	room, err := s.getRoom(ctx, req.RoomID)
	if err != nil {
		return res, err
	}

	if !room.Bookable() {
		return res, failure.Validation(fmt.Sprintf("room %s is not available for booking", room.Name)) // nolint:wrapcheck
	}

	if err := store.ValidateRequest(room, date, interval, req.Attendees, timezone.Today()); err != nil {
		return res, err
	}

	variant, ref := who.booker(req.ContactEmail)

	change, err := s.store.CreateBooking(ctx, store.Draft{
		RoomID:        req.RoomID,
		BookerVariant: variant,
		BookerRef:     ref,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Company:       req.Company,
		Designation:   req.Designation,
		Date:          date,
		Interval:      interval,
		Attendees:     req.Attendees,
		Purpose:       req.Purpose,
		PaymentMethod: req.PaymentMethod,
	}, who.actor())
	if err != nil {
		log.Error().Err(err).Str("room_id", req.RoomID).Msg("failed to book room")

		return res, err
	}

	s.afterChange(ctx, event.ActionCreated, who, change)

	res.FromModel(change.After, change.Payment)

	return res, nil
}

func (s *serviceImpl) Reschedule(ctx context.Context, id string, req dto.RescheduleBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reschedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)

	date, interval, err := req.Slot()
	if err != nil {
		return res, err
	}

	if _, err := s.getAuthorized(ctx, who, id); err != nil {
		return res, err
	}

	change, err := s.store.RescheduleBooking(ctx, id, date, interval, who.actor())
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to reschedule booking")

		return res, err
	}

	s.afterChange(ctx, event.ActionRescheduled, who, change)

	res.FromModel(change.After, change.Payment)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)

	if _, err := s.getAuthorized(ctx, who, id); err != nil {
		return res, err
	}

	change, err := s.store.CancelBooking(ctx, id, req.Reason, who.actor())
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

		return res, err
	}

	s.afterChange(ctx, event.ActionCancelled, who, change)

	res.FromModel(change.After, change.Payment)

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)
	if !who.admin() {
		return res, failure.ForbiddenError
	}

	status := model.Status(req.Status)
	action := event.ActionStatusChanged

	var change store.Change

	if status == model.StatusCancelled {
		action = event.ActionCancelled
		change, err = s.store.CancelBooking(ctx, id, "", who.actor())
	} else {
		change, err = s.store.TransitionBooking(ctx, id, status, who.actor())
	}

	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Str("status", req.Status).Msg("failed to update booking status")

		return res, err
	}

	s.afterChange(ctx, action, who, change)

	res.FromModel(change.After, change.Payment)

	return res, nil
}

func (s *serviceImpl) UpdatePayment(ctx context.Context, id string, req dto.UpdatePaymentRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdatePayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)
	if !who.admin() {
		return res, failure.ForbiddenError
	}

	change, err := s.store.UpdatePaymentStatus(ctx, id, paymentModel.Status(req.Status), who.actor())
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to update payment status")

		return res, err
	}

	s.afterChange(ctx, event.ActionPaymentUpdate, who, change)

	res.FromModel(change.After, change.Payment)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	var cached struct {
		Response  dto.BookingResponse `json:"response"`
		Variant   string              `json:"variant"`
		BookerRef string              `json:"booker_ref"`
	}

	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		owner := model.Booking{BookerVariant: model.BookerVariant(cached.Variant), BookerRef: cached.BookerRef}
		if err := who.authorize(owner); err != nil {
			return res, err
		}

		return cached.Response, nil
	}

	booking, err := s.getAuthorized(ctx, who, id)
	if err != nil {
		return res, err
	}

	var payment *paymentModel.Payment

	if booking.PaymentID != nil {
		found, err := s.paymentRepo.Get(ctx, shared.FilterByID(*booking.PaymentID, paymentModel.FieldID, paymentModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("failed to get payment")

			return res, postgres.TranslateError(fmt.Errorf("failed to get payment: %w", err))
		}

		if found.ID != constant.Empty {
			payment = &found
		}
	}

	res.FromModel(booking, payment)

	cached.Response = res
	cached.Variant = string(booking.BookerVariant)
	cached.BookerRef = booking.BookerRef

	if err := s.cache.Save(ctx, cacheKey, cached, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking to cache")
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, postgres.TranslateError(fmt.Errorf("failed to get bookings: %w", err))
	}

	res.FromModels(models, total, req.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save bookings to cache")
	}

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, postgres.TranslateError(fmt.Errorf("failed to count bookings: %w", err))
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking count to cache")
	}

	return res, nil
}

// Delete removes a booking for good. Only cancelled bookings qualify, everything else keeps its audit trail.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	who := callerFrom(ctx)
	if !who.admin() {
		return failure.ForbiddenError
	}

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status != model.StatusCancelled {
		return failure.Conflict(msgDeleteNotAllowed) // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, byID(id)); err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to delete booking")

		return postgres.TranslateError(fmt.Errorf("failed to delete booking: %w", err))
	}

	s.invalidate(ctx, booking)
	s.audit(ctx, event.ActionDeleted, who, booking.ID, &booking, nil)

	return nil
}

func (s *serviceImpl) getRoom(ctx context.Context, id string) (roomModel.Room, error) {
	room, err := s.roomRepo.Get(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		return room, postgres.TranslateError(fmt.Errorf("failed to get room: %w", err))
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound(msgRoomNotFound) // nolint:wrapcheck
	}

	return room, nil
}

func (s *serviceImpl) getBooking(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, postgres.TranslateError(fmt.Errorf("failed to get booking: %w", err))
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) getAuthorized(ctx context.Context, who caller, id string) (model.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return booking, err
	}

	if err := who.authorize(booking); err != nil {
		return model.Booking{}, err
	}

	return booking, nil
}

// afterChange drops every cached view the change touched, then emits the side-channel events.
// Neither step can fail the operation.
func (s *serviceImpl) afterChange(ctx context.Context, action event.Action, who caller, change store.Change) {
	if change.Before != nil {
		s.invalidate(ctx, *change.Before)
	}

	s.invalidate(ctx, change.After)

	if action != event.ActionPaymentUpdate {
		if err := s.publisher.Notify(ctx, event.NotificationOf(action, change.After)); err != nil {
			log.Warn().Err(err).Str("booking_id", change.After.ID).Msg("booking notification was not delivered")
		}
	}

	s.audit(ctx, action, who, change.After.ID, change.Before, &change.After)
}

func (s *serviceImpl) audit(ctx context.Context, action event.Action, who caller, bookingID string, before, after *model.Booking) {
	err := s.publisher.Audit(ctx, event.Audit{
		ActorID:     who.actor(),
		Action:      action,
		BookingID:   bookingID,
		BeforeState: event.StateOf(before),
		AfterState:  event.StateOf(after),
	})
	if err != nil {
		log.Warn().Err(err).Str("booking_id", bookingID).Msg("booking audit was not delivered")
	}
}

// invalidate runs after commit. Bumping the version orphans any availability entry computed before it,
// including one a concurrent reader saves after this call.
func (s *serviceImpl) invalidate(ctx context.Context, booking model.Booking) {
	if _, err := s.cache.Incr(ctx, availabilityVersionKey(booking.RoomID, booking.BookingDate), availabilityVersionWindow); err != nil {
		log.Error().Err(err).Msg("failed to bump availability version")
	}

	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
}

// availabilityVersion reads before the bookings do. A missing counter is version zero.
func (s *serviceImpl) availabilityVersion(ctx context.Context, roomID string, date time.Time) int {
	var version int
	if err := s.cache.Get(ctx, availabilityVersionKey(roomID, date), &version); err != nil {
		return 0
	}

	return version
}

func availabilityKey(roomID string, date time.Time, version int) string {
	return shared.BuildCacheKey(constant.CacheKeyAvailability, roomID, model.DateOf(date).Format(time.DateOnly), "v"+strconv.Itoa(version))
}

func availabilityVersionKey(roomID string, date time.Time) string {
	return shared.BuildCacheKey(constant.CacheKeyAvailabilityVersion, roomID, model.DateOf(date).Format(time.DateOnly))
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}
