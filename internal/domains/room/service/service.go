package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Room=MockRoomService

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"deskhub/config"
	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/infras/s3"
	bookingRepository "deskhub/internal/domains/booking/repository"
	"deskhub/internal/domains/booking/schedule"
	"deskhub/internal/domains/room/model"
	"deskhub/internal/domains/room/model/dto"
	"deskhub/internal/domains/room/repository"
	"deskhub/shared"
	"deskhub/shared/cache"
	"deskhub/shared/constant"
	gDto "deskhub/shared/dto"
	"deskhub/shared/failure"
	"deskhub/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"

	msgRoomNotFound = "room not found"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	// Delete removes a room that has no upcoming PENDING or CONFIRMED bookings.
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.Room
	bookingRepo bookingRepository.Booking
	transactor  postgres.Transactor
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	s3          s3.S3
}

func New(
	repo repository.Room,
	bookingRepo bookingRepository.Booking,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Room {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		transactor:  transactor,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		s3:          s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	hours, err := req.OperatingHours()
	if err != nil {
		return res, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image, req.ImageFile)
	if err != nil {
		return res, err
	}

	room := req.ToModel(user, hours, imageURL)

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to insert room")
		s.deleteImage(ctx, imageURL)

		return res, fmt.Errorf("failed to insert room: %w", postgres.TranslateError(err))
	}

	s.invalidateLists(ctx)

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save rooms to cache")
	}

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save room count to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound(msgRoomNotFound) // nolint:wrapcheck
	}

	res.FromModel(room)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save room to cache")
	}

	return res, nil
}

// Update never rewrites existing bookings. It refuses to lower capacity or narrow operating hours below
// an upcoming PENDING or CONFIRMED booking, and new price applies to bookings made afterwards.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	imageURL, err := s.uploadImage(ctx, req.Image, req.ImageFile)
	if err != nil {
		return err
	}

	var current model.Room

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err := s.repo.GetForUpdateTx(ctx, tx, byID(id))
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(msgRoomNotFound) // nolint:wrapcheck
		}

		hours, err := req.OperatingHours(room.OperatingHours())
		if err != nil {
			return err
		}

		capacity := room.Capacity
		if req.Capacity != nil {
			capacity = *req.Capacity
		}

		if capacity < room.Capacity || !hours.Contains(room.OperatingHours()) {
			if err := s.ensureFitsUpcoming(ctx, tx, room, capacity, hours); err != nil {
				return err
			}
		}

		fields := shared.ChangedFields(req, user)
		if imageURL != constant.Empty {
			fields[model.FieldImage] = imageURL
		}

		if err := s.repo.UpdateTx(ctx, tx, fields, byID(id)); err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}

		current = room

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room")
		s.deleteImage(ctx, imageURL)

		return err
	}

	if imageURL != constant.Empty {
		s.deleteImage(ctx, current.Image)
	}

	s.invalidate(ctx, id, req.AffectsAvailability())

	return nil
}

// ensureFitsUpcoming rejects a capacity or hours change that an upcoming active booking would no longer fit.
func (s *serviceImpl) ensureFitsUpcoming(ctx context.Context, tx *sqlx.Tx, room model.Room, capacity int, hours schedule.Interval) error {
	upcoming, err := s.bookingRepo.ListUpcomingTx(ctx, tx, room.ID, timezone.Today())
	if err != nil {
		return fmt.Errorf("failed to list upcoming bookings: %w", err)
	}

	for _, booking := range upcoming {
		when := booking.BookingDate.Format(time.DateOnly) + " " + booking.Interval().String()

		if booking.Attendees > capacity {
			return failure.Conflict(fmt.Sprintf( // nolint:wrapcheck
				"room %s has a booking on %s for %d attendees, more than the new capacity of %d", room.Name, when, booking.Attendees, capacity))
		}

		if !hours.Contains(booking.Interval()) {
			return failure.Conflict(fmt.Sprintf( // nolint:wrapcheck
				"room %s has a booking on %s outside the new operating hours %s", room.Name, when, hours))
		}
	}

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var deleted model.Room

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err := s.repo.GetForUpdateTx(ctx, tx, byID(id))
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound(msgRoomNotFound) // nolint:wrapcheck
		}

		upcoming, err := s.bookingRepo.CountUpcomingTx(ctx, tx, id, timezone.Today())
		if err != nil {
			return fmt.Errorf("failed to count upcoming bookings: %w", err)
		}

		if upcoming > 0 {
			return failure.Conflict( // nolint:wrapcheck
				fmt.Sprintf("room %s still has %d upcoming booking(s), cancel them first", room.Name, upcoming))
		}

		if err := s.repo.DeleteTx(ctx, tx, byID(id)); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		deleted = room

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to delete room")

		return err
	}

	s.deleteImage(ctx, deleted.Image)
	s.invalidate(ctx, id, true)

	return nil
}

func (s *serviceImpl) uploadImage(ctx context.Context, header *multipart.FileHeader, file multipart.File) (string, error) {
	if header == nil || file == nil {
		return constant.Empty, nil
	}

	fileName := uuid.NewString() + filepath.Ext(header.Filename)
	contentType := header.Header.Get(constant.RequestHeaderContentType)

	url, err := s.s3.Upload(ctx, model.EntityName, fileName, contentType, file)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room image")

		return constant.Empty, fmt.Errorf("failed to upload image: %w", err)
	}

	return url, nil
}

// deleteImage logs failures only.
func (s *serviceImpl) deleteImage(ctx context.Context, url string) {
	if url == constant.Empty {
		return
	}

	if err := s.s3.Delete(ctx, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to delete room image")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string, availability bool) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete room from cache")
	}

	if availability {
		shared.InvalidateCaches(ctx, s.cache, shared.BuildCacheKey(constant.CacheKeyAvailability, id))
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllRoom)
	shared.InvalidateCaches(ctx, s.cache, cacheCountRoom)
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}
