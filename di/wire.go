//go:build wireinject
// +build wireinject

package di

import (
	"deskhub/config"
	"deskhub/infras/jwt"
	"deskhub/infras/kafka"
	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/infras/redis"
	"deskhub/infras/s3"
	"deskhub/permissions"
	"deskhub/shared/cache"
	"deskhub/transport/http"
	"deskhub/transport/http/middleware"
	"deskhub/transport/http/router"

	bookingEvent "deskhub/internal/domains/booking/event"
	bookingRepository "deskhub/internal/domains/booking/repository"
	bookingService "deskhub/internal/domains/booking/service"
	bookingStore "deskhub/internal/domains/booking/store"
	paymentRepository "deskhub/internal/domains/payment/repository"
	roomRepository "deskhub/internal/domains/room/repository"
	roomService "deskhub/internal/domains/room/service"
	bookingHandler "deskhub/internal/handlers/booking"
	roomHandler "deskhub/internal/handlers/room"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	paymentRepository.New,
	bookingStore.New,
	bookingEvent.New,
	bookingService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
