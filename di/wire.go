//go:build wireinject
// +build wireinject

package di

import (
	"unibook/config"
	"unibook/infras/jwt"
	"unibook/infras/otel"
	"unibook/infras/redis"
	"unibook/infras/s3"
	"unibook/infras/upstream"
	"unibook/permissions"
	"unibook/shared/cache"
	"unibook/transport/http"
	"unibook/transport/http/middleware"
	"unibook/transport/http/router"

	bookingRepository "unibook/internal/domains/booking/repository"
	bookingService "unibook/internal/domains/booking/service"
	facilityRepository "unibook/internal/domains/facility/repository"
	facilityService "unibook/internal/domains/facility/service"
	slotRepository "unibook/internal/domains/slot/repository"
	slotService "unibook/internal/domains/slot/service"

	bookingHandler "unibook/internal/handlers/booking"
	facilityHandler "unibook/internal/handlers/facility"
	healthHandler "unibook/internal/handlers/health"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	upstream.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var facilityDomain = wire.NewSet(
	facilityRepository.New,
	facilityService.New,
)

var slotDomain = wire.NewSet(
	slotRepository.New,
	slotService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var domains = wire.NewSet(
	facilityDomain,
	slotDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	facilityHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
