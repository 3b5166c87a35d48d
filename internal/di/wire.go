//go:build wireinject
// +build wireinject

package di

import (
	"SalesCast/pkg/config"
	"SalesCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePostgresPool,
		ProvideRedisCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideInfra,

		// Repositories
		ProvideTransactionSource,
		ProvideForecastCache,
		ProvideEventPublisher,

		// Forecast pipeline
		ProvideHolidayCalendar,
		ProvideCatalog,
		ProvideRegistry,
		ProvideEngine,

		// Use cases and transport
		ProvideForecastUseCase,
		ProvideAuditEventsHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
