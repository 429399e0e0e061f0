//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"tripsync/internal"
	"tripsync/internal/controllers"
	"tripsync/internal/events"
	"tripsync/internal/persistence"
	"tripsync/internal/providers"
	"tripsync/internal/services"
	"tripsync/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,

		events.NewBus,
		services.NewTripService,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
