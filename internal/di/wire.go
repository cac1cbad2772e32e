//go:build wireinject
// +build wireinject

package di

import (
	"QuantPulse/pkg/config"
	"QuantPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideCandleStore,
		ProvideRecordStore,
		ProvideSignalPublisher,
		ProvideCache,

		// Engine
		ProvideLayerProvider,
		ProvideSignalPipeline,
		ProvideScreener,
		ProvideBacktester,

		// Application runner
		ProvideApp,
	)
	return &server.App{}, nil
}
