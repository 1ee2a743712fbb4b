//go:build wireinject
// +build wireinject

package di

import (
	"SMCTrader/pkg/config"
	"SMCTrader/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideClickHouseClient,
	ProvideCache,
	ProvideKafkaConsumer,
)

var repositorySet = wire.NewSet(
	ProvideCandleStore,
	ProvideCandleWriter,
	ProvideContextStorage,
	ProvideContextPublisher,
	ProvideCandlePublisher,
	ProvideIdeaMemory,
	ProvideNarrativeStore,
	ProvideMarketStream,
)

var usecaseSet = wire.NewSet(
	ProvideEngineConfig,
	ProvideSessions,
	ProvideContextEvaluator,
	ProvideCandleIngestor,
	ProvideCandleProcessor,
	ProvideCandleCollector,
	ProvideKafkaCandlesHandler,
	ProvideIdeasUseCase,
	ProvideCandlesUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		infraSet,
		repositorySet,
		usecaseSet,
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
