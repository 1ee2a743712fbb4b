package di

import (
	"context"
	"fmt"
	"time"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/handler/api"
	mid "SMCTrader/internal/middleware"
	internalrepo "SMCTrader/internal/repository"
	"SMCTrader/internal/service/feed"
	"SMCTrader/internal/service/ratelimit"
	"SMCTrader/internal/services/narrative"
	"SMCTrader/internal/usecase"
	"SMCTrader/pkg/cache"
	pkgch "SMCTrader/pkg/clickhouse"
	"SMCTrader/pkg/config"
	pkgkafka "SMCTrader/pkg/kafka"
	"SMCTrader/pkg/logger"
	"SMCTrader/pkg/metrics"
	"SMCTrader/pkg/server"
)

// ProvideLogger builds the process logger and, when enabled, attaches the
// error collector that ships aggregated entries to the logs topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.CountThreshold,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      producer,
			Service:        "smctrader-" + cfg.Environment,
			IncludeWarn:    cfg.Log.Collector.IncludeWarn,
		})
	}
	return l, nil
}

// ProvideClickHouseClient connects and applies the candles/contexts schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns, cfg.ClickHouse.ConnMaxLifetime),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Compression),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithRetries(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer returns nil unless kafka.consumer.enabled is set.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.NewLoggingHook(l, time.Second)))
	return consumer, nil
}

// ProvideCache uses Redis (optionally fronted by an in-process LRU) and falls
// back to an in-memory cache when Redis is disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddress(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPoolSize(cfg.Redis.PoolSize),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Redis.LocalSize > 0 {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Redis.LocalSize),
			cache.WithLayeredMemoryTTL(cfg.Redis.LocalTTL),
		), nil
	}
	return rc, nil
}

func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

func ProvideCandleStore(ch *pkgch.Client, cfg *config.Config, l *logger.Logger) domrepo.CandleStore {
	b := internalrepo.DefaultBreakerSettings()
	br := cfg.ClickHouse.Breaker
	if br.MaxRequests > 0 {
		b.MaxRequests = br.MaxRequests
	}
	if br.Interval > 0 {
		b.Interval = br.Interval
	}
	if br.Timeout > 0 {
		b.Timeout = br.Timeout
	}
	if br.MaxFailures > 0 {
		b.ConsecutiveFailures = br.MaxFailures
	}
	store := internalrepo.NewCHCandleStore(ch.DB(), internalrepo.Table(cfg.ClickHouse.Database, internalrepo.CandlesTable), b)
	store.SetLogger(l)
	return store
}

func ProvideCandleWriter(ch *pkgch.Client, cfg *config.Config) domrepo.CandleWriter {
	return internalrepo.NewClickHouseCandleWriter(ch.DB(), internalrepo.Table(cfg.ClickHouse.Database, internalrepo.CandlesTable))
}

func ProvideContextStorage(ch *pkgch.Client, cfg *config.Config) domrepo.ContextStorage {
	return internalrepo.NewCHContextStorage(ch.DB(), internalrepo.Table(cfg.ClickHouse.Database, internalrepo.ContextsTable))
}

// ProvideContextPublisher returns a nil interface without a producer so the
// ingestor skips publishing.
func ProvideContextPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.ContextPublisher {
	if producer == nil || cfg.Kafka.ContextTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaContextPublisher(producer, cfg.Kafka.ContextTopic)
}

func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.CandlePublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaCandlePublisher(producer, cfg.Kafka.CandlesTopic)
}

func ProvideIdeaMemory(c cache.Service, cfg *config.Config) service.IdeaMemory {
	return internalrepo.NewCacheIdeaMemory(c, cfg.Engine.IdeaExpiry)
}

func ProvideNarrativeStore(c cache.Service, cfg *config.Config) service.NarrativeStore {
	return internalrepo.NewCacheNarrativeStore(c, cfg.Engine.NarrativeTTL)
}

func ProvideSessions(store service.NarrativeStore, cfg *config.Config, l *logger.Logger) *usecase.Sessions {
	var opts []narrative.Option
	if cfg.Engine.NarrativeMaxHops > 0 {
		opts = append(opts, narrative.WithMaxHops(cfg.Engine.NarrativeMaxHops))
	}
	return usecase.NewSessions(store, l, opts...)
}

// ProvideEngineConfig overlays configured values on the engine defaults.
func ProvideEngineConfig(cfg *config.Config) usecase.EngineConfig {
	ec := usecase.DefaultEngineConfig()
	e := cfg.Engine
	ec.Timeframe = domrepo.NormalizeTimeframe(e.Timeframe, ec.Timeframe)
	ec.HTFTimeframe = domrepo.NormalizeTimeframe(e.HTFTimeframe, ec.HTFTimeframe)
	if e.Candles > 0 {
		ec.Candles = e.Candles
	}
	if e.Lookback > 0 {
		ec.Lookback = e.Lookback
	}
	if e.EqualTolerance > 0 {
		ec.EqualTolerance = e.EqualTolerance
	}
	if e.EqualLookback > 0 {
		ec.EqualLookback = e.EqualLookback
	}
	if e.ZoneBufferPct > 0 {
		ec.ZoneBufferPct = e.ZoneBufferPct
	}
	if e.NearestCount > 0 {
		ec.NearestCount = e.NearestCount
	}
	if e.LifecycleWindow > 0 {
		ec.LifecycleWindow = e.LifecycleWindow
	}
	if e.RequireKillZone != nil {
		ec.RequireKillZone = *e.RequireKillZone
	}
	if e.NarrativeMaxHops > 0 {
		ec.NarrativeMaxHops = e.NarrativeMaxHops
	}
	if e.IdeaBucketStep > 0 {
		ec.IdeaBucketStep = e.IdeaBucketStep
	}
	if e.ContextCacheTTL > 0 {
		ec.ContextCacheTTL = e.ContextCacheTTL
	}
	if e.LoadTimeout > 0 {
		ec.LoadTimeout = e.LoadTimeout
	}
	return ec
}

func ProvideContextEvaluator(
	ec usecase.EngineConfig,
	store domrepo.CandleStore,
	ideaMemory service.IdeaMemory,
	sessions *usecase.Sessions,
	c cache.Service,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.ContextEvaluator {
	return usecase.NewContextEvaluator(ec, store, ideaMemory, sessions, c, m, l)
}

func ProvideCandleIngestor(
	writer domrepo.CandleWriter,
	eval *usecase.ContextEvaluator,
	storage domrepo.ContextStorage,
	publisher domrepo.ContextPublisher,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.CandleIngestor {
	return usecase.NewCandleIngestor(writer, eval, storage, publisher, m, l)
}

func ProvideCandleProcessor(pub domrepo.CandlePublisher, ingestor *usecase.CandleIngestor, m domrepo.Metrics, cfg *config.Config) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(pub, ingestor, m, cfg.Backend.Type)
}

// ProvideMarketStream returns nil when the websocket feed is disabled.
func ProvideMarketStream(cfg *config.Config, l *logger.Logger) domrepo.MarketStream {
	if !cfg.Feed.Enabled {
		return nil
	}
	tfs := make([]models.Timeframe, 0, len(cfg.Feed.Timeframes))
	for _, tf := range cfg.Feed.Timeframes {
		tfs = append(tfs, models.Timeframe(tf))
	}
	return feed.New(cfg.Feed.WebSocketURL, cfg.Feed.Symbols, tfs, cfg.Feed.ReconnectDelay, cfg.Feed.PingInterval, l)
}

// ProvideCandleCollector puts the realtime pipeline between feed and processor.
func ProvideCandleCollector(stream domrepo.MarketStream, proc *usecase.CandleProcessor, m domrepo.Metrics, cfg *config.Config) *usecase.CandleCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewRealtimePipeline(proc, m,
		mid.WithBufferSize(cfg.Feed.BufferSize),
		mid.WithTransform(mid.NormalizeSymbol),
	)
	return usecase.NewCandleCollector(stream, proc, m, pipe)
}

func ProvideKafkaCandlesHandler(ingestor *usecase.CandleIngestor, m domrepo.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, ingestor, m)
}

func ProvideIdeasUseCase(memory service.IdeaMemory, sessions *usecase.Sessions, ec usecase.EngineConfig, l *logger.Logger) *usecase.IdeasUseCase {
	uc := usecase.NewIdeasUseCase(memory, sessions, ec.IdeaBucketStep, l)
	uc.SetSessionPair(ec.Timeframe, ec.HTFTimeframe)
	return uc
}

func ProvideCandlesUseCase(store domrepo.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideRateLimiter returns nil (no limiting) when rate_limit_rps is unset.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.Server.RateLimitRPS <= 0 {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
}

func ProvideHTTPHandler(
	l *logger.Logger,
	eval *usecase.ContextEvaluator,
	candles *usecase.CandlesUseCase,
	ideas *usecase.IdeasUseCase,
	rl *ratelimit.Limiter,
) *api.ContextEchoHandler {
	return api.NewContextEchoHandler(l, eval, candles, ideas, rl)
}

func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler *api.ContextEchoHandler,
	collector *usecase.CandleCollector,
	processor *usecase.CandleProcessor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	c cache.Service,
	rl *ratelimit.Limiter,
) *server.App {
	return server.New(server.Deps{
		Config:      cfg,
		Logger:      l,
		Handler:     handler,
		Collector:   collector,
		Processor:   processor,
		Consumer:    consumer,
		KafkaCandle: kh,
		Producer:    producer,
		ClickHouse:  ch,
		Cache:       c,
		Limiter:     rl,
	})
}
