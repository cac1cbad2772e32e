package di

import (
	"context"
	"fmt"
	"time"

	domrepo "QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	internalrepo "QuantPulse/internal/repository"
	icache "QuantPulse/internal/service/cache"
	"QuantPulse/internal/services/layers"
	"QuantPulse/internal/services/risk"
	"QuantPulse/internal/usecase"
	pkgch "QuantPulse/pkg/clickhouse"
	"QuantPulse/pkg/config"
	pkgkafka "QuantPulse/pkg/kafka"
	"QuantPulse/pkg/logger"
	"QuantPulse/pkg/metrics"
	"QuantPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes
// the candle and backtest-record schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
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

	ddl := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}, internalrepo.RecordSchema...)
	if err := client.InitSchema(ctx, ddl); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled in config.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCandleStore creates the ClickHouse-backed candle repository.
func ProvideCandleStore(chClient *pkgch.Client, l *logger.Logger) domrepo.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideRecordStore creates the append-only backtest record store.
func ProvideRecordStore(chClient *pkgch.Client, l *logger.Logger) domrepo.RecordStore {
	store := internalrepo.NewCHRecordStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideSignalPublisher creates the Kafka signal publisher, or nil
// when no producer is configured.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache selects Redis when enabled, in-process TTL otherwise.
func ProvideCache(cfg *config.Config) (icache.BytesCache, error) {
	if !cfg.Redis.Enabled {
		return icache.NewTTLCache(), nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideLayerProvider creates the indicator-derived layer scorer.
func ProvideLayerProvider() domsvc.LayerProvider {
	return layers.NewDerivedProvider()
}

// ProvideSignalPipeline creates the per-symbol evaluation pipeline.
func ProvideSignalPipeline(lp domsvc.LayerProvider, cfg *config.Config, l *logger.Logger) *usecase.SignalPipeline {
	return usecase.NewSignalPipeline(lp, usecase.PipelineConfig{
		Risk: risk.Params{
			AccountEquity:   cfg.Risk.AccountEquity,
			RiskPerTradePct: cfg.Risk.RiskPerTradePct,
			ATRStopMultiple: cfg.Risk.ATRStopMultiple,
			MinNotional:     cfg.Risk.MinNotional,
			FeeRate:         cfg.Risk.FeeRate,
			SlippageBps:     cfg.Risk.SlippageBps,
			SpreadBps:       cfg.Risk.SpreadBps,
		},
		Profile: risk.Profile(cfg.Risk.Profile),
	}, l)
}

// ProvideScreener creates the multi-symbol screener.
func ProvideScreener(
	store domrepo.CandleStore,
	pipeline *usecase.SignalPipeline,
	cache icache.BytesCache,
	pub domrepo.Publisher,
	m domrepo.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) *usecase.Screener {
	return usecase.NewScreener(store, pipeline, cache, pub, m, usecase.ScreenerConfig{
		Timeframe:     domrepo.NormalizeTimeframe(cfg.Screener.Timeframe),
		HistoryBars:   cfg.Screener.HistoryBars,
		Workers:       cfg.Screener.Workers,
		SymbolTimeout: cfg.Screener.SymbolTimeout,
		CacheTTL:      cfg.Screener.CacheTTL,
		FetchRPS:      cfg.Screener.FetchRPS,
	}, l)
}

// ProvideBacktester creates the historical replay engine.
func ProvideBacktester(
	candles domrepo.CandleStore,
	records domrepo.RecordStore,
	pipeline *usecase.SignalPipeline,
	m domrepo.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) *usecase.Backtester {
	return usecase.NewBacktester(candles, records, pipeline, m, usecase.BacktestConfig{
		Timeframe:   domrepo.NormalizeTimeframe(cfg.Backtest.Timeframe),
		MinHistory:  cfg.Backtest.MinHistory,
		StartEquity: cfg.Backtest.StartEquity,
		FeeRate:     cfg.Risk.FeeRate,
		SlippageBps: cfg.Risk.SlippageBps,
		SpreadBps:   cfg.Risk.SpreadBps,
	}, l)
}

// ProvideApp creates the application runner.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	screener *usecase.Screener,
	backtester *usecase.Backtester,
	chClient *pkgch.Client,
	pub domrepo.Publisher,
) *server.App {
	return server.New(cfg, l, screener, backtester, chClient, pub)
}
