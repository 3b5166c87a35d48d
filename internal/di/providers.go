package di

import (
	"context"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/domain/repository"
	domsvc "SalesCast/internal/domain/service"
	"SalesCast/internal/handler/api"
	internalrepo "SalesCast/internal/repository"
	icache "SalesCast/internal/service/cache"
	"SalesCast/internal/service/ratelimit"
	"SalesCast/internal/services/artifacts"
	"SalesCast/internal/services/features"
	"SalesCast/internal/services/forecast"
	"SalesCast/internal/services/predictor"
	"SalesCast/internal/usecase"
	pkgch "SalesCast/pkg/clickhouse"
	"SalesCast/pkg/config"
	xhttp "SalesCast/pkg/http"
	pkgkafka "SalesCast/pkg/kafka"
	applogger "SalesCast/pkg/logger"
	"SalesCast/pkg/metrics"
	"SalesCast/pkg/server"

	"github.com/jackc/pgx/v5/pgxpool"
)

const startupTimeout = 10 * time.Second

// ProvideLogger creates the structured logger from the logger section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHolidayCalendar loads the holiday CSV. A missing or unreadable file
// aborts startup.
func ProvideHolidayCalendar(cfg *config.Config, l *applogger.Logger) (*features.HolidayCalendar, error) {
	cal, err := features.LoadHolidayCalendar(cfg.Holidays.File, cfg.Holidays.Year)
	if err != nil {
		return nil, fmt.Errorf("holidays: %w", err)
	}
	l.Info("holiday calendar loaded", applogger.String("file", cfg.Holidays.File))
	return cal, nil
}

// ProvideCatalog converts the configured products.
func ProvideCatalog(cfg *config.Config) ([]models.Product, error) {
	products, err := artifacts.Catalog(cfg.Products)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return products, nil
}

// ProvideRegistry loads scaler artifacts for every product. All predictors
// share one HTTP client to the model server.
func ProvideRegistry(cfg *config.Config, products []models.Product, l *applogger.Logger) *artifacts.Registry {
	base := predictor.NewHTTPServiceBase(cfg)
	factory := func(model string) domsvc.Predictor {
		return predictor.NewHTTPPredictor(base, model, cfg.ModelServer.Retries)
	}
	return artifacts.LoadRegistry(cfg.Artifacts.Dir, products, factory, l)
}

// ProvideClickHouseClient connects to ClickHouse when it is the configured
// backend and returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return client, nil
}

// ProvidePostgresPool opens the bookkeeping database pool when postgres is the
// configured backend and returns nil otherwise.
func ProvidePostgresPool(cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Backend.Type != "postgres" {
		return nil, nil
	}
	pcfg, err := pgxpool.ParseConfig(cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		pcfg.MaxConns = cfg.Postgres.MaxConns
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// ProvideTransactionSource picks the sale history backend.
func ProvideTransactionSource(cfg *config.Config, ch *pkgch.Client, pg *pgxpool.Pool, l *applogger.Logger) (repository.TransactionSource, error) {
	switch cfg.Backend.Type {
	case "clickhouse":
		src := internalrepo.NewCHTransactionSource(ch)
		src.SetLogger(l)
		src.SetLookback(cfg.Forecast.LookbackWeeks)
		return src, nil
	case "postgres":
		src := internalrepo.NewPGTransactionSource(pg)
		src.SetLogger(l)
		src.SetLookback(cfg.Forecast.LookbackWeeks)
		return src, nil
	case "memory":
		src := internalrepo.NewMemoryTransactionSource()
		if cfg.Backend.SeedFile != "" {
			n, err := src.LoadSeedCSV(cfg.Backend.SeedFile)
			if err != nil {
				return nil, fmt.Errorf("seed transactions: %w", err)
			}
			l.Info("seed transactions loaded", applogger.String("file", cfg.Backend.SeedFile), applogger.Int("rows", n))
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Type)
	}
}

// ProvideRedisCache connects to Redis when enabled and returns nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*icache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rc, nil
}

// ProvideForecastCache uses Redis when connected and an in-process TTL cache otherwise.
func ProvideForecastCache(rc *icache.RedisCache) icache.BytesCache {
	if rc != nil {
		return rc
	}
	return icache.NewTTLCache()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
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

// ProvideEventPublisher publishes forecast events to Kafka and, when log
// collection is on, attaches the error log collector to the same producer.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic)
	if cfg.Logger.Collect.Enabled {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logger.Collect.Interval,
			CountThreshold: cfg.Logger.Collect.Threshold,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      pub,
		})
	}
	return pub
}

// ProvideKafkaConsumer creates the audit change consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerAutoOffsetReset(cfg.Kafka.Consumer.OffsetReset),
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
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TracingHook(), pkgkafka.LoggingHook(l)))
	return consumer, nil
}

// ProvideAuditEventsHandler drops cached forecasts when audit rows change.
func ProvideAuditEventsHandler(cfg *config.Config, c icache.BytesCache, m repository.Metrics, l *applogger.Logger) *usecase.AuditEventsHandler {
	return usecase.NewAuditEventsHandler(cfg.Kafka.AuditTopic, c, m, l)
}

// ProvideEngine builds the recursive forecaster from the forecast section.
func ProvideEngine(cfg *config.Config) (*forecast.Engine, error) {
	policy, err := forecast.ParseWindowPolicy(cfg.Forecast.WindowPolicy)
	if err != nil {
		return nil, err
	}
	return forecast.NewEngine(cfg.Forecast.WindowSize, policy)
}

// ProvideForecastUseCase creates the forecast pipeline use case.
func ProvideForecastUseCase(
	cfg *config.Config,
	registry *artifacts.Registry,
	source repository.TransactionSource,
	holidays *features.HolidayCalendar,
	engine *forecast.Engine,
	c icache.BytesCache,
	publisher repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(registry, source, holidays, engine, c, publisher, m, usecase.ForecastOptions{
		HistoryWeeks:    cfg.Forecast.HistoryWeeks,
		PadShortHistory: cfg.Forecast.PadShortHistory,
		MaxSteps:        cfg.Forecast.MaxSteps,
		CacheTTL:        cfg.Forecast.CacheTTL,
	}, l)
}

// ProvideHTTPHandler creates the dashboard API handler.
func ProvideHTTPHandler(cfg *config.Config, uc *usecase.ForecastUseCase, l *applogger.Logger) xhttp.Handler {
	h := api.NewForecastEchoHandler(l, uc)
	if cfg.RateLimit.Enabled {
		h.SetRateLimiter(ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	}
	return h
}

// ProvideInfra collects the connections the app closes on shutdown.
func ProvideInfra(ch *pkgch.Client, pg *pgxpool.Pool, rc *icache.RedisCache) server.Infra {
	return server.Infra{ClickHouse: ch, Postgres: pg, Redis: rc}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh *usecase.AuditEventsHandler,
	publisher repository.EventPublisher,
	infra server.Infra,
) *server.App {
	if consumer == nil {
		return server.New(cfg, l, h, nil, nil, publisher, infra)
	}
	return server.New(cfg, l, h, consumer, kh, publisher, infra)
}
