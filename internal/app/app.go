package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/config"
	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/health"
	"github.com/vladislavdragonenkov/orderdesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderdesk/internal/metrics"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/analytics"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/catalog"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/orders"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/outbox"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/seed"
	"github.com/vladislavdragonenkov/orderdesk/internal/version"
)

// App связывает хранилище, сервисы и инфраструктуру одного запуска.
type App struct {
	Config    config.Config
	Store     domain.Store
	Catalog   *catalog.Service
	Orders    *orders.Manager
	Analytics *analytics.Engine
	Seeder    *seed.Seeder
	Health    *health.Reporter
	Metrics   *metrics.Registry

	outboxMetrics *metrics.OutboxMetrics
	logger        *log.Entry
}

// New открывает хранилище и собирает зависимости.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := log.WithField("component", "app")

	store, err := initStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := metrics.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry.Registerer())

	catalogSvc := catalog.NewService(store, log.WithField("component", "catalog"))
	orderManager := orders.NewManager(store,
		orders.WithLogger(log.WithField("component", "orders")),
		orders.WithMetrics(orderMetrics),
	)

	a := &App{
		Config:    cfg,
		Store:     store,
		Catalog:   catalogSvc,
		Orders:    orderManager,
		Analytics: analytics.NewEngine(store.Analytics(), analytics.WithLogger(log.WithField("component", "analytics"))),
		Seeder:    seed.NewSeeder(store, catalogSvc, orderManager, log.WithField("component", "seed")),
		Health:    newHealthReporter(store, cfg.Outbox.BacklogThreshold),
		Metrics:   registry,

		outboxMetrics: metrics.NewOutboxMetrics(registry.Registerer()),
		logger:        logger,
	}
	return a, nil
}

func newHealthReporter(store domain.Store, backlogThreshold int) *health.Reporter {
	reporter := health.NewReporter(version.GetVersion())
	reporter.RegisterChecker("store", health.NewSimpleChecker("store", store.Ping))
	reporter.RegisterChecker("outbox", health.NewThresholdChecker("outbox", backlogThreshold, func(ctx context.Context) (int, error) {
		stats, err := store.Outbox().Stats(ctx)
		if err != nil {
			return 0, err
		}
		return stats.PendingCount, nil
	}))
	return reporter
}

// Seed заполняет хранилище демонстрационными данными по настройкам seed.*.
func (a *App) Seed(ctx context.Context) (seed.Result, error) {
	return a.Seeder.Seed(ctx, seed.Options{
		Orders:     a.Config.Seed.Orders,
		RandomSeed: a.Config.Seed.RandomSeed,
	})
}

// PublishEvents выгружает outbox в Kafka. Без брокеров события остаются pending.
func (a *App) PublishEvents(ctx context.Context) (outbox.Result, error) {
	producer, err := initKafkaProducer(a.Config, a.logger)
	if err != nil {
		return outbox.Result{}, err
	}
	defer closeKafka(producer, a.logger)

	flusher := a.newFlusher(producer)
	return flusher.Flush(ctx)
}

func (a *App) newFlusher(producer *kafka.Producer) *outbox.Flusher {
	cfg := a.Config.Outbox
	options := []outbox.Option{
		outbox.WithLogger(log.WithField("component", "outbox")),
		outbox.WithMetrics(a.outboxMetrics),
		outbox.WithBatchSize(cfg.BatchSize),
		outbox.WithMaxAttempts(cfg.MaxAttempts),
		outbox.WithRetryBaseDelay(cfg.RetryBaseDelay),
		outbox.WithBreaker(outbox.NewCircuitBreaker(cfg.BreakerFailures, cfg.BreakerReset, nil)),
	}

	var publisher domain.OutboxPublisher
	if producer != nil {
		publisher = kafka.NewOutboxPublisher(producer, a.Config.Kafka.Topic)
		options = append(options, outbox.WithDeadLetter(
			kafka.NewDLQPublisher(producer, a.Config.Kafka.DLQTopic, a.Config.Kafka.Topic),
		))
	}
	return outbox.NewFlusher(a.Store.Outbox(), publisher, options...)
}

// Close записывает метрики в textfile (если задан) и закрывает хранилище.
func (a *App) Close() error {
	var errs []error
	if err := a.Metrics.WriteTextfile(a.Config.Metrics.Textfile); err != nil {
		errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
