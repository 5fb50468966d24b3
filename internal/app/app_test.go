package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderdesk/internal/config"
	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/health"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Driver = config.DriverMemory
	cfg.Kafka.Brokers = nil
	return cfg
}

func TestNew_MemoryWiring(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "orderdesk.prom")

	a, err := New(ctx, cfg)
	require.NoError(t, err)

	customerID, err := a.Catalog.AddCustomer(ctx, domain.Customer{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	productID, err := a.Catalog.AddProduct(ctx, domain.Product{Name: "Lamp", Price: decimal.NewFromInt(250), Quantity: 4})
	require.NoError(t, err)

	res, err := a.Orders.CreateOrder(ctx, customerID, []domain.LineItem{{ProductID: productID, Quantity: 2}})
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(500)))

	count, err := a.Analytics.OrdersCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, a.Close())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "orderdesk_orders_created_total 1"))
}

func TestApp_PublishEventsWithoutBrokers(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Seed(ctx)
	require.NoError(t, err)

	res, err := a.PublishEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Positive(t, res.Pending, "seeded orders must leave events in outbox")
}

func TestApp_HealthReport(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	cfg.Outbox.BacklogThreshold = 0

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	report := a.Health.Report(ctx)
	assert.Equal(t, health.StatusHealthy, report.Status)
	assert.Equal(t, []string{"outbox", "store"}, a.Health.Names())

	customerID, err := a.Catalog.AddCustomer(ctx, domain.Customer{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	productID, err := a.Catalog.AddProduct(ctx, domain.Product{Name: "Desk", Price: decimal.NewFromInt(10), Quantity: 1})
	require.NoError(t, err)
	_, err = a.Orders.CreateOrder(ctx, customerID, []domain.LineItem{{ProductID: productID, Quantity: 1}})
	require.NoError(t, err)

	report = a.Health.Report(ctx)
	assert.Equal(t, health.StatusDegraded, report.Status)
}

func TestInitStore_PostgresRequiresDSN(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Driver = config.DriverPostgres

	_, err := initStore(context.Background(), cfg, log.WithField("test", "postgres-missing-dsn"))
	require.Error(t, err)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	var cfg config.Config
	cfg.Storage.Driver = "sqlite"

	_, err := initStore(context.Background(), cfg, log.WithField("test", "unsupported-driver"))
	require.Error(t, err)
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer(config.Config{}, log.WithField("test", "kafka"))
	require.NoError(t, err)
	assert.Nil(t, producer)
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	var cfg config.Config
	cfg.Kafka.Brokers = []string{"127.0.0.1:1"}

	producer, err := initKafkaProducer(cfg, log.WithField("test", "kafka"))
	require.Error(t, err)
	assert.Nil(t, producer)
}

func TestCloseKafka_NilProducer(t *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka"))
}
