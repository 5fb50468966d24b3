package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Postgres.OpTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Postgres.ConnMaxLifetime)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, 20, cfg.Seed.Orders)
	assert.Equal(t, "orderdesk.order.events", cfg.Kafka.Topic)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderdesk.yaml")
	content := `
storage:
  driver: postgres
postgres:
  dsn: postgres://file/db
  op_timeout: 2s
log:
  level: debug
  format: json
seed:
  orders: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ORDERDESK_POSTGRES__DSN", "postgres://env/db")
	t.Setenv("ORDERDESK_KAFKA__BROKERS", "k1:9092, k2:9092")
	t.Setenv("ORDERDESK_METRICS__TEXTFILE", "/tmp/orderdesk.prom")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN, "env must override file")
	assert.Equal(t, 2*time.Second, cfg.Postgres.OpTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 7, cfg.Seed.Orders)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/tmp/orderdesk.prom", cfg.Metrics.Textfile)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_PostgresWithoutDSN(t *testing.T) {
	t.Setenv("ORDERDESK_STORAGE__DRIVER", "postgres")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.dsn")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	var cfg Config
	cfg.Storage.Driver = "sqlite"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"storage.driver", "log.format", "outbox.batch_size", "outbox.max_attempts"} {
		assert.True(t, strings.Contains(msg, want), "expected %q in %q", want, msg)
	}
}

func TestSplitBrokers(t *testing.T) {
	assert.Nil(t, splitBrokers(nil))
	assert.Nil(t, splitBrokers([]string{"", " , "}))
	assert.Equal(t, []string{"a", "b", "c"}, splitBrokers([]string{"a,b", " c "}))
}
