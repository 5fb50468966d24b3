package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix — префикс переменных окружения; "__" разделяет уровни вложенности.
const EnvPrefix = "ORDERDESK_"

// Драйверы хранилища.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Storage struct {
		Driver string `koanf:"driver"`
	} `koanf:"storage"`

	Postgres struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
		OpTimeout       time.Duration `koanf:"op_timeout"`
	} `koanf:"postgres"`

	Log Log `koanf:"log"`

	Kafka struct {
		Brokers  []string `koanf:"brokers"`
		Topic    string   `koanf:"topic"`
		DLQTopic string   `koanf:"dlq_topic"`
		ClientID string   `koanf:"client_id"`
	} `koanf:"kafka"`

	Outbox struct {
		BatchSize        int           `koanf:"batch_size"`
		MaxAttempts      int           `koanf:"max_attempts"`
		RetryBaseDelay   time.Duration `koanf:"retry_base_delay"`
		BacklogThreshold int           `koanf:"backlog_threshold"`
		BreakerFailures  int           `koanf:"breaker_failures"`
		BreakerReset     time.Duration `koanf:"breaker_reset"`
	} `koanf:"outbox"`

	Metrics struct {
		Textfile string `koanf:"textfile"`
	} `koanf:"metrics"`

	Seed struct {
		Orders     int    `koanf:"orders"`
		RandomSeed uint64 `koanf:"random_seed"`
	} `koanf:"seed"`
}

// Log — параметры логирования.
type Log struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

func defaults() map[string]any {
	return map[string]any{
		"storage.driver":             DriverMemory,
		"postgres.max_open_conns":    10,
		"postgres.max_idle_conns":    5,
		"postgres.conn_max_lifetime": "30m",
		"postgres.op_timeout":        "5s",
		"log.level":                  "info",
		"log.format":                 "text",
		"log.max_size_mb":            50,
		"log.max_backups":            3,
		"kafka.topic":                "orderdesk.order.events",
		"kafka.dlq_topic":            "orderdesk.order.events.dlq",
		"kafka.client_id":            "orderdesk",
		"outbox.batch_size":          100,
		"outbox.max_attempts":        3,
		"outbox.retry_base_delay":    "50ms",
		"outbox.backlog_threshold":   1000,
		"outbox.breaker_failures":    5,
		"outbox.breaker_reset":       "30s",
		"seed.orders":                20,
	}
}

// Load собирает конфигурацию: defaults, затем YAML-файл (если path не пуст),
// затем переменные окружения ORDERDESK_*.
// e.g. ORDERDESK_POSTGRES__DSN, ORDERDESK_KAFKA__BROKERS=a:9092,b:9092
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn required for postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is unknown (memory|postgres)", c.Storage.Driver))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is unknown (text|json)", c.Log.Format))
	}

	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("outbox.batch_size must be positive"))
	}
	if c.Outbox.MaxAttempts <= 0 {
		errs = append(errs, errors.New("outbox.max_attempts must be positive"))
	}
	if c.Seed.Orders < 0 {
		errs = append(errs, errors.New("seed.orders must not be negative"))
	}
	if c.Postgres.OpTimeout < 0 {
		errs = append(errs, errors.New("postgres.op_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

// KafkaEnabled сообщает, настроены ли брокеры для публикации событий.
func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// splitBrokers раскрывает значения вида "a:9092,b:9092" и отбрасывает пустые.
func splitBrokers(in []string) []string {
	var out []string
	for _, item := range in {
		for _, b := range strings.Split(item, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}
