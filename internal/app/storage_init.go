package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/config"
	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/memory"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/postgres"
)

// initStore открывает хранилище выбранного драйвера. Для postgres схема
// применяется сразу после подключения.
func initStore(ctx context.Context, cfg config.Config, logger *log.Entry) (domain.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Debug("using in-memory store")
		return memory.NewStore(), nil
	case config.DriverPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("postgres dsn is required for postgres storage driver")
		}
		store, err := postgres.Open(ctx, cfg.Postgres.DSN,
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithOpTimeout(cfg.Postgres.OpTimeout),
		)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Debug("postgres store is ready")
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
