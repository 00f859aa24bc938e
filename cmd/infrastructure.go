package cmd

import (
	"context"
	"errors"
	"fmt"

	"ordersvc/api/health"
	"ordersvc/config"
	"ordersvc/domain/catalog"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	rediscache "ordersvc/infrastructure/cache/redis"
	"ordersvc/infrastructure/persistence/mocks"
	"ordersvc/infrastructure/persistence/mysql"
	"ordersvc/infrastructure/persistence/retry"
	"ordersvc/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure holds the storage side of the process: repositories, the
// unit of work factory and the connections behind them.
type Infrastructure struct {
	DB         *gorm.DB
	Redis      *redis.Client
	ItemRepo   catalog.Repository
	OrderRepo  order.Repository
	Outbox     *mysql.OutboxRepository // nil with in-memory storage
	UoWFactory shared.UnitOfWorkFactory

	checks  map[string]health.Checker
	closers []func() error
}

func NewInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{checks: map[string]health.Checker{}}
	retryConfig := retry.FromAppConfig(cfg)

	switch cfg.Database.Type {
	case "mysql":
		if err := infra.openMySQL(cfg, retryConfig); err != nil {
			return nil, err
		}
	case "mock", "":
		logger.Info("Using in-memory persistence layer")
		infra.ItemRepo = mocks.NewMockItemRepository()
		infra.OrderRepo = mocks.NewMockOrderRepository()
		infra.UoWFactory = &mocks.MockUnitOfWorkFactory{
			Outbox:      mocks.NewMockOutboxRepository(),
			RetryConfig: retryConfig,
		}
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Database.Type)
	}

	if cfg.Redis.Enabled {
		client := rediscache.NewClient(cfg.Redis)
		infra.Redis = client
		infra.ItemRepo = rediscache.NewCachedItemRepository(infra.ItemRepo, client, cfg.Redis.TTL)
		infra.checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		infra.closers = append(infra.closers, client.Close)
		logger.Info("Item cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}
	return infra, nil
}

func (i *Infrastructure) openMySQL(cfg *config.Config, retryConfig retry.Config) error {
	logger.Info("Using MySQL/GORM persistence layer")
	db, err := mysql.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := mysql.Ping(context.Background(), db); err != nil {
		return fmt.Errorf("failed to ping MySQL: %w", err)
	}
	if cfg.IsDevelopment() {
		if err := mysql.AutoMigrate(db); err != nil {
			return err
		}
	}

	i.DB = db
	i.ItemRepo = mysql.NewItemRepository(db)
	i.OrderRepo = mysql.NewOrderRepository(db)
	i.Outbox = mysql.NewOutboxRepository(db)
	i.UoWFactory = mysql.NewUnitOfWorkFactory(db, retryConfig)
	i.checks["database"] = func(ctx context.Context) error {
		return mysql.Ping(ctx, db)
	}
	i.closers = append(i.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return nil
}

func (i *Infrastructure) HealthChecks() map[string]health.Checker {
	return i.checks
}

func (i *Infrastructure) Close() error {
	var errs []error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
