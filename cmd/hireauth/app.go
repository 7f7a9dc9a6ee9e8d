package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/config"
	"github.com/MrEthical07/hireauth/store/memstore"
	"github.com/MrEthical07/hireauth/store/sqlstore"
)

// resources tracks everything opened for a command so it can be released in
// reverse order.
type resources struct {
	closers []func() error
}

func (r *resources) add(f func() error) {
	r.closers = append(r.closers, f)
}

func (r *resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(flags.envFiles...); err != nil {
		return nil, err
	}
	return config.Load(flags.configPath)
}

// openStore returns the configured credential store. healthCheck is nil for
// the in-memory store.
func openStore(ctx context.Context, cfg *config.Config, res *resources, logger *zap.Logger) (hireauth.CredentialStore, func(context.Context) error, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory credential store; accounts are lost on restart")
		return memstore.New(), nil, nil
	case config.StorePostgres, config.StoreSQLite:
		store, err := openSQLStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		res.add(store.Close)
		if cfg.Store.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return store, store.Ping, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openSQLStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	driver := sqlstore.DriverSQLite
	if cfg.Store.Driver == config.StorePostgres {
		driver = sqlstore.DriverPostgres
	}
	store, err := sqlstore.OpenDriver(driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ping %s store: %w", cfg.Store.Driver, err)
	}
	return store, nil
}

// openRedis returns nil when throttling is not configured.
func openRedis(ctx context.Context, cfg *config.Config, res *resources, logger *zap.Logger) (redis.UniversalClient, error) {
	addr := cfg.Redis.Addr
	switch addr {
	case "":
		logger.Warn("redis not configured; login throttling disabled")
		return nil, nil
	case config.RedisEmbedded:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		res.add(func() error { mr.Close(); return nil })
		addr = mr.Addr()
		logger.Info("using embedded redis", zap.String("addr", addr))
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	res.add(client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		// Throttling fails open, so an unreachable Redis is not fatal.
		logger.Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
	}
	return client, nil
}
