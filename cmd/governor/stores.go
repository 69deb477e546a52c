package main

import (
	"context"
	"fmt"

	"governor-xrpl-lab/internal/config"
	"governor-xrpl-lab/internal/storage"
	chstore "governor-xrpl-lab/internal/storage/clickhouse"
	"governor-xrpl-lab/internal/storage/file"
	"governor-xrpl-lab/internal/storage/memory"
	"governor-xrpl-lab/internal/storage/migrations"
	pgstore "governor-xrpl-lab/internal/storage/postgres"
	"governor-xrpl-lab/internal/storage/redisstore"
)

// stores holds the history and policy backends selected by config.
type stores struct {
	history  storage.HistoryStore
	policies storage.PolicyStore
}

// createStores builds the configured backends. Drivers without a policy
// table keep the audit log in memory.
func createStores(ctx context.Context, cfg config.StorageConfig) (*stores, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return &stores{
			history:  memory.NewHistoryStore(cfg.HistoryLimit),
			policies: memory.NewPolicyStore(),
		}, func() {}, nil

	case config.DriverFile:
		h, err := file.NewHistoryStore(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open history file: %w", err)
		}
		return &stores{history: h, policies: memory.NewPolicyStore()}, func() {}, nil

	case config.DriverRedis:
		redisCfg := cfg.Redis
		if redisCfg.MaxItems == 0 {
			redisCfg.MaxItems = cfg.HistoryLimit
		}
		h, err := redisstore.NewHistoryStore(ctx, redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return &stores{history: h, policies: memory.NewPolicyStore()}, func() { h.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN, cfg.MaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if cfg.Migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		return &stores{
			history:  pgstore.NewHistoryStore(pool),
			policies: pgstore.NewPolicyStore(pool),
		}, pool.Close, nil

	case config.DriverClickhouse:
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return &stores{
			history:  chstore.NewHistoryStore(conn),
			policies: chstore.NewPolicyStore(conn),
		}, func() { conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
