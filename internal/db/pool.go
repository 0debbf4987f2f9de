package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pluckstudio/demandas/internal/config"
)

const healthCheckPeriod = 30 * time.Second

// NewPool abre o pool do Postgres e valida a conexão.
func NewPool(ctx context.Context, dsn string, tuning config.PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	minConns, maxConns := tuning.MinConns, tuning.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns < 0 {
		minConns = 0
	}
	if minConns > maxConns {
		minConns = maxConns
	}

	cfg.MinConns = int32(minConns)
	cfg.MaxConns = int32(maxConns)
	if tuning.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = tuning.MaxConnLifetime
	}
	if tuning.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = tuning.MaxConnIdleTime
	}
	cfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
